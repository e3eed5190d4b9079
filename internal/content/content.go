package content

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/logutil"
)

const requestTimeout = 30 * time.Second

// Fetcher retrieves day-dated captions and image bytes from the raw content
// repository. Any transport failure or non-success status surfaces as a
// ContentUnavailableError so the calling publisher can abort cleanly.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher builds a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	client := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", "autopost/1")
	return &Fetcher{client: client}
}

// Caption fetches a caption file and returns its body stripped of surrounding
// whitespace.
func (f *Fetcher) Caption(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// Image fetches raw image bytes.
func (f *Fetcher) Image(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		logutil.Errorf("content fetch failed: url=%s: %v", url, err)
		return nil, autopost.ContentUnavailableError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		logutil.Errorf("content fetch failed: url=%s status=%d", url, resp.StatusCode())
		return nil, autopost.ContentUnavailableError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}
