package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/config"
)

type stubGenerator struct {
	tweet    string
	tweetErr error
}

func (g *stubGenerator) AltText(ctx context.Context, caption string) string { return "alt" }

func (g *stubGenerator) Article(ctx context.Context) (string, error) {
	return "", errors.New("not used")
}

func (g *stubGenerator) TweetText(ctx context.Context) (string, error) {
	return g.tweet, g.tweetErr
}

type stubFetcher struct {
	caption    string
	captionErr error
	image      []byte
	imageErr   error
}

func (f *stubFetcher) Caption(ctx context.Context, url string) (string, error) {
	return f.caption, f.captionErr
}

func (f *stubFetcher) Image(ctx context.Context, url string) ([]byte, error) {
	return f.image, f.imageErr
}

// scriptedTransport intercepts the API calls gotwi makes so no request leaves
// the test process.
type scriptedTransport struct {
	calls     []string
	meStatus  int
	tweetBody string
}

func (tr *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr.calls = append(tr.calls, req.Method+" "+req.URL.Path)

	switch {
	case strings.HasSuffix(req.URL.Path, "/2/users/me"):
		if tr.meStatus != 0 && tr.meStatus != http.StatusOK {
			return jsonResponse(tr.meStatus, `{"title":"Unauthorized","detail":"bad token"}`), nil
		}
		return jsonResponse(http.StatusOK, `{"data":{"id":"1","name":"Kishore","username":"growwithkishore"}}`), nil
	case strings.HasSuffix(req.URL.Path, "/2/tweets"):
		if req.Body != nil {
			body, _ := io.ReadAll(req.Body)
			tr.tweetBody = string(body)
		}
		return jsonResponse(http.StatusCreated, `{"data":{"id":"1900000000000000001","text":"posted"}}`), nil
	}
	return jsonResponse(http.StatusNotFound, `{}`), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testCreds() config.TwitterCredentials {
	return config.TwitterCredentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	}
}

func testRequest() autopost.Request {
	return autopost.Request{
		RunID: "run-1",
		Date:  time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC),
		Content: config.ContentLocation{
			ImageURL:        "https://content.example/image.png",
			TweetCaptionURL: "https://content.example/caption_x.txt",
		},
	}
}

func newTestPublisher(tr *scriptedTransport, gen autopost.TextGenerator, fetcher autopost.ContentFetcher) *Publisher {
	return New(testCreds(), gen, fetcher, WithHTTPClient(&http.Client{Transport: tr}))
}

func TestPublish_TextOnlyWhenImageUnavailable(t *testing.T) {
	tr := &scriptedTransport{}
	fetcher := &stubFetcher{
		caption:  "Ship daily. KISHORE S @growwithkishore",
		imageErr: autopost.ContentUnavailableError{URL: "u", StatusCode: 404},
	}

	err := newTestPublisher(tr, &stubGenerator{}, fetcher).Publish(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Contains(t, tr.calls, "GET /2/users/me")
	assert.Contains(t, tr.calls, "POST /2/tweets")

	var payload struct {
		Text  string          `json:"text"`
		Media json.RawMessage `json:"media"`
	}
	require.NoError(t, json.Unmarshal([]byte(tr.tweetBody), &payload))
	assert.Equal(t, "Ship daily. KISHORE S @growwithkishore", payload.Text)
	assert.Empty(t, payload.Media)
}

func TestPublish_AuthFailureIsTerminal(t *testing.T) {
	tr := &scriptedTransport{meStatus: http.StatusUnauthorized}
	fetcher := &stubFetcher{caption: "prebuilt KISHORE S @growwithkishore"}

	err := newTestPublisher(tr, &stubGenerator{}, fetcher).Publish(context.Background(), testRequest())

	require.Error(t, err)
	assert.ErrorContains(t, err, "authenticate")
	assert.NotContains(t, tr.calls, "POST /2/tweets")
}

func TestPublish_MissingCredentialsMakesNoCalls(t *testing.T) {
	tr := &scriptedTransport{}
	pub := New(config.TwitterCredentials{ConsumerKey: "ck"}, &stubGenerator{}, &stubFetcher{},
		WithHTTPClient(&http.Client{Transport: tr}))

	err := pub.Publish(context.Background(), testRequest())

	var missing autopost.MissingCredentialsError
	require.True(t, errors.As(err, &missing))
	assert.ElementsMatch(t, []string{"CONSUMER_SECRET", "X_ACCESS_TOKEN", "X_ACCESS_SECRET"}, missing.Variables)
	assert.Empty(t, tr.calls)
}

func TestResolveText_PrefersPrebuiltCaption(t *testing.T) {
	pub := New(testCreds(), &stubGenerator{tweet: "generated"}, &stubFetcher{caption: "prebuilt copy"})

	got, err := pub.resolveText(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Contains(t, got, "prebuilt copy")
	// Fetched captions still go through the posting constraints.
	assert.Contains(t, got, "KISHORE S")
	assert.Contains(t, got, "@growwithkishore")
}

func TestResolveText_FallsBackToGeneration(t *testing.T) {
	fetcher := &stubFetcher{captionErr: autopost.ContentUnavailableError{URL: "u", StatusCode: 404}}
	pub := New(testCreds(), &stubGenerator{tweet: "generated KISHORE S @growwithkishore"}, fetcher)

	got, err := pub.resolveText(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "generated KISHORE S @growwithkishore", got)
}

func TestResolveText_GenerationUnavailable(t *testing.T) {
	fetcher := &stubFetcher{captionErr: autopost.ContentUnavailableError{URL: "u", StatusCode: 404}}
	gen := &stubGenerator{tweetErr: autopost.GenerationUnavailableError{Kind: "tweet", Err: errors.New("no key")}}

	_, err := New(testCreds(), gen, fetcher).resolveText(context.Background(), testRequest())

	assert.Equal(t, autopost.ReasonGenerationUnavailable, autopost.Classify(err))
}
