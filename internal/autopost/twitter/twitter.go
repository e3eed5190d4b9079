package twitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/media/upload"
	uploadtypes "github.com/michimani/gotwi/media/upload/types"
	"github.com/michimani/gotwi/resources"
	"github.com/michimani/gotwi/tweet/managetweet"
	managetweettypes "github.com/michimani/gotwi/tweet/managetweet/types"
	"github.com/michimani/gotwi/user/userlookup"
	userlookuptypes "github.com/michimani/gotwi/user/userlookup/types"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/config"
	"github.com/growwithkishore/autopost/internal/gemini"
	"github.com/growwithkishore/autopost/internal/logutil"
)

const platformName = "twitter"

var httpTimeout = 30 * time.Second

// Publisher posts the day's tweet via the X API. The tweet text comes from
// the content store when a prebuilt caption exists, otherwise it is
// generated. The image attachment is best-effort: any fetch or upload failure
// degrades to a text-only tweet instead of aborting.
type Publisher struct {
	creds      config.TwitterCredentials
	gen        autopost.TextGenerator
	fetcher    autopost.ContentFetcher
	httpClient *http.Client
}

// Option adjusts a Publisher.
type Option func(*Publisher)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) { p.httpClient = client }
}

// New builds the X publisher.
func New(creds config.TwitterCredentials, gen autopost.TextGenerator, fetcher autopost.ContentFetcher, opts ...Option) *Publisher {
	p := &Publisher{
		creds:      creds,
		gen:        gen,
		fetcher:    fetcher,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the platform.
func (p *Publisher) Name() string { return platformName }

// Publish resolves the tweet text, verifies the credentials against users/me,
// attaches the day's image when possible, and creates the tweet.
func (p *Publisher) Publish(ctx context.Context, req autopost.Request) error {
	if missing := p.creds.Missing(); len(missing) > 0 {
		return autopost.MissingCredentialsError{Platform: platformName, Variables: missing}
	}

	text, err := p.resolveText(ctx, req)
	if err != nil {
		return err
	}

	api, err := p.newAPIClient()
	if err != nil {
		return fmt.Errorf("create X client: %w", err)
	}

	handle, err := p.verifyCredentials(ctx, api)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	logutil.Infof("x authentication ok: handle=@%s run_id=%s", handle, req.RunID)

	var mediaIDs []string
	if mediaID, err := p.uploadImage(ctx, api, req.Content.ImageURL); err != nil {
		logutil.Warnf("x media upload failed, posting text-only: run_id=%s: %v", req.RunID, err)
	} else {
		mediaIDs = append(mediaIDs, mediaID)
	}

	input := &managetweettypes.CreateInput{Text: gotwi.String(text)}
	if len(mediaIDs) > 0 {
		input.Media = &managetweettypes.CreateInputMedia{MediaIDs: mediaIDs}
	}

	res, err := managetweet.Create(ctx, api, input)
	if err != nil {
		return fmt.Errorf("post tweet: %w", unwrapGotwiError(err))
	}
	logutil.Infof("tweet posted: https://x.com/%s/status/%s run_id=%s",
		handle, gotwi.StringValue(res.Data.ID), req.RunID)

	return nil
}

// resolveText prefers the prebuilt caption from the content store and falls
// back to generation. Both paths go through the tweet constraints.
func (p *Publisher) resolveText(ctx context.Context, req autopost.Request) (string, error) {
	if caption, err := p.fetcher.Caption(ctx, req.Content.TweetCaptionURL); err == nil && caption != "" {
		logutil.Debugf("using prebuilt tweet caption: run_id=%s", req.RunID)
		return gemini.ConformTweet(caption), nil
	}

	text, err := p.gen.TweetText(ctx)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (p *Publisher) newAPIClient() (*gotwi.Client, error) {
	client, err := gotwi.NewClient(&gotwi.NewClientInput{
		HTTPClient:           p.httpClient,
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           p.creds.AccessToken,
		OAuthTokenSecret:     p.creds.AccessSecret,
		APIKey:               p.creds.ConsumerKey,
		APIKeySecret:         p.creds.ConsumerSecret,
		Debug:                logutil.Verbose(),
	})
	if err != nil {
		return nil, err
	}
	if !client.IsReady() {
		return nil, errors.New("client not ready")
	}
	return client, nil
}

func (p *Publisher) verifyCredentials(ctx context.Context, api *gotwi.Client) (string, error) {
	res, err := userlookup.GetMe(ctx, api, &userlookuptypes.GetMeInput{})
	if err != nil {
		return "", unwrapGotwiError(err)
	}
	return gotwi.StringValue(res.Data.Username), nil
}

// uploadImage fetches the day's image from the content store and runs the
// chunked upload protocol: initialize, append, finalize.
func (p *Publisher) uploadImage(ctx context.Context, api *gotwi.Client, imageURL string) (string, error) {
	data, err := p.fetcher.Image(ctx, imageURL)
	if err != nil {
		return "", err
	}

	mediaType, category, err := resolveMediaType(data)
	if err != nil {
		return "", err
	}

	logutil.Debugf("initialize upload: media_type=%s bytes=%d", mediaType, len(data))
	initRes, err := upload.Initialize(ctx, api, &uploadtypes.InitializeInput{
		MediaType:     mediaType,
		TotalBytes:    len(data),
		MediaCategory: category,
	})
	if err != nil {
		return "", fmt.Errorf("initialize upload: %w", unwrapGotwiError(err))
	}
	if err := partialError(initRes.Errors); err != nil {
		return "", fmt.Errorf("initialize upload: %w", err)
	}

	mediaID := initRes.Data.MediaID
	logutil.Debugf("initialize complete: media_id=%s", mediaID)

	appendIn := &uploadtypes.AppendInput{
		MediaID:      mediaID,
		Media:        bytes.NewReader(data),
		SegmentIndex: 0,
	}
	appendIn.GenerateBoundary()

	appendRes, err := upload.Append(ctx, api, appendIn)
	if err != nil {
		return "", fmt.Errorf("append upload: %w", unwrapGotwiError(err))
	}
	if err := partialError(appendRes.Errors); err != nil {
		return "", fmt.Errorf("append upload: %w", err)
	}

	finalizeRes, err := upload.Finalize(ctx, api, &uploadtypes.FinalizeInput{MediaID: mediaID})
	if err != nil {
		return "", fmt.Errorf("finalize upload: %w", unwrapGotwiError(err))
	}
	if err := partialError(finalizeRes.Errors); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	state := finalizeRes.Data.ProcessingInfo.State
	logutil.Debugf("finalize state=%s media_id=%s", state, mediaID)
	switch state {
	case "", resources.ProcessingInfoStateSucceeded:
		// no-op
	case resources.ProcessingInfoStateInProgress, resources.ProcessingInfoStatePending:
		wait := time.Duration(finalizeRes.Data.ProcessingInfo.CheckAfterSecs) * time.Second
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
			// images usually finish processing within the first wait window
		}
	default:
		return "", fmt.Errorf("media processing failed: state=%s", state)
	}

	return mediaID, nil
}

func resolveMediaType(data []byte) (uploadtypes.MediaType, uploadtypes.MediaCategory, error) {
	detected := http.DetectContentType(data)
	switch {
	case strings.Contains(detected, "png"):
		return uploadtypes.MediaTypePNG, uploadtypes.MediaCategoryTweetImage, nil
	case strings.Contains(detected, "jpeg"):
		return uploadtypes.MediaTypeJPEG, uploadtypes.MediaCategoryTweetImage, nil
	case strings.Contains(detected, "gif"):
		return uploadtypes.MediaTypeGIF, uploadtypes.MediaCategoryTweetGIF, nil
	case strings.Contains(detected, "webp"):
		return uploadtypes.MediaTypeWebP, uploadtypes.MediaCategoryTweetImage, nil
	}
	return "", "", fmt.Errorf("unsupported image type %q", detected)
}

func partialError(partials []resources.PartialError) error {
	if len(partials) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(partials))
	for _, pe := range partials {
		switch {
		case pe.Detail != nil && *pe.Detail != "":
			msgs = append(msgs, *pe.Detail)
		case pe.Title != nil && *pe.Title != "":
			msgs = append(msgs, *pe.Title)
		case pe.ResourceType != nil:
			msgs = append(msgs, fmt.Sprintf("%s", *pe.ResourceType))
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "unknown error")
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func unwrapGotwiError(err error) error {
	var gwErr *gotwi.GotwiError
	if errors.As(err, &gwErr) && gwErr != nil {
		return fmt.Errorf("%s", summarizeGotwiError(gwErr))
	}
	return err
}

func summarizeGotwiError(err *gotwi.GotwiError) string {
	if err == nil {
		return "unknown X API error"
	}

	parts := make([]string, 0, 4)
	if err.Title != "" {
		parts = append(parts, err.Title)
	}
	if err.Detail != "" {
		parts = append(parts, err.Detail)
	}
	for _, apiErr := range err.APIErrors {
		if apiErr.Message != "" {
			parts = append(parts, apiErr.Message)
		}
	}
	if len(parts) == 0 {
		if msg := err.Error(); msg != "" {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "X API request failed")
	}

	return strings.Join(parts, "; ")
}
