package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/config"
	"github.com/growwithkishore/autopost/internal/logutil"
)

const (
	platformName   = "instagram"
	defaultBaseURL = "https://graph.facebook.com/v17.0"
	requestTimeout = 30 * time.Second
	maxBodySnippet = 500

	// The Graph API reports rejected collaborator tags with this substring.
	// Matched purely so the log points at the tag list; never retried.
	invalidUserTagMarker = "invalid user id"
)

// UserTag places a collaborator username on the image at a normalized
// position in [0,1].
type UserTag struct {
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

var userTags = []UserTag{
	{Username: "digi_aura_meena", X: 0.2, Y: 0.8},
	{Username: "saravanan.online", X: 0.75, Y: 0.25},
	{Username: "archana_digital_marketer_06", X: 0.1, Y: 0.1},
	{Username: "ft_bilxl_0918", X: 0.5, Y: 0.5},
	{Username: "monika_digital_marketer", X: 0.15, Y: 0.9},
	{Username: "shainsha_js", X: 0.85, Y: 0.8},
	{Username: "prabhas_samuell", X: 0.4, Y: 0.1},
}

// Publisher posts the day's image through the two-step Graph API protocol:
// create a media container, then publish it. A container abandoned by a
// failed publish step is never cleaned up.
type Publisher struct {
	http    *resty.Client
	baseURL string
	creds   config.InstagramCredentials
	gen     autopost.TextGenerator
	fetcher autopost.ContentFetcher
}

// Option adjusts a Publisher.
type Option func(*Publisher)

// WithBaseURL points the publisher at a different Graph API host.
func WithBaseURL(url string) Option {
	return func(p *Publisher) { p.baseURL = url }
}

// New builds the Instagram publisher.
func New(creds config.InstagramCredentials, gen autopost.TextGenerator, fetcher autopost.ContentFetcher, opts ...Option) *Publisher {
	p := &Publisher{
		http:    resty.New().SetTimeout(requestTimeout),
		baseURL: defaultBaseURL,
		creds:   creds,
		gen:     gen,
		fetcher: fetcher,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the platform.
func (p *Publisher) Name() string { return platformName }

// Publish creates and publishes the day's media container.
func (p *Publisher) Publish(ctx context.Context, req autopost.Request) error {
	if missing := p.creds.Missing(); len(missing) > 0 {
		return autopost.MissingCredentialsError{Platform: platformName, Variables: missing}
	}

	caption, err := p.fetcher.Caption(ctx, req.Content.InstagramCaptionURL)
	if err != nil {
		return err
	}
	altText := p.gen.AltText(ctx, caption)

	containerID, err := p.createContainer(ctx, req.Content.ImageURL, caption, altText)
	if err != nil {
		return err
	}
	logutil.Infof("instagram media container created: id=%s run_id=%s", containerID, req.RunID)

	return p.publishContainer(ctx, containerID)
}

func (p *Publisher) createContainer(ctx context.Context, imageURL, caption, altText string) (string, error) {
	tags, err := json.Marshal(userTags)
	if err != nil {
		return "", fmt.Errorf("encode user tags: %w", err)
	}

	var out struct {
		ID string `json:"id"`
	}
	resp, err := p.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"image_url":    imageURL,
			"caption":      caption,
			"access_token": p.creds.AccessToken,
			"alt_text":     altText,
			"user_tags":    string(tags),
		}).
		SetResult(&out).
		Post(p.baseURL + "/" + p.creds.BusinessID + "/media")
	if err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}
	if !resp.IsSuccess() {
		return "", p.remoteErr("create-container", resp)
	}
	if out.ID == "" {
		return "", fmt.Errorf("create media container: response missing container id")
	}
	return out.ID, nil
}

func (p *Publisher) publishContainer(ctx context.Context, containerID string) error {
	resp, err := p.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"creation_id":  containerID,
			"access_token": p.creds.AccessToken,
		}).
		Post(p.baseURL + "/" + p.creds.BusinessID + "/media_publish")
	if err != nil {
		return fmt.Errorf("publish container: %w", err)
	}
	if !resp.IsSuccess() {
		return p.remoteErr("publish-container", resp)
	}
	return nil
}

func (p *Publisher) remoteErr(step string, resp *resty.Response) error {
	body := autopost.BodySnippet(resp.Body(), maxBodySnippet)
	if strings.Contains(strings.ToLower(body), invalidUserTagMarker) {
		logutil.Errorf("instagram rejected a tagged user; check the user tag list")
	}
	return autopost.RemoteCallError{
		Platform:   platformName,
		Step:       step,
		StatusCode: resp.StatusCode(),
		Body:       body,
	}
}
