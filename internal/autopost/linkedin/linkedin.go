package linkedin

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/config"
	"github.com/growwithkishore/autopost/internal/logutil"
)

const (
	platformName   = "linkedin"
	defaultBaseURL = "https://api.linkedin.com/v2"
	requestTimeout = 30 * time.Second
	maxBodySnippet = 200

	uploadMechanismKey = "com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"
	shareContentKey    = "com.linkedin.ugc.ShareContent"
	visibilityKey      = "com.linkedin.ugc.MemberNetworkVisibility"
)

// Client speaks the LinkedIn UGC wire protocol. It backs two publishers: the
// day's image post and the generated article post.
type Client struct {
	http    *resty.Client
	baseURL string
	creds   config.LinkedInCredentials
	gen     autopost.TextGenerator
	fetcher autopost.ContentFetcher
}

// Option adjusts a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// NewClient builds a LinkedIn client. Missing credentials are not an error
// here; each publish attempt reports them so the rest of the sequence can
// still run.
func NewClient(creds config.LinkedInCredentials, gen autopost.TextGenerator, fetcher autopost.ContentFetcher, opts ...Option) *Client {
	c := &Client{
		http:    resty.New().SetTimeout(requestTimeout),
		baseURL: defaultBaseURL,
		creds:   creds,
		gen:     gen,
		fetcher: fetcher,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ImagePublisher returns the image-post publisher backed by this client.
func (c *Client) ImagePublisher() autopost.Publisher { return imagePoster{c} }

// ArticlePublisher returns the article-post publisher backed by this client.
func (c *Client) ArticlePublisher() autopost.Publisher { return articlePoster{c} }

type imagePoster struct{ c *Client }

func (p imagePoster) Name() string { return "linkedin-image" }

func (p imagePoster) Publish(ctx context.Context, req autopost.Request) error {
	return p.c.publishImage(ctx, req)
}

type articlePoster struct{ c *Client }

func (p articlePoster) Name() string { return "linkedin-article" }

func (p articlePoster) Publish(ctx context.Context, req autopost.Request) error {
	return p.c.publishArticle(ctx, req)
}

// publishImage runs the three-step image protocol: register the upload asset,
// send the image bytes to the returned URL, then create the post referencing
// the asset.
func (c *Client) publishImage(ctx context.Context, req autopost.Request) error {
	if missing := c.creds.Missing(); len(missing) > 0 {
		return autopost.MissingCredentialsError{Platform: platformName, Variables: missing}
	}

	caption, err := c.fetcher.Caption(ctx, req.Content.LinkedInCaptionURL)
	if err != nil {
		return err
	}
	altText := c.gen.AltText(ctx, caption)

	asset, uploadURL, err := c.registerUpload(ctx)
	if err != nil {
		return err
	}
	logutil.Infof("linkedin upload registered: asset=%s run_id=%s", asset, req.RunID)

	image, err := c.fetcher.Image(ctx, req.Content.ImageURL)
	if err != nil {
		return err
	}
	if err := c.uploadImage(ctx, uploadURL, image); err != nil {
		return err
	}
	logutil.Infof("linkedin image uploaded: bytes=%d run_id=%s", len(image), req.RunID)

	post := newUGCPost(c.creds.PersonURN, caption)
	content := post.SpecificContent[shareContentKey]
	content.ShareMediaCategory = "IMAGE"
	content.Media = []shareMedia{{Status: "READY", Media: asset, AltText: altText}}
	post.SpecificContent[shareContentKey] = content

	return c.createPost(ctx, post)
}

// publishArticle posts the generated text-only article.
func (c *Client) publishArticle(ctx context.Context, req autopost.Request) error {
	if missing := c.creds.Missing(); len(missing) > 0 {
		return autopost.MissingCredentialsError{Platform: platformName, Variables: missing}
	}

	article, err := c.gen.Article(ctx)
	if err != nil {
		return err
	}
	logutil.Infof("linkedin article generated: length=%d run_id=%s", len(article), req.RunID)

	return c.createPost(ctx, newUGCPost(c.creds.PersonURN, article))
}

func (c *Client) registerUpload(ctx context.Context) (asset, uploadURL string, err error) {
	body := registerUploadRequest{
		RegisterUploadRequest: registerUploadPayload{
			Recipes: []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			Owner:   c.creds.PersonURN,
			ServiceRelationships: []serviceRelationship{
				{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
			},
		},
	}

	var out registerUploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.creds.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(c.baseURL + "/assets?action=registerUpload")
	if err != nil {
		return "", "", fmt.Errorf("register upload: %w", err)
	}
	if !resp.IsSuccess() {
		return "", "", remoteErr("register-upload", resp)
	}

	uploadURL = out.Value.UploadMechanism[uploadMechanismKey].UploadURL
	if out.Value.Asset == "" || uploadURL == "" {
		return "", "", fmt.Errorf("register upload: malformed response (missing asset or uploadUrl)")
	}
	return out.Value.Asset, uploadURL, nil
}

func (c *Client) uploadImage(ctx context.Context, uploadURL string, image []byte) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.creds.AccessToken).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(image).
		Put(uploadURL)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	if !resp.IsSuccess() {
		return remoteErr("upload-image", resp)
	}
	return nil
}

func (c *Client) createPost(ctx context.Context, post ugcPost) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.creds.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(post).
		Post(c.baseURL + "/ugcPosts")
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	if !resp.IsSuccess() {
		return remoteErr("create-post", resp)
	}
	return nil
}

func remoteErr(step string, resp *resty.Response) error {
	return autopost.RemoteCallError{
		Platform:   platformName,
		Step:       step,
		StatusCode: resp.StatusCode(),
		Body:       autopost.BodySnippet(resp.Body(), maxBodySnippet),
	}
}

type registerUploadRequest struct {
	RegisterUploadRequest registerUploadPayload `json:"registerUploadRequest"`
}

type registerUploadPayload struct {
	Recipes              []string              `json:"recipes"`
	Owner                string                `json:"owner"`
	ServiceRelationships []serviceRelationship `json:"serviceRelationships"`
}

type serviceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type registerUploadResponse struct {
	Value struct {
		Asset           string `json:"asset"`
		UploadMechanism map[string]struct {
			UploadURL string `json:"uploadUrl"`
		} `json:"uploadMechanism"`
	} `json:"value"`
}

type ugcPost struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent map[string]shareContent `json:"specificContent"`
	Visibility      map[string]string       `json:"visibility"`
}

type shareContent struct {
	ShareCommentary    textValue    `json:"shareCommentary"`
	ShareMediaCategory string       `json:"shareMediaCategory"`
	Media              []shareMedia `json:"media,omitempty"`
}

type textValue struct {
	Text string `json:"text"`
}

type shareMedia struct {
	Status  string `json:"status"`
	Media   string `json:"media"`
	AltText string `json:"altText"`
}

func newUGCPost(author, text string) ugcPost {
	return ugcPost{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]shareContent{
			shareContentKey: {
				ShareCommentary:    textValue{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: map[string]string{visibilityKey: "PUBLIC"},
	}
}
