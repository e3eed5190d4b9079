package autopost

import (
	"context"
	"time"

	"github.com/growwithkishore/autopost/internal/config"
)

// Request carries everything one automation run needs. It is built at trigger
// time and never mutated.
type Request struct {
	RunID   string
	Date    time.Time
	Content config.ContentLocation
}

// Day formats the request date the way the content repository names folders.
func (r Request) Day() string {
	return r.Date.Format(config.DateLayout)
}

// Publisher abstracts one platform's multi-step post-creation protocol. A nil
// return means the post was published; any error aborts that platform only.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, req Request) error
}

// TextGenerator produces the LLM-backed text pieces used by publishers.
type TextGenerator interface {
	// AltText always returns a usable value; failures substitute a fixed
	// fallback rather than aborting.
	AltText(ctx context.Context, caption string) string
	Article(ctx context.Context) (string, error)
	TweetText(ctx context.Context) (string, error)
}

// ContentFetcher retrieves day-dated captions and image bytes from the
// content repository.
type ContentFetcher interface {
	Caption(ctx context.Context, url string) (string, error)
	Image(ctx context.Context, url string) ([]byte, error)
}

// Status is the terminal state of one publish attempt.
type Status string

const (
	StatusPublished Status = "published"
	StatusAborted   Status = "aborted"
)

// Outcome records how one platform's publish attempt ended.
type Outcome struct {
	Platform string
	Status   Status
	Reason   AbortReason
	Err      error
}
