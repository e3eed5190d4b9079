package autopost

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	name  string
	err   error
	panic bool
	calls *[]string
}

func (p *fakePublisher) Name() string { return p.name }

func (p *fakePublisher) Publish(ctx context.Context, req Request) error {
	if p.calls != nil {
		*p.calls = append(*p.calls, p.name)
	}
	if p.panic {
		panic("remote client blew up")
	}
	return p.err
}

func testRequest() Request {
	return Request{
		RunID: "run-1",
		Date:  time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC),
	}
}

func TestRunner_RunsAllPublishersInOrder(t *testing.T) {
	var calls []string
	runner := NewRunner(
		&fakePublisher{name: "twitter", calls: &calls},
		&fakePublisher{name: "linkedin-image", calls: &calls},
		&fakePublisher{name: "linkedin-article", calls: &calls},
		&fakePublisher{name: "instagram", calls: &calls},
	)

	outcomes := runner.Run(context.Background(), testRequest())

	assert.Equal(t, []string{"twitter", "linkedin-image", "linkedin-article", "instagram"}, calls)
	require.Len(t, outcomes, 4)
	for _, out := range outcomes {
		assert.Equal(t, StatusPublished, out.Status)
	}
}

func TestRunner_FailureDoesNotBlockLaterPublishers(t *testing.T) {
	var calls []string
	runner := NewRunner(
		&fakePublisher{name: "twitter", calls: &calls, err: MissingCredentialsError{Platform: "twitter", Variables: []string{"CONSUMER_KEY"}}},
		&fakePublisher{name: "linkedin-image", calls: &calls, err: RemoteCallError{Platform: "linkedin", Step: "create-post", StatusCode: 422, Body: "{}"}},
		&fakePublisher{name: "instagram", calls: &calls},
	)

	outcomes := runner.Run(context.Background(), testRequest())

	assert.Equal(t, []string{"twitter", "linkedin-image", "instagram"}, calls)
	assert.Equal(t, StatusAborted, outcomes[0].Status)
	assert.Equal(t, ReasonMissingCredentials, outcomes[0].Reason)
	assert.Equal(t, StatusAborted, outcomes[1].Status)
	assert.Equal(t, ReasonRemoteCallFailed, outcomes[1].Reason)
	assert.Equal(t, StatusPublished, outcomes[2].Status)
}

func TestRunner_PanicIsIsolated(t *testing.T) {
	var calls []string
	runner := NewRunner(
		&fakePublisher{name: "twitter", calls: &calls, panic: true},
		&fakePublisher{name: "instagram", calls: &calls},
	)

	outcomes := runner.Run(context.Background(), testRequest())

	assert.Equal(t, []string{"twitter", "instagram"}, calls)
	assert.Equal(t, StatusAborted, outcomes[0].Status)
	assert.ErrorContains(t, outcomes[0].Err, "panic")
	assert.Equal(t, StatusPublished, outcomes[1].Status)
}

func TestRunner_Names(t *testing.T) {
	runner := NewRunner(&fakePublisher{name: "a"}, &fakePublisher{name: "b"})
	assert.Equal(t, []string{"a", "b"}, runner.Names())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want AbortReason
	}{
		{"nil", nil, ReasonNone},
		{"missing credentials", MissingCredentialsError{Platform: "x"}, ReasonMissingCredentials},
		{"content unavailable", ContentUnavailableError{URL: "u", StatusCode: 404}, ReasonContentUnavailable},
		{"generation unavailable", GenerationUnavailableError{Kind: "article", Err: errors.New("no key")}, ReasonGenerationUnavailable},
		{"remote call", RemoteCallError{Platform: "x", Step: "s", StatusCode: 500}, ReasonRemoteCallFailed},
		{"wrapped content unavailable", fmt.Errorf("fetch caption: %w", ContentUnavailableError{URL: "u", StatusCode: 404}), ReasonContentUnavailable},
		{"unknown", errors.New("boom"), ReasonRemoteCallFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestBodySnippet(t *testing.T) {
	assert.Equal(t, "short body", BodySnippet([]byte("  short body  "), 200))
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	got := BodySnippet(long, 200)
	assert.Len(t, got, 203)
	assert.Equal(t, "...", got[200:])
}

func TestRequestDay(t *testing.T) {
	req := Request{Date: time.Date(2026, time.September, 1, 0, 5, 0, 0, time.UTC)}
	assert.Equal(t, "2026-09-01", req.Day())
}
