package autopost

import (
	"errors"
	"fmt"
	"strings"
)

// AbortReason classifies why a publish attempt was abandoned.
type AbortReason string

const (
	ReasonNone                  AbortReason = ""
	ReasonMissingCredentials    AbortReason = "missing-credentials"
	ReasonContentUnavailable    AbortReason = "content-unavailable"
	ReasonGenerationUnavailable AbortReason = "generation-unavailable"
	ReasonRemoteCallFailed      AbortReason = "remote-call-failed"
)

// MissingCredentialsError is returned when a platform's credential set is
// incomplete.
type MissingCredentialsError struct {
	Platform  string
	Variables []string
}

func (e MissingCredentialsError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Platform)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Platform, strings.Join(e.Variables, ", "))
}

// ContentUnavailableError is returned when a caption or image could not be
// retrieved from the content repository.
type ContentUnavailableError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e ContentUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("content unavailable at %s (HTTP %d)", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("content unavailable at %s: %v", e.URL, e.Err)
}

func (e ContentUnavailableError) Unwrap() error { return e.Err }

// GenerationUnavailableError is returned when a text-generation call cannot
// produce output (unset key, API error, or empty response).
type GenerationUnavailableError struct {
	Kind string
	Err  error
}

func (e GenerationUnavailableError) Error() string {
	return fmt.Sprintf("%s generation unavailable: %v", e.Kind, e.Err)
}

func (e GenerationUnavailableError) Unwrap() error { return e.Err }

// RemoteCallError is returned when a platform API responds with a non-success
// status. Body holds a pre-truncated response snippet.
type RemoteCallError struct {
	Platform   string
	Step       string
	StatusCode int
	Body       string
}

func (e RemoteCallError) Error() string {
	return fmt.Sprintf("%s %s failed: HTTP %d: %s", e.Platform, e.Step, e.StatusCode, e.Body)
}

// Classify maps an error from a publisher onto the abort taxonomy. Anything
// unrecognized counts as a failed remote call.
func Classify(err error) AbortReason {
	if err == nil {
		return ReasonNone
	}
	var missing MissingCredentialsError
	if errors.As(err, &missing) {
		return ReasonMissingCredentials
	}
	var content ContentUnavailableError
	if errors.As(err, &content) {
		return ReasonContentUnavailable
	}
	var generation GenerationUnavailableError
	if errors.As(err, &generation) {
		return ReasonGenerationUnavailable
	}
	return ReasonRemoteCallFailed
}

// BodySnippet trims a response body for logging, cutting it off at limit bytes.
func BodySnippet(body []byte, limit int) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
