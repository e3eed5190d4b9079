package autopost

import (
	"context"
	"fmt"

	"github.com/growwithkishore/autopost/internal/logutil"
)

// Runner executes the publishers in a fixed order on a single goroutine. A
// failure, missing credential set, or panic in one publisher never prevents
// the next from running.
type Runner struct {
	publishers []Publisher
}

// NewRunner builds a Runner over the given publishers; they run in argument
// order.
func NewRunner(publishers ...Publisher) *Runner {
	return &Runner{publishers: publishers}
}

// Names returns the publisher names in run order.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.publishers))
	for _, pub := range r.publishers {
		names = append(names, pub.Name())
	}
	return names
}

// Run executes one automation sequence and returns the per-platform outcomes.
func (r *Runner) Run(ctx context.Context, req Request) []Outcome {
	logutil.Infof("starting automation sequence: run_id=%s date=%s", req.RunID, req.Day())

	outcomes := make([]Outcome, 0, len(r.publishers))
	for _, pub := range r.publishers {
		outcomes = append(outcomes, r.attempt(ctx, pub, req))
	}

	published := 0
	for _, out := range outcomes {
		if out.Status == StatusPublished {
			published++
		}
	}
	logutil.Infof("automation sequence complete: run_id=%s published=%d aborted=%d",
		req.RunID, published, len(outcomes)-published)

	return outcomes
}

func (r *Runner) attempt(ctx context.Context, pub Publisher, req Request) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{
				Platform: pub.Name(),
				Status:   StatusAborted,
				Reason:   ReasonRemoteCallFailed,
				Err:      fmt.Errorf("panic: %v", rec),
			}
			logutil.Errorf("%s publish panicked: run_id=%s: %v", pub.Name(), req.RunID, rec)
		}
	}()

	if err := pub.Publish(ctx, req); err != nil {
		reason := Classify(err)
		logutil.Errorf("%s publish aborted (%s): run_id=%s: %v", pub.Name(), reason, req.RunID, err)
		return Outcome{Platform: pub.Name(), Status: StatusAborted, Reason: reason, Err: err}
	}

	logutil.Infof("%s publish succeeded: run_id=%s", pub.Name(), req.RunID)
	return Outcome{Platform: pub.Name(), Status: StatusPublished}
}
