/*
Copyright © 2025 growwithkishore

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/config"
	"github.com/growwithkishore/autopost/internal/logutil"
)

var dryRun bool

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one automation sequence and exit",
		Long: "run executes the full publishing sequence for today's content synchronously, " +
			"without going through the HTTP trigger.",
		RunE: runOnce,
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without posting")

	return cmd
}

func runOnce(cmd *cobra.Command, args []string) error {
	logutil.SetVerbose(verboseFlag)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runner, err := buildRunner(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	req := autopost.Request{
		RunID:   uuid.NewString(),
		Date:    now,
		Content: cfg.ContentFor(now),
	}

	out := cmd.OutOrStdout()

	if dryRun {
		fmt.Fprintf(out, "[dry-run] would publish content for %s\n", req.Day())
		fmt.Fprintf(out, "[dry-run] image: %s\n", req.Content.ImageURL)
		for _, name := range runner.Names() {
			fmt.Fprintf(out, "[dry-run] would publish to %s\n", name)
		}
		return nil
	}

	for _, outcome := range runner.Run(cmd.Context(), req) {
		if outcome.Status == autopost.StatusPublished {
			fmt.Fprintf(out, "%s: published\n", outcome.Platform)
		} else {
			fmt.Fprintf(out, "%s: aborted (%s): %v\n", outcome.Platform, outcome.Reason, outcome.Err)
		}
	}

	return nil
}
