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
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/autopost/instagram"
	"github.com/growwithkishore/autopost/internal/autopost/linkedin"
	"github.com/growwithkishore/autopost/internal/autopost/twitter"
	"github.com/growwithkishore/autopost/internal/config"
	"github.com/growwithkishore/autopost/internal/content"
	"github.com/growwithkishore/autopost/internal/gemini"
	"github.com/growwithkishore/autopost/internal/logutil"
	"github.com/growwithkishore/autopost/internal/server"
)

var (
	portFlag    string
	verboseFlag bool
)

const shutdownTimeout = 10 * time.Second

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autopost",
		Short: "Daily social content distribution service",
		Long: "autopost serves the trigger endpoint that fetches the day's image and captions, " +
			"generates supporting text with Gemini, and publishes to LinkedIn, X, and Instagram.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
		Example: `  autopost --port 5000
  autopost run --dry-run
  curl -X POST -H "X-Trigger-Key: $WEB_TRIGGER_KEY" http://localhost:5000/trigger-automation`,
	}

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "V", false, "Enable verbose logging")
	cmd.Flags().StringVarP(&portFlag, "port", "p", "", "Port to listen on (overrides PORT)")
	cmd.Flags().SortFlags = false

	cmd.AddCommand(newRunCommand())

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logutil.SetVerbose(verboseFlag)
	if !verboseFlag {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.ServerPort = portFlag
	}

	runner, err := buildRunner(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: server.New(cfg, runner).Handler(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	logutil.Infof("listening on :%s", cfg.ServerPort)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logutil.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildRunner wires the publishers in their fixed run order: microblog,
// LinkedIn image, LinkedIn article, photo share.
func buildRunner(ctx context.Context, cfg *config.Config) (*autopost.Runner, error) {
	fetcher := content.NewFetcher()

	gen, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	li := linkedin.NewClient(cfg.LinkedIn, gen, fetcher)

	return autopost.NewRunner(
		twitter.New(cfg.Twitter, gen, fetcher),
		li.ImagePublisher(),
		li.ArticlePublisher(),
		instagram.New(cfg.Instagram, gen, fetcher),
	), nil
}
