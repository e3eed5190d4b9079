package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growwithkishore/autopost/internal/autopost"
	"github.com/growwithkishore/autopost/internal/config"
	"github.com/growwithkishore/autopost/internal/logutil"
)

const triggerPath = "/trigger-automation"

// Server exposes the trigger endpoint. A valid trigger replies 202
// immediately and hands the automation sequence to a background goroutine;
// the response never waits on remote calls.
type Server struct {
	cfg    *config.Config
	runner *autopost.Runner
	engine *gin.Engine
	now    func() time.Time
	done   chan<- []autopost.Outcome
}

// Option adjusts a Server.
type Option func(*Server)

// WithClock replaces the time source used to resolve the content date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithCompletionChannel delivers each background run's outcomes to ch.
// Without it the background task is fire-and-forget.
func WithCompletionChannel(ch chan<- []autopost.Outcome) Option {
	return func(s *Server) { s.done = ch }
}

// New builds the HTTP server around a configured runner.
func New(cfg *config.Config, runner *autopost.Runner, opts ...Option) *Server {
	s := &Server{cfg: cfg, runner: runner, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/", s.handleStatus)
	engine.POST(triggerPath, s.handleTrigger)
	s.engine = engine

	return s
}

// Handler returns the router for mounting on an http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "autopost",
		"trigger": triggerPath,
	})
}

func (s *Server) handleTrigger(c *gin.Context) {
	if s.cfg.TriggerKey != "" && c.GetHeader("X-Trigger-Key") != s.cfg.TriggerKey {
		logutil.Errorf("trigger rejected: X-Trigger-Key mismatch")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "Unauthorized access."})
		return
	}

	now := s.now()
	req := autopost.Request{
		RunID:   uuid.NewString(),
		Date:    now,
		Content: s.cfg.ContentFor(now),
	}
	logutil.Infof("trigger accepted: run_id=%s date=%s", req.RunID, req.Day())

	// Fire-and-forget: the request context dies with the response, so the
	// background run gets its own.
	go func() {
		outcomes := s.runner.Run(context.Background(), req)
		if s.done != nil {
			s.done <- outcomes
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message":     "Automation sequence started for " + req.Day() + ".",
		"status_code": http.StatusAccepted,
		"date":        req.Day(),
	})
}
