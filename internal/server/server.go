// Package server exposes the recruitment workflow over a REST API. The caller
// is identified by the X-User-ID and X-User-Role headers set by the
// authenticating proxy upstream; the handlers enforce ownership scope only.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/crewline/crewline/internal/audit"
	"github.com/crewline/crewline/internal/docstore"
	"github.com/crewline/crewline/internal/notify"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps bundles what the handlers need.
type Deps struct {
	DB         *gorm.DB
	Dispatcher *notify.Dispatcher
	Recorder   *audit.Recorder
	Store      docstore.Store
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Deps
	Port int
	Out  io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("server: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(opts.Deps)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Crewline API running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
