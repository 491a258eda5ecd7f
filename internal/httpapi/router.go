// Package httpapi serves extracted time-use data over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/benmcmorran/anamericanday/core"
	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/gin-gonic/gin"
)

// shutdownTimeout bounds how long in-flight requests may take once the server stops.
const shutdownTimeout = 5 * time.Second

// SetupRouter registers every route on a new engine.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "An American Day API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/timescales", h.Timescales)
		api.GET("/series/:timescale", h.Series)
		api.GET("/labels/:timescale", h.Labels)
		api.GET("/breakdown/:timescale", h.Breakdown)
		api.POST("/view", h.View)
	}
	return r
}

// Serve extracts every dataset once and serves it on cfg.Addr until ctx is done.
func Serve(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	dataset, err := core.LoadDataset(core.WithSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           SetupRouter(NewHandler(dataset, cfg.Threshold)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "Serving %d timescales from %s on %s\n", len(dataset), cfg.DataDir, cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
