package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/go-scripts/quotes/internal/api"
)

type ServeCmd struct {
	Listen        string `help:"Address to listen on (overrides server.listen)." placeholder:"ADDR"`
	MaxConcurrent int    `help:"Maximum simultaneous scrapes (overrides server.max_concurrent)." placeholder:"N"`
}

func (c *ServeCmd) Run(a *app) error {
	if c.Listen != "" {
		a.cfg.Server.Listen = c.Listen
	}
	if c.MaxConcurrent > 0 {
		a.cfg.Server.MaxConcurrent = c.MaxConcurrent
	}
	l := log.WithPrefix("serve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	proc, err := a.processor(st)
	if err != nil {
		return err
	}

	if log.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(api.Config{
		Launcher:      a.launcher(),
		Options:       a.cfg.CrawlerOptions(),
		Processor:     proc,
		Store:         st,
		MaxConcurrent: a.cfg.Server.MaxConcurrent,
		ImageDir:      a.imageDir(),
	})

	// No write timeout: scrape streams stay open for minutes.
	srv := &http.Server{
		Addr:              a.cfg.Server.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		l.Info("API server starting", "addr", srv.Addr, "store", a.cfg.Store.Driver, "max_concurrent", a.cfg.Server.MaxConcurrent)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	l.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	l.Info("server exited")
	return nil
}
