package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	adapthttp "fitlog/internal/adapter/http"
	"fitlog/internal/jobs"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the web client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.withBackend(func(b *backend) error {
				return c.serve(ctx, b)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	return cmd
}

func (c *cli) serve(ctx context.Context, b *backend) error {
	cfg, log := c.cfg, c.log
	svc := b.services()

	srv := adapthttp.New(svc, cfg.WebDir, log).WithCORS(cfg.CorsOrigins)
	if cfg.AuthDisabled {
		log.Warn("authentication disabled", zap.Int64("user_id", cfg.UserID))
		srv.WithoutAuth(cfg.UserID)
	}
	if cfg.OIDC.Enabled() {
		oc, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return err
		}
		srv.WithOIDC(oc)
		log.Info("sso enabled", zap.String("issuer", cfg.OIDC.Issuer))
	}

	sched := jobs.New(log)
	if !cfg.AuthDisabled {
		if err := sched.AddSessionPurge(cfg.SessionPurgeSchedule, svc.Auth); err != nil {
			return err
		}
	}
	sched.Start()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
		errc <- httpServer.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	log.Info("shutdown complete")
	return serveErr
}
