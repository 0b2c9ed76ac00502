package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Warky-Devs/backoffice/pkg/api"
	"github.com/Warky-Devs/backoffice/pkg/logger"
	"github.com/Warky-Devs/backoffice/pkg/metrics"
	"github.com/Warky-Devs/backoffice/pkg/search"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			m := metrics.New(nil)
			orders, users, err := b.engines(cfg, search.WithObserver(m))
			if err != nil {
				return err
			}

			handler := api.NewHandler(cfg.IsDev())
			api.Register(handler, orders)
			api.Register(handler, users)
			for name, check := range b.checks {
				handler.AddHealthCheck(name, check)
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           api.NewRouter(handler, api.RouterOptions{CORSOrigin: cfg.CORSOrigin, Metrics: m}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting server on %s (store=%s)", srv.Addr, cfg.StoreDriver)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "server failed")
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
