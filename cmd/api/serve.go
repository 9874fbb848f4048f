package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the verse scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, log, err := bootstrap(ctx, v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			httpServer := srv.HTTPServer()
			srv.StartBackgroundJobs()

			errCh := make(chan error, 1)
			go func() {
				log.Info("server listening", zap.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				log.Info("shutting down gracefully, press Ctrl+C again to force")
			case err := <-errCh:
				if err != nil {
					_ = srv.Close()
					return err
				}
			}
			stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error("server forced to shutdown", zap.Error(err))
			}

			if err := srv.Close(); err != nil {
				log.Error("close store", zap.Error(err))
				return err
			}
			log.Info("server exiting")
			return nil
		},
	}

	cmd.Flags().String("port", "", "HTTP listen port")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
