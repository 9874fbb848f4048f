package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Wryz/bible-modules/internal/server"
	"github.com/Wryz/bible-modules/pkg/config"
	"github.com/Wryz/bible-modules/pkg/logger"
)

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "bible-verses",
		Short:         "Scheduled Bible verse reveals for the home-screen widget",
		Long:          "bible-verses serves the verse schedule over HTTP and promotes due verses into the widget store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("corpus", "", "path to the Bible corpus JSON file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("store", "", "store driver (memory, sqlite, postgres, redis)")
	flags.String("sqlite-path", "", "SQLite database file")
	_ = v.BindPFlag("corpus_path", flags.Lookup("corpus"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("store.driver", flags.Lookup("store"))
	_ = v.BindPFlag("store.sqlite_path", flags.Lookup("sqlite-path"))

	serve := newServeCmd(v)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(
		serve,
		newPromoteCmd(v),
		newPopulateCmd(v),
		newLookupCmd(v),
		newSearchCmd(v),
	)
	return root
}

// bootstrap loads the configuration and builds the logger and server.
// Callers own the returned server and must Close it.
func bootstrap(ctx context.Context, v *viper.Viper) (*server.Server, *zap.Logger, error) {
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		return nil, nil, err
	}

	srv, err := server.NewServer(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("cannot create server: %w", err)
	}
	return srv, log, nil
}
