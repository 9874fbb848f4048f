package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newPromoteCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "promote",
		Short: "Promote the earliest due reveal into the widget once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, log, err := bootstrap(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			defer func() {
				if err := srv.Close(); err != nil {
					log.Error("close store", zap.Error(err))
				}
			}()

			record, err := srv.Service().PromoteNextDue(cmd.Context())
			if err != nil {
				return err
			}
			if record == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
}

func newPopulateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Schedule random reveals at the configured refresh interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			if count < 0 {
				return fmt.Errorf("count must not be negative: %d", count)
			}

			srv, log, err := bootstrap(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			defer func() {
				if err := srv.Close(); err != nil {
					log.Error("close store", zap.Error(err))
				}
			}()

			scheduled, err := srv.Service().PopulateSchedule(cmd.Context(), count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scheduled %d reveals\n", scheduled)
			return nil
		},
	}
	cmd.Flags().Int("count", 0, "number of reveals to schedule (0 uses populate_count)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
