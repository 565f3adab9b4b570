package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"imsse/internal/entitlement/handler"
	"imsse/internal/platform/config"
	"imsse/internal/platform/logger"
	"imsse/pkg/domain"
)

// newRecordCmd works on the configured store directly. Resetting a record
// while a server uses the same store bypasses its subscription locks.
func newRecordCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect or clear stored entitlement records",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <sub-id>",
			Short: "Print the stored record of a subscription",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sub, err := parseSub(args[0])
				if err != nil {
					return err
				}
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				be, err := openStore(cmd.Context(), cfg, logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat))
				if err != nil {
					return err
				}
				defer be.close()

				rec, err := be.store.Get(cmd.Context(), sub)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(handler.FromRecord(rec, time.Now()))
			},
		},
		&cobra.Command{
			Use:   "reset <sub-id>",
			Short: "Clear the stored record of a subscription",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sub, err := parseSub(args[0])
				if err != nil {
					return err
				}
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				be, err := openStore(cmd.Context(), cfg, logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat))
				if err != nil {
					return err
				}
				defer be.close()

				if err := be.store.Reset(cmd.Context(), sub); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "record %s reset\n", sub)
				return nil
			},
		},
	)
	return cmd
}

func parseSub(raw string) (domain.SubID, error) {
	sub, err := domain.ParseSubID(raw)
	if err != nil {
		return domain.InvalidSubID, err
	}
	if !sub.IsValid() {
		return domain.InvalidSubID, fmt.Errorf("subscription id %s does not name a subscription", raw)
	}
	return sub, nil
}
