package main

import (
	"fmt"

	"github.com/cyp0633/libgcal/gcal"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "AuthSub token management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "exchange AUTH_TOKEN",
		Short: "Exchange a single-use token for a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			token, err := gcal.GetSessionToken(cmd.Context(), args[0], cfg.sessionConfig(newLogger()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	})
	return cmd
}
