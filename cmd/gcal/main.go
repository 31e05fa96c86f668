// gcal manages calendars and events through the calendar data protocol.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cyp0633/libgcal/gcal"
	"github.com/spf13/cobra"
)

// Global flags
var (
	configPath string
	debug      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gcal",
		Short: "Manage calendars and events",
		Long: `gcal talks to the calendar service with an AuthSub session token.

The token and service settings are read from a YAML file:

  token: "session-token"
  base_url: "https://www.google.com"
  timeout: 30s
  max_redirects: 10

The GCAL_TOKEN environment variable overrides the token.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gcal/config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log protocol exchanges to stderr")

	root.AddCommand(newCalendarsCmd(), newEventsCmd(), newTokenCmd())
	return root
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openSession loads configuration and opens an authenticated session
func openSession() (*gcal.Session, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("no token configured; set token in the config file or %s", TokenEnv)
	}
	return gcal.NewSessionWithConfig(cfg.Token, cfg.sessionConfig(newLogger()))
}
