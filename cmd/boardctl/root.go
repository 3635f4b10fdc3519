package main

import (
	"fmt"
	"os"

	"github.com/geseib/personalboard/internal/client/api"
	"github.com/geseib/personalboard/internal/client/config"
	"github.com/geseib/personalboard/internal/client/guidance"
	"github.com/geseib/personalboard/internal/client/session"
	"github.com/spf13/cobra"
)

var (
	flagServerURL string

	store   *config.Store
	cfg     *config.Config
	manager *session.Manager
	gateway *guidance.Gateway
)

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Personal Board CLI for unlocking and using AI guidance from the terminal",
	Long: `Personal Board CLI redeems a 6-digit access code for a 7-day session
and sends board context to the guidance service.

Get started:
  boardctl login              Redeem an access code
  boardctl status             Show session state and expiry
  boardctl advice "..."       Ask for guidance on your board`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		store, err = config.NewStore("")
		if err != nil {
			return fmt.Errorf("locating config: %w", err)
		}
		cfg, err = store.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}

		client := api.NewClient(cfg.ServerURL)
		manager = session.NewManager(store, client, &stdinPrompter{})
		gateway = guidance.NewGateway(manager, client)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
