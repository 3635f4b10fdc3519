package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Server: %s\n", cfg.ServerURL)

		if !manager.IsAuthenticated() {
			fmt.Println("Session: not authenticated; run \"boardctl login\"")
			return nil
		}

		expiry := manager.TokenExpiry()
		fmt.Printf("Session: authenticated, expires %s (%s remaining)\n",
			expiry.Local().Format("2006-01-02 15:04"),
			time.Until(expiry).Round(time.Minute))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
