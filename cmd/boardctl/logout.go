package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the local session and device identity",
	Long: `Clears the stored session token and the client identity. The next
login starts a fresh device lineage and needs a new access code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager.Reset(); err != nil {
			return fmt.Errorf("clearing credentials: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
