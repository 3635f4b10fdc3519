package main

import (
	"errors"
	"fmt"

	"github.com/geseib/personalboard/internal/client/session"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Redeem an access code for a 7-day session",
	Long: `Redeem a 6-digit access code distributed by your coach. A successful
claim binds the code to this device and stores a session token locally;
the code cannot be used again, here or anywhere else.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if manager.IsAuthenticated() {
		fmt.Printf("Already authenticated; session valid until %s\n", manager.TokenExpiry().Local().Format("2006-01-02 15:04"))
		return nil
	}

	_, err := manager.EnsureAuthenticated(cmd.Context())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAuthenticationCancelled):
			return fmt.Errorf("cancelled")
		case errors.Is(err, session.ErrCodeRejected):
			return fmt.Errorf("that code is invalid or already used; ask your coach for a new one")
		default:
			return err
		}
	}

	fmt.Printf("Access granted; session valid until %s\n", manager.TokenExpiry().Local().Format("2006-01-02 15:04"))
	return nil
}
