package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/geseib/personalboard/internal/client/guidance"
	"github.com/geseib/personalboard/internal/client/session"
	"github.com/spf13/cobra"
)

var adviceCmd = &cobra.Command{
	Use:   "advice [prompt]",
	Short: "Ask the guidance service about your board",
	Long: `Sends your prompt to the protected guidance endpoint. Prompts for an
access code first if no valid session exists; a rejected session is retried
once after re-authentication, then given up on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdvice,
}

func init() {
	rootCmd.AddCommand(adviceCmd)
}

func runAdvice(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Advice string `json:"advice"`
		} `json:"data"`
	}

	err := gateway.CallJSON(cmd.Context(), "/advice", map[string]string{"prompt": prompt}, &resp)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAuthenticationCancelled):
			return fmt.Errorf("cancelled")
		case errors.Is(err, guidance.ErrSessionRejected):
			return fmt.Errorf("session rejected even after re-authentication; check your system clock or contact support")
		default:
			return err
		}
	}

	fmt.Println(resp.Data.Advice)
	return nil
}
