package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/geseib/personalboard/internal/client/session"
)

// stdinPrompter reads the 6-digit access code from the terminal. Entering
// nothing cancels; the read itself has no timeout.
type stdinPrompter struct{}

func (p *stdinPrompter) PromptCode(ctx context.Context) (string, error) {
	fmt.Print("Enter your 6-digit access code (blank to cancel): ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", session.ErrCancelled
	}

	code := strings.TrimSpace(line)
	if code == "" {
		return "", session.ErrCancelled
	}
	return code, nil
}
