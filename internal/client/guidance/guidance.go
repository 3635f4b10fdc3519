// Package guidance attaches session credentials to protected calls and
// recovers from credential rejection with a single bounded retry.
package guidance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/geseib/personalboard/internal/client/api"
	"github.com/geseib/personalboard/internal/client/session"
)

// ErrSessionRejected means the server rejected the credential twice in a
// row: once before and once after a full re-authentication. Persistent
// rejection (clock skew, server-side invalidation) surfaces here instead
// of re-prompting forever.
var ErrSessionRejected = errors.New("session rejected after re-authentication")

// TransportError carries any non-401 failure status and the server's text.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("guidance call failed: %d: %s", e.Status, e.Body)
}

type Gateway struct {
	Session *session.Manager
	Client  *api.Client
}

func NewGateway(sess *session.Manager, client *api.Client) *Gateway {
	return &Gateway{Session: sess, Client: client}
}

// Call issues a protected request. On a 401 it wipes both credential slots,
// re-runs the interactive authentication, and retries the original call
// exactly once; a second 401 is fatal.
func (g *Gateway) Call(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	token, err := g.Session.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := g.Client.Do(ctx, path, payload, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if err := g.Session.Reset(); err != nil {
			return nil, fmt.Errorf("clearing rejected credentials: %w", err)
		}

		token, err = g.Session.EnsureAuthenticated(ctx)
		if err != nil {
			return nil, err
		}

		status, body, err = g.Client.Do(ctx, path, payload, token)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, ErrSessionRejected
		}
	}

	if status >= 400 {
		return nil, &TransportError{Status: status, Body: string(body)}
	}
	return body, nil
}

// CallJSON is Call with the response decoded into out.
func (g *Gateway) CallJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := g.Call(ctx, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
