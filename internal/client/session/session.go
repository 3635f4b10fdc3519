// Package session decides when the client holds a usable credential and
// runs the interactive claim flow when it does not.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/geseib/personalboard/internal/client/api"
	"github.com/geseib/personalboard/internal/client/config"
	"github.com/geseib/personalboard/internal/protocol"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// State tracks the manager through the bounded authentication flow.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateFailed
)

var (
	// ErrAuthenticationCancelled means the user declined the code prompt.
	// Terminal; the caller decides whether to proceed without guidance.
	ErrAuthenticationCancelled = errors.New("authentication cancelled")

	// ErrCodeRejected means the server refused the code: unknown, already
	// used, or lost a claim race. The user needs a new code.
	ErrCodeRejected = errors.New("code invalid or already used")

	// ErrMalformedRequest means the server rejected the request shape.
	ErrMalformedRequest = errors.New("malformed activation request")

	// ErrServer means the activation service failed internally.
	ErrServer = errors.New("activation server error")

	// ErrCancelled is returned by a Prompter when the user backs out.
	ErrCancelled = errors.New("prompt cancelled")
)

// Prompter collects a 6-digit access code from the user. The call blocks
// until the user answers or cancels; there is no timeout.
type Prompter interface {
	PromptCode(ctx context.Context) (string, error)
}

// Manager owns the credential slots and the claim flow. One interactive
// authentication runs per process; concurrent callers share its result.
type Manager struct {
	store    *config.Store
	client   *api.Client
	prompter Prompter
	group    singleflight.Group
	now      func() time.Time

	mu    sync.Mutex
	state State
}

func NewManager(store *config.Store, client *api.Client, prompter Prompter) *Manager {
	return &Manager{
		store:    store,
		client:   client,
		prompter: prompter,
		now:      time.Now,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// IsAuthenticated reports whether a stored token exists, parses, and has
// not expired. Parse failures read as "not authenticated", never as errors.
func (m *Manager) IsAuthenticated() bool {
	cfg, err := m.store.Load()
	if err != nil {
		return false
	}
	return m.tokenValid(cfg.SessionToken)
}

// tokenValid checks exp without verifying the signature; the client never
// holds the signing secret. The server re-verifies on every protected call.
func (m *Manager) tokenValid(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.After(m.now())
}

// EnsureAuthenticated returns a valid session token, running the
// interactive claim flow when the cached one is missing or expired.
// Concurrent calls collapse onto a single in-flight attempt so only one
// prompt is ever shown.
func (m *Manager) EnsureAuthenticated(ctx context.Context) (string, error) {
	v, err, _ := m.group.Do("session", func() (interface{}, error) {
		return m.authenticate(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) authenticate(ctx context.Context) (string, error) {
	cfg, err := m.store.Load()
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}

	if m.tokenValid(cfg.SessionToken) {
		m.setState(StateAuthenticated)
		return cfg.SessionToken, nil
	}

	// Client identity is device lineage, not session validity: a corrupt
	// or expired token never invalidates it. It is replaced only when the
	// stored value itself does not parse as a UUID.
	if _, err := uuid.Parse(cfg.ClientID); err != nil {
		cfg.ClientID = uuid.NewString()
		if err := m.store.Save(cfg); err != nil {
			return "", fmt.Errorf("persisting client identity: %w", err)
		}
	}

	m.setState(StateAuthenticating)

	code, err := m.prompter.PromptCode(ctx)
	if err != nil {
		m.setState(StateFailed)
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			return "", ErrAuthenticationCancelled
		}
		return "", fmt.Errorf("reading access code: %w", err)
	}

	resp, err := m.client.Activate(ctx, code, cfg.ClientID)
	if err != nil {
		m.setState(StateFailed)
		return "", classify(err)
	}

	cfg.SessionToken = resp.Token
	if err := m.store.Save(cfg); err != nil {
		return "", fmt.Errorf("persisting session token: %w", err)
	}

	m.setState(StateAuthenticated)
	return resp.Token, nil
}

// classify maps the server's machine error codes onto the client error
// taxonomy. Codes are matched exactly; descriptions carry no meaning.
func classify(err error) error {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case protocol.ErrorCodeRejected:
		return fmt.Errorf("%w: %s", ErrCodeRejected, apiErr.Message)
	case protocol.ErrorCodeInvalidRequest:
		return fmt.Errorf("%w: %s", ErrMalformedRequest, apiErr.Message)
	case protocol.ErrorCodeServerError:
		return fmt.Errorf("%w: %s", ErrServer, apiErr.Message)
	default:
		return err
	}
}

// ForgetSession clears the cached token only. The client identity stays.
func (m *Manager) ForgetSession() error {
	cfg, err := m.store.Load()
	if err != nil {
		return err
	}
	cfg.SessionToken = ""
	m.setState(StateUnauthenticated)
	return m.store.Save(cfg)
}

// Reset clears both credential slots. Used by the guidance gateway's 401
// wipe and by an explicit user logout; nothing else discards the identity.
func (m *Manager) Reset() error {
	cfg, err := m.store.Load()
	if err != nil {
		return err
	}
	cfg.SessionToken = ""
	cfg.ClientID = ""
	m.setState(StateUnauthenticated)
	return m.store.Save(cfg)
}

// TokenExpiry returns the exp claim of the stored token, or zero time when
// no parseable token exists.
func (m *Manager) TokenExpiry() time.Time {
	cfg, err := m.store.Load()
	if err != nil || cfg.SessionToken == "" {
		return time.Time{}
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(cfg.SessionToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
