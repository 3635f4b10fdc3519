package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geseib/personalboard/internal/models"
	"github.com/geseib/personalboard/internal/protocol"
	"github.com/geseib/personalboard/internal/secrets"
	"github.com/geseib/personalboard/pkg/utils"
	"gorm.io/gorm"
)

var (
	// ErrCodeRejected covers every unclaimable case: the code is unknown
	// to the store, already CLAIMED, or lost a concurrent claim race.
	// Callers cannot and must not distinguish between them.
	ErrCodeRejected = errors.New("access code rejected")

	// ErrSigningSecret means the signing secret could not be obtained or
	// used. The store is untouched when this is returned.
	ErrSigningSecret = errors.New("signing secret unavailable")
)

// codeTTLGrace keeps a claimed row around past token expiry so replayed
// claims keep failing instead of reporting the code as unknown.
const codeTTLGrace = 24 * time.Hour

// Grant is the result of one successful claim.
type Grant struct {
	Token     string
	ExpiresAt int64
	ExpiresIn int64
}

type ActivationService struct {
	db      *gorm.DB
	secrets *secrets.Cache
	now     func() time.Time
}

func NewActivationService(db *gorm.DB, secretCache *secrets.Cache) *ActivationService {
	return &ActivationService{
		db:      db,
		secrets: secretCache,
		now:     time.Now,
	}
}

// Claim atomically transitions a code to CLAIMED and mints the session
// token. The transition is a single conditional update; the database
// serializes concurrent attempts on the same row so exactly one caller
// wins and every other caller sees ErrCodeRejected. There is no retry and
// no partial success.
//
// The signing secret is resolved before the store is touched, so a
// configuration failure never burns a code.
func (s *ActivationService) Claim(ctx context.Context, code, clientID string) (*Grant, error) {
	secret, err := s.secrets.SigningSecret(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningSecret, err)
	}

	now := s.now().UTC()
	claimedAt := now.Unix()
	expiresAt := claimedAt + protocol.SessionLifetimeSeconds
	ttl := expiresAt + int64(codeTTLGrace.Seconds())

	res := s.db.WithContext(ctx).
		Model(&models.AccessCode{}).
		Where("code = ? AND status IN ?", code, models.ClaimableStatuses).
		Updates(map[string]interface{}{
			"status":     models.CodeStatusClaimed,
			"client_id":  clientID,
			"claimed_at": claimedAt,
			"expires_at": expiresAt,
			"ttl":        ttl,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCodeRejected
	}

	token, tokenExpiresAt, err := utils.MintSessionToken(secret, clientID, code, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningSecret, err)
	}

	return &Grant{
		Token:     token,
		ExpiresAt: tokenExpiresAt,
		ExpiresIn: protocol.SessionLifetimeSeconds,
	}, nil
}

// ValidateSession checks a presented token against the signing secret and
// the store: the redeemed code must still exist, be CLAIMED, and be bound
// to the token's subject. A row deleted by the TTL sweeper or rebound by
// an operator invalidates the session.
func (s *ActivationService) ValidateSession(ctx context.Context, tokenString string) (*utils.SessionClaims, error) {
	secret, err := s.secrets.SigningSecret(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningSecret, err)
	}

	claims, err := utils.ValidateSessionToken(secret, tokenString)
	if err != nil {
		return nil, err
	}

	var ac models.AccessCode
	if err := s.db.WithContext(ctx).First(&ac, "code = ?", claims.ID).Error; err != nil {
		return nil, fmt.Errorf("session revoked: %w", err)
	}
	if ac.Status != models.CodeStatusClaimed || ac.ClientID != claims.Subject {
		return nil, errors.New("session revoked")
	}

	return claims, nil
}
