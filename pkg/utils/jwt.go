package utils

import (
	"fmt"
	"time"

	"github.com/geseib/personalboard/internal/protocol"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token: sub is the client
// identity, jti is the redeemed access code, app pins the token to this
// application.
type SessionClaims struct {
	App string `json:"app"`
	jwt.RegisteredClaims
}

// MintSessionToken signs a session token for one successful claim. The
// expiry is fixed at issuedAt plus the 7-day session window; tokens are
// never reissued or mutated.
func MintSessionToken(secret []byte, clientID, code string, issuedAt time.Time) (string, int64, error) {
	expiresAt := issuedAt.Add(time.Duration(protocol.SessionLifetimeSeconds) * time.Second)
	claims := SessionClaims{
		App: protocol.AppTag,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ID:        code,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.Unix(), nil
}

// ValidateSessionToken verifies signature, expiry and the application tag.
func ValidateSessionToken(secret []byte, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.App != protocol.AppTag {
		return nil, fmt.Errorf("token minted for a different application")
	}

	return claims, nil
}
