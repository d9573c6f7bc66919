package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voco-chat/bridge/internal/domain"
)

var ErrInvalidToken = errors.New("invalid session token")

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// MintToken issues the HS256 token the dialer presents on the handshake.
func MintToken(secret string, userID domain.UserID, sessionID domain.SessionID, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		SessionID: string(sessionID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseToken verifies a token and returns the identities it binds.
func ParseToken(secret, token string) (domain.UserID, domain.SessionID, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrInvalidToken
	}
	return domain.UserID(c.Subject), domain.SessionID(c.SessionID), nil
}
