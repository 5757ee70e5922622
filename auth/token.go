package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenVerifier validates a bearer credential and yields the user id it was
// issued to. The resolver treats "valid" vs "invalid/expired" as its only
// two inputs from this collaborator.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// RevocationChecker answers whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenRevoker places a token id on the denylist for a bounded window.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// JWTVerifier verifies HS256 access tokens. Revocation is optional; when a
// checker is configured a revoked jti fails verification.
type JWTVerifier struct {
	key     []byte
	revoked RevocationChecker
}

func NewJWTVerifier(secret []byte, revoked RevocationChecker) *JWTVerifier {
	return &JWTVerifier{key: secret, revoked: revoked}
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	if v.revoked != nil && claims.ID != "" {
		revoked, err := v.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("revocation check: %w", err)
		}
		if revoked {
			return "", errors.New("token revoked")
		}
	}
	return claims.Subject, nil
}

// RevocationWindow returns the token's id and remaining lifetime, for
// denylisting it at logout. The signature must still verify; an already
// tampered token has nothing worth revoking.
func (v *JWTVerifier) RevocationWindow(tokenString string) (string, time.Duration, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return "", 0, fmt.Errorf("invalid token: %w", err)
	}
	if claims.ID == "" {
		return "", 0, errors.New("token has no id")
	}
	ttl := time.Hour
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return claims.ID, ttl, nil
}

// Issue signs a fresh access token for userID. Each token carries a unique
// jti so it can be individually revoked.
func (v *JWTVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}
