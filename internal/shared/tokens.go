package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "pos-ventas"

// TokenClaims is the JWT payload handed to clients after sign in.
type TokenClaims struct {
	AccountID string `json:"aid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer returns an issuer using secret as the HMAC key.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token bound to sess. The token expires with the session.
func (t *TokenIssuer) Issue(sess *Session) (string, error) {
	if sess == nil {
		return "", errors.New("issue token: nil session")
	}
	claims := TokenClaims{
		AccountID: sess.AccountID.String(),
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sess.AccountID.String(),
			ID:        sess.ID,
			IssuedAt:  jwt.NewNumericDate(t.now()),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns the principal it names.
func (t *TokenIssuer) Parse(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrInvalidToken
	}
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil || claims.SessionID == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{AccountID: accountID, SessionID: claims.SessionID}, nil
}
