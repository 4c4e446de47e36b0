package identity

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// customTokenAudience is the audience the identity toolkit expects on
// custom sign-in tokens.
const customTokenAudience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

// ServiceAccount is the subset of a service-account credential blob used
// for signing.
type ServiceAccount struct {
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
}

// CustomClaims are the claims of an identity toolkit custom token. The
// toolkit wants "aud" as a single string, which jwt.ClaimStrings would
// encode as an array, so it shadows RegisteredClaims.Audience.
type CustomClaims struct {
	UID      string         `json:"uid"`
	Claims   map[string]any `json:"claims,omitempty"`
	Audience string         `json:"aud"`
	jwt.RegisteredClaims
}

// GetAudience implements jwt.Claims.
func (c CustomClaims) GetAudience() (jwt.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Audience}, nil
}

// TokenIssuer mints short-lived custom tokens for a user id.
type TokenIssuer struct {
	email string
	keyID string
	key   *rsa.PrivateKey
	ttl   time.Duration
	now   func() time.Time
}

// NewTokenIssuer parses a service-account JSON blob.
func NewTokenIssuer(serviceAccountJSON string, ttl time.Duration) (*TokenIssuer, error) {
	var sa ServiceAccount
	if err := json.Unmarshal([]byte(serviceAccountJSON), &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, errors.New("service account is missing client_email or private_key")
	}

	// Keys pasted into env vars often carry escaped newlines.
	pemKey := strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}

	return &TokenIssuer{
		email: sa.ClientEmail,
		keyID: sa.PrivateKeyID,
		key:   key,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Issue returns a signed RS256 custom token for uid.
func (t *TokenIssuer) Issue(uid string) (string, error) {
	if uid == "" {
		return "", errors.New("uid must not be empty")
	}

	now := t.now()
	claims := CustomClaims{
		UID:      uid,
		Audience: customTokenAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.email,
			Subject:   t.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if t.keyID != "" {
		token.Header["kid"] = t.keyID
	}
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
