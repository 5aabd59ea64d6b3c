package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

const tokenIssuer = "gridbattle"

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// PlayerClaims binds a token to one player of one session. Subject holds
// the player id.
type PlayerClaims struct {
	SessionID string            `json:"sid"`
	Slot      engine.PlayerSlot `json:"slot"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and checks player tokens with a shared HMAC key
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer creates an issuer. A zero ttl means tokens live for a day.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for playerID
func (t *TokenIssuer) Issue(sessionID, playerID string, slot engine.PlayerSlot) (string, error) {
	now := t.now()
	claims := PlayerClaims{
		SessionID: strings.ToLower(sessionID),
		Slot:      slot,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// Parse verifies tok and returns its claims
func (t *TokenIssuer) Parse(tok string) (*PlayerClaims, error) {
	if tok == "" {
		return nil, ErrMissingToken
	}
	claims := &PlayerClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// tokenFromRequest reads a bearer header, falling back to ?token=
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
