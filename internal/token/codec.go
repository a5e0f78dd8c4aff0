// Package token decodes the compact session tokens issued by the attendance
// backend.
//
// The codec deliberately does NOT verify the token signature. The console is
// a client of the issuing backend: tokens only ever arrive over TLS from the
// backend's /auth endpoint or back from the user's own cookie jar, and every
// data-bearing request is re-authorized upstream with the same bearer token.
// Integrity is therefore enforced by the issuer and the transport, and this
// codec checks structure and expiry only. If the console ever becomes an
// authority itself, signature verification against the issuer's public key
// must be added here.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

// ErrMalformedToken is returned for tokens that fail structural validation.
var ErrMalformedToken = errors.New("malformed session token")

// Codec decodes and validates session tokens.
type Codec struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewCodec creates a codec using the wall clock.
func NewCodec() *Codec {
	return &Codec{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// NewCodecAt creates a codec with an injected clock.
func NewCodecAt(now func() time.Time) *Codec {
	return &Codec{
		parser: jwt.NewParser(),
		now:    now,
	}
}

// Decode splits the token into its three segments, base64url-decodes the
// payload segment and extracts the allow-listed claims. Any structural
// failure yields ErrMalformedToken.
func (c *Codec) Decode(tokenString string) (*domain.ClaimSet, error) {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(segments))
	}
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment", ErrMalformedToken)
		}
	}

	payload, err := c.parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: payload is not JSON: %v", ErrMalformedToken, err)
	}

	claims := &domain.ClaimSet{
		Subject:   firstString(raw, "sub", "user_id", "usuario"),
		Name:      firstString(raw, "name", "nombre"),
		Email:     firstString(raw, "email", "correo"),
		TenantID:  firstString(raw, "tenant", "tenant_id"),
		IssuedAt:  toUnix(raw["iat"]),
		ExpiresAt: toUnix(raw["exp"]),
		Roles:     extractRoles(raw),
	}
	return claims, nil
}

// IsExpired reports whether the token's expiry claim is in the past. Tokens
// that fail to decode, or whose expiry is missing or unparseable, count as
// expired.
func (c *Codec) IsExpired(tokenString string) bool {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return true
	}
	return claims.Expired(c.now())
}

// Valid reports whether the token is structurally well-formed and unexpired.
func (c *Codec) Valid(tokenString string) bool {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return false
	}
	return !claims.Expired(c.now())
}

// WellFormed reports whether the token decodes at all, ignoring expiry.
func (c *Codec) WellFormed(tokenString string) bool {
	_, err := c.Decode(tokenString)
	return err == nil
}

func firstString(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func toUnix(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
