// Package session manages the client-side credential lifecycle: the cookie
// store the token lives in and the per-request evaluator that turns it into
// an explicit Session value.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/config"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
)

// ErrInvalidToken is returned when Save is handed a token that fails
// structural validation or is already expired.
var ErrInvalidToken = errors.New("refusing to store invalid session token")

// RecordMirror is the server-side mirror of session records, keyed by the
// device cookie. Mirror failures never fail the cookie operation.
type RecordMirror interface {
	Put(ctx context.Context, deviceID string, record *domain.SessionRecord, ttl time.Duration) error
	Delete(ctx context.Context, deviceID string) error
}

// StoreConfig holds the cookie parameters of the token store.
type StoreConfig struct {
	TokenCookie  string
	ClientCookie string
	RecordCookie string
	DeviceCookie string
	Domain       string
	Secure       bool
	TTL          time.Duration
}

// StoreConfigFrom maps the application session config onto store settings,
// honoring the hardened lifetime variant.
func StoreConfigFrom(cfg *config.SessionConfig) StoreConfig {
	return StoreConfig{
		TokenCookie:  cfg.TokenCookie,
		ClientCookie: cfg.ClientCookie,
		RecordCookie: cfg.RecordCookie,
		DeviceCookie: cfg.DeviceCookie,
		Domain:       cfg.CookieDomain,
		Secure:       cfg.SecureCookies,
		TTL:          cfg.EffectiveTTL(),
	}
}

// Store is the per-request token store. The token is kept in two redundant
// cookies: an HttpOnly one the gatekeeper reads, and a script-readable one
// the browser UI uses to build Authorization headers. The sanitized session
// record rides in a third cookie and is mirrored server-side.
type Store struct {
	c      *gin.Context
	cfg    StoreConfig
	codec  *token.Codec
	mirror RecordMirror
	log    *logger.Logger

	// cleared is set once Clear runs; the request cookies still carry the
	// purged token, so reads fail closed for the rest of the request.
	cleared bool
}

// NewStore builds a store bound to one request. mirror may be nil.
func NewStore(c *gin.Context, cfg StoreConfig, codec *token.Codec, mirror RecordMirror) *Store {
	return &Store{
		c:      c,
		cfg:    cfg,
		codec:  codec,
		mirror: mirror,
		log:    logger.Get(),
	}
}

// Save persists the token and its session record in both cookie locations
// with a bounded lifetime, and mirrors the record server-side. Structurally
// invalid or expired tokens are rejected and nothing is written.
func (s *Store) Save(tokenString string, record *domain.SessionRecord) error {
	if !s.codec.Valid(tokenString) {
		s.log.Warn("rejected invalid token on save")
		return ErrInvalidToken
	}

	maxAge := int(s.cfg.TTL.Seconds())
	s.setCookie(s.cfg.TokenCookie, tokenString, maxAge, true)
	s.setCookie(s.cfg.ClientCookie, tokenString, maxAge, false)

	if record != nil {
		data, err := json.Marshal(record)
		if err != nil {
			s.log.Warn("failed to encode session record", zap.Error(err))
		} else {
			s.setCookie(s.cfg.RecordCookie, string(data), maxAge, false)
		}

		if s.mirror != nil {
			if err := s.mirror.Put(s.c.Request.Context(), s.DeviceID(), record, s.cfg.TTL); err != nil {
				s.log.Warn("failed to mirror session record", zap.Error(err))
			}
		}
	}
	s.cleared = false
	return nil
}

// Read returns the token, preferring the request-visible cookie, falling
// back to the script-readable one. When a token is present somewhere but no
// location holds a well-formed one, both locations are purged so the store
// heals itself (fail-closed).
func (s *Store) Read() (string, bool) {
	if s.cleared {
		return "", false
	}

	primary, errPrimary := s.c.Cookie(s.cfg.TokenCookie)
	if errPrimary == nil && s.codec.WellFormed(primary) {
		return primary, true
	}

	fallback, errFallback := s.c.Cookie(s.cfg.ClientCookie)
	if errFallback == nil && s.codec.WellFormed(fallback) {
		return fallback, true
	}

	if (errPrimary == nil && primary != "") || (errFallback == nil && fallback != "") {
		s.log.Info("purging malformed session token")
		s.Clear()
	}
	return "", false
}

// Record returns the session record cookie, or nil when absent or
// unparseable.
func (s *Store) Record() *domain.SessionRecord {
	if s.cleared {
		return nil
	}

	raw, err := s.c.Cookie(s.cfg.RecordCookie)
	if err != nil || raw == "" {
		return nil
	}
	var record domain.SessionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil
	}
	return &record
}

// Clear removes the token and the session record from every location, and
// marks the store so subsequent reads in the same request see the purge.
// Calling it on an already-empty store is a no-op.
func (s *Store) Clear() {
	s.cleared = true
	s.setCookie(s.cfg.TokenCookie, "", -1, true)
	s.setCookie(s.cfg.ClientCookie, "", -1, false)
	s.setCookie(s.cfg.RecordCookie, "", -1, false)

	if s.mirror != nil {
		if deviceID, err := s.c.Cookie(s.cfg.DeviceCookie); err == nil && deviceID != "" {
			if err := s.mirror.Delete(s.c.Request.Context(), deviceID); err != nil {
				s.log.Warn("failed to delete mirrored session record", zap.Error(err))
			}
		}
	}
}

// DeviceID returns the stable device identifier, minting one on first use.
// It survives Clear so a device keeps its identity across logins.
func (s *Store) DeviceID() string {
	if id, err := s.c.Cookie(s.cfg.DeviceCookie); err == nil && id != "" {
		return id
	}
	id := uuid.New().String()
	s.setCookie(s.cfg.DeviceCookie, id, int((365 * 24 * time.Hour).Seconds()), true)
	return id
}

func (s *Store) setCookie(name, value string, maxAge int, httpOnly bool) {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(name, value, maxAge, "/", s.cfg.Domain, s.cfg.Secure, httpOnly)
}
