package session

import (
	"time"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
)

// Evaluator combines the token store, the codec and the permission catalog
// to answer the three authorization questions: is there a live session, what
// roles does it carry, does it carry a given permission.
//
// Evaluate builds one explicit Session per request; the gatekeeper and the
// guards all consume that value rather than re-reading storage, so the two
// enforcement points cannot drift apart.
type Evaluator struct {
	codec   *token.Codec
	catalog *authz.Catalog
	now     func() time.Time
	log     *logger.Logger
}

// NewEvaluator creates an evaluator using the wall clock.
func NewEvaluator(codec *token.Codec, catalog *authz.Catalog) *Evaluator {
	return NewEvaluatorAt(codec, catalog, time.Now)
}

// NewEvaluatorAt creates an evaluator with an injected clock.
func NewEvaluatorAt(codec *token.Codec, catalog *authz.Catalog, now func() time.Time) *Evaluator {
	return &Evaluator{
		codec:   codec,
		catalog: catalog,
		now:     now,
		log:     logger.Get(),
	}
}

// Evaluate reads the store and produces the session for this request. An
// invalid or expired token is purged as a side effect, so repeated calls
// converge to a consistent logged-out state.
func (e *Evaluator) Evaluate(store *Store) *domain.Session {
	unauthenticated := &domain.Session{
		Authenticated: false,
		Permissions:   map[domain.Permission]struct{}{},
	}

	tokenString, ok := store.Read()
	if !ok {
		return unauthenticated
	}

	claims, err := e.codec.Decode(tokenString)
	if err != nil {
		e.log.Info("purging undecodable session token")
		store.Clear()
		return unauthenticated
	}
	if claims.Expired(e.now()) {
		e.log.Info("purging expired session token")
		store.Clear()
		return unauthenticated
	}

	record := domain.NewSessionRecord(claims)
	if len(record.Roles) == 0 {
		// Some issuances carry no role claim at all; the record cookie
		// written at login is the fallback source.
		if cookieRecord := store.Record(); cookieRecord != nil {
			record.Roles = cookieRecord.Roles
			if record.Name == "" {
				record.Name = cookieRecord.Name
			}
			if record.Email == "" {
				record.Email = cookieRecord.Email
			}
		}
	}

	return &domain.Session{
		Token:         tokenString,
		Authenticated: true,
		Record:        record,
		Permissions:   e.catalog.PermissionsFor(record.Roles),
	}
}

// Authorize reports whether the session is live and carries every required
// permission. Requirements combine with logical AND.
func (e *Evaluator) Authorize(sess *domain.Session, required ...domain.Permission) bool {
	if sess == nil || !sess.Authenticated {
		return false
	}
	for _, perm := range required {
		if !sess.HasPermission(perm) {
			return false
		}
	}
	return true
}
