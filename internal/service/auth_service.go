// Package service implements the console's business operations on top of
// the upstream client, the token codec and the permission catalog.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/internal/events"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/telemetry"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnusableToken      = errors.New("backend issued an unusable token")
	ErrWebAccessBlocked   = errors.New("account is blocked from the web console")
	ErrUpstreamDown       = errors.New("authentication backend unavailable")
	ErrNotVisible         = errors.New("record not visible to caller")
)

// LoginResult carries everything the handler needs to establish a session.
type LoginResult struct {
	Token      string
	Record     *domain.SessionRecord
	RedirectTo string
}

// AuthService handles login and logout against the attendance backend.
type AuthService interface {
	// Login exchanges credentials upstream and validates the issued token.
	Login(ctx context.Context, req *dto.LoginRequest, deviceID string) (*LoginResult, error)
	// Logout announces the end of a session. Cookie clearing is the
	// handler's job; this only emits the lifecycle event.
	Logout(ctx context.Context, record *domain.SessionRecord, deviceID string)
}

type authService struct {
	client    *upstream.Client
	codec     *token.Codec
	table     *authz.RouteTable
	publisher events.Publisher
	now       func() time.Time
}

// NewAuthService creates the auth service.
func NewAuthService(client *upstream.Client, codec *token.Codec, table *authz.RouteTable, publisher events.Publisher) AuthService {
	return &authService{
		client:    client,
		codec:     codec,
		table:     table,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, deviceID string) (*LoginResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	span.SetAttributes(attribute.String("usuario", req.Usuario))

	tokenString, err := s.client.Login(ctx, req.Usuario, req.Pswd)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, upstream.ErrBadCredentials):
			span.SetStatus(codes.Error, "invalid credentials")
			return nil, ErrInvalidCredentials
		case errors.Is(err, upstream.ErrUnavailable):
			span.SetStatus(codes.Error, "upstream unavailable")
			return nil, ErrUpstreamDown
		default:
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unusable token")
		return nil, ErrUnusableToken
	}
	if claims.Expired(s.now()) {
		span.SetStatus(codes.Error, "token already expired")
		return nil, ErrUnusableToken
	}

	record := domain.NewSessionRecord(claims)
	for _, role := range record.Roles {
		if role == domain.RoleBlocked {
			span.SetStatus(codes.Error, "web access blocked")
			return nil, ErrWebAccessBlocked
		}
	}

	s.publisher.SessionOpened(ctx, record, deviceID)

	span.SetAttributes(attribute.String("subject", record.Subject))
	span.SetStatus(codes.Ok, "")

	return &LoginResult{
		Token:      tokenString,
		Record:     record,
		RedirectTo: s.redirectAfterLogin(req.CallbackURL, record.Roles),
	}, nil
}

func (s *authService) Logout(ctx context.Context, record *domain.SessionRecord, deviceID string) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	if record != nil {
		span.SetAttributes(attribute.String("subject", record.Subject))
	}
	s.publisher.SessionClosed(ctx, record, deviceID)
	span.SetStatus(codes.Ok, "")
}

// redirectAfterLogin honors a relative callback target, otherwise sends the
// user to their landing page. Absolute and protocol-relative URLs are
// ignored so the parameter cannot redirect off-site.
func (s *authService) redirectAfterLogin(callback string, roles []domain.Role) string {
	if strings.HasPrefix(callback, "/") && !strings.HasPrefix(callback, "//") {
		return callback
	}
	return s.table.LandingFor(roles)
}
