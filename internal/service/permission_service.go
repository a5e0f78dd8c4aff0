package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/dto"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/telemetry"
)

// CatalogStore persists the admin-edited permission override table.
type CatalogStore interface {
	Load(ctx context.Context) (map[domain.Role][]domain.Permission, error)
	Save(ctx context.Context, override map[domain.Role][]domain.Permission) error
}

// PermissionService exposes the role→permissions table to the role
// management screen and keeps the in-memory catalog in sync with the
// persisted override.
type PermissionService interface {
	Table(ctx context.Context) *dto.PermissionTable
	Update(ctx context.Context, table *dto.PermissionTable) error
	// LoadOverride applies the persisted override on startup.
	LoadOverride(ctx context.Context) error
}

type permissionService struct {
	catalog *authz.Catalog
	store   CatalogStore
}

// NewPermissionService creates the permission service. store may be nil when
// no persistence is configured; the hardcoded defaults then apply.
func NewPermissionService(catalog *authz.Catalog, store CatalogStore) PermissionService {
	return &permissionService{catalog: catalog, store: store}
}

func (s *permissionService) Table(ctx context.Context) *dto.PermissionTable {
	_, span := telemetry.StartSpan(ctx, "service.permission.table")
	defer span.End()

	entries := make(map[string][]string)
	for role, perms := range s.catalog.Entries() {
		out := make([]string, 0, len(perms))
		for _, p := range perms {
			out = append(out, string(p))
		}
		sort.Strings(out)
		entries[string(role)] = out
	}

	span.SetStatus(codes.Ok, "")
	return &dto.PermissionTable{Entries: entries}
}

func (s *permissionService) Update(ctx context.Context, table *dto.PermissionTable) error {
	ctx, span := telemetry.StartSpan(ctx, "service.permission.update")
	defer span.End()

	span.SetAttributes(attribute.Int("roles", len(table.Entries)))

	override := make(map[domain.Role][]domain.Permission, len(table.Entries))
	for role, perms := range table.Entries {
		if strings.TrimSpace(role) == "" {
			span.SetStatus(codes.Error, "empty role name")
			return fmt.Errorf("role name must not be empty")
		}
		converted := make([]domain.Permission, 0, len(perms))
		for _, p := range perms {
			name := strings.TrimSpace(p)
			if !strings.Contains(name, ":") {
				span.SetStatus(codes.Error, "malformed permission")
				return fmt.Errorf("permission %q must have the form domain:action", p)
			}
			converted = append(converted, domain.Permission(name))
		}
		override[domain.Role(role)] = converted
	}

	if s.store != nil {
		if err := s.store.Save(ctx, override); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	s.catalog.ApplyOverride(override)

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *permissionService) LoadOverride(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "service.permission.load_override")
	defer span.End()

	if s.store == nil {
		span.SetStatus(codes.Ok, "no store configured")
		return nil
	}

	override, err := s.store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if override != nil {
		s.catalog.ApplyOverride(override)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
