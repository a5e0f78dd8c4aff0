package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

const catalogOverrideKey = "authz:role-permissions"

// RedisCatalogRepository persists the admin-edited role→permissions override
// table. An absent key means the hardcoded defaults apply unchanged.
type RedisCatalogRepository struct {
	client *redis.Client
}

// NewRedisCatalogRepository creates a catalog override store.
func NewRedisCatalogRepository(client *redis.Client) *RedisCatalogRepository {
	return &RedisCatalogRepository{client: client}
}

// Load returns the persisted override table, or nil when none was saved.
func (r *RedisCatalogRepository) Load(ctx context.Context) (map[domain.Role][]domain.Permission, error) {
	data, err := r.client.Get(ctx, catalogOverrideKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog override: %w", err)
	}

	var override map[domain.Role][]domain.Permission
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to decode catalog override: %w", err)
	}
	return override, nil
}

// Save replaces the persisted override table. The override has no TTL; it
// survives until an administrator edits it again.
func (r *RedisCatalogRepository) Save(ctx context.Context, override map[domain.Role][]domain.Permission) error {
	data, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("failed to encode catalog override: %w", err)
	}
	if err := r.client.Set(ctx, catalogOverrideKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store catalog override: %w", err)
	}
	return nil
}
