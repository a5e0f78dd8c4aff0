// Package repository contains the persistence adapters: the Redis mirrors of
// session state and catalog overrides, and the PostgreSQL audit log.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

const sessionRecordKeyPrefix = "session:record:"

// RedisSessionRepository mirrors session records server-side, keyed by the
// device cookie. The mirror gives operators visibility into live sessions
// and lets a compromised device be cut off without waiting for cookie expiry.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a session record mirror.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionRecordKey(deviceID string) string {
	return sessionRecordKeyPrefix + deviceID
}

// Put stores the record under the device key with the session lifetime as
// the Redis TTL, so the mirror expires together with the cookies.
func (r *RedisSessionRepository) Put(ctx context.Context, deviceID string, record *domain.SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}
	if err := r.client.Set(ctx, sessionRecordKey(deviceID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session record: %w", err)
	}
	return nil
}

// Get returns the mirrored record for a device, or nil when none exists.
func (r *RedisSessionRepository) Get(ctx context.Context, deviceID string) (*domain.SessionRecord, error) {
	data, err := r.client.Get(ctx, sessionRecordKey(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	var record domain.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}
	return &record, nil
}

// Delete removes the mirrored record. Deleting an absent record is fine.
func (r *RedisSessionRepository) Delete(ctx context.Context, deviceID string) error {
	if err := r.client.Del(ctx, sessionRecordKey(deviceID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}

// PurgeExpired walks the mirror and removes records whose embedded expiry
// has passed. Redis TTLs cover the normal case; this sweep catches records
// written before a lifetime change shortened the session TTL.
func (r *RedisSessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	var purged int
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, sessionRecordKeyPrefix+"*", 100).Result()
		if err != nil {
			return purged, fmt.Errorf("failed to scan session records: %w", err)
		}

		for _, key := range keys {
			data, err := r.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var record domain.SessionRecord
			if err := json.Unmarshal(data, &record); err != nil || record.ExpiresAt <= now.Unix() {
				if delErr := r.client.Del(ctx, key).Err(); delErr == nil {
					purged++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return purged, nil
}
