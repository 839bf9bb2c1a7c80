// Package kv wraps the Redis client used for leaderboards, the bcrypt
// verification cache, and ban-notification pub/sub, mirroring the
// responsibilities the original Python implementation gave to aioredis.
package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is a thin wrapper over go-redis giving the rest of the application a
// small, purpose-built surface instead of the full redis.Client API.
type Store struct {
	client *redis.Client
}

// New connects to a Redis instance at addr (host:port) and verifies
// connectivity with a PING.
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Store{client: client}, nil
}

// Client exposes the underlying *redis.Client, e.g. for redsync's pool.
func (s *Store) Client() *redis.Client { return s.client }

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.client.Close() }

// leaderboardKey builds the sorted-set key for a mode/relax/country combination,
// matching the original's `ripple:{kind}:{mode}[:{country}]` naming.
func leaderboardKey(kind string, mode string, country string) string {
	if country == "" {
		return fmt.Sprintf("ripple:%s:%s", kind, mode)
	}
	return fmt.Sprintf("ripple:%s:%s:%s", kind, mode, country)
}

// kindForRelax maps the relax/autopilot derivation used throughout the
// stats pipeline onto the three leaderboard key families.
func kindForRelax(relaxInt int) string {
	switch relaxInt {
	case 1:
		return "relaxboard"
	case 2:
		return "autoboard"
	default:
		return "leaderboard"
	}
}

// GlobalRank returns the 1-based global rank of userID on the given
// leaderboard, or 0 if the user has no score there.
func (s *Store) GlobalRank(ctx context.Context, relaxInt int, mode string, userID int) (int64, error) {
	key := leaderboardKey(kindForRelax(relaxInt), mode, "")
	rank, err := s.client.ZRevRank(ctx, key, fmt.Sprintf("%d", userID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("global rank lookup failed: %w", err)
	}
	return rank + 1, nil
}

// RemoveFromLeaderboards strips userID out of every leaderboard family/mode
// combination, global and country-scoped, on restriction.
func (s *Store) RemoveFromLeaderboards(ctx context.Context, userID int, country string) error {
	member := fmt.Sprintf("%d", userID)
	kinds := []string{"leaderboard", "relaxboard", "autoboard"}
	modes := []string{"std", "taiko", "ctb", "mania"}
	pipe := s.client.Pipeline()
	for _, kind := range kinds {
		for _, mode := range modes {
			pipe.ZRem(ctx, leaderboardKey(kind, mode, ""), member)
			if country != "" && country != "xx" {
				pipe.ZRem(ctx, leaderboardKey(kind, mode, country), member)
			}
		}
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove user from leaderboards: %w", err)
	}
	return nil
}

// PublishBan publishes userID to the peppy:ban channel on restriction.
func (s *Store) PublishBan(ctx context.Context, userID int) error {
	if err := s.client.Publish(ctx, "peppy:ban", fmt.Sprintf("%d", userID)).Err(); err != nil {
		return fmt.Errorf("failed to publish ban notification: %w", err)
	}
	return nil
}

// BcryptCacheGet returns the cached md5(password) for a given bcrypt hash,
// avoiding a repeated, expensive bcrypt.CompareHashAndPassword call.
func (s *Store) BcryptCacheGet(ctx context.Context, bcryptHash string) (string, bool, error) {
	md5, err := s.client.Get(ctx, "bcrypt_cache:"+bcryptHash).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("bcrypt cache read failed: %w", err)
	}
	return md5, true, nil
}

// BcryptCacheSet stores a verified bcrypt-hash -> md5(password) mapping.
func (s *Store) BcryptCacheSet(ctx context.Context, bcryptHash, passwordMD5 string) error {
	if err := s.client.Set(ctx, "bcrypt_cache:"+bcryptHash, passwordMD5, 0).Err(); err != nil {
		return fmt.Errorf("bcrypt cache write failed: %w", err)
	}
	return nil
}
