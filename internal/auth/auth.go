// Package auth provides password verification for bancho logins: a bcrypt
// comparison backed by a Redis read-through cache that remembers, per
// bcrypt hash, the md5(password) it last matched — avoiding repeated
// expensive bcrypt comparisons for the same account on every login.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"akatsuki.pw/bancho/internal/kv"
)

// bcryptCost matches the cost factor new password hashes are created with.
// Existing hashes are verified at whatever cost they were created with;
// this constant only governs HashPassword.
const bcryptCost = 12

// HashPassword generates a bcrypt hash from a plaintext (already md5-hashed
// by the client) password string, used when provisioning new accounts.
func HashPassword(passwordMD5 string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(passwordMD5), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword checks passwordMD5 (the client-side md5(password) the osu!
// client sends) against a user's stored bcrypt hash. It first consults the
// cache for a previously-verified match, short-circuiting the bcrypt
// comparison; only on a cache miss does it fall back to
// bcrypt.CompareHashAndPassword, caching the result on success.
func VerifyPassword(ctx context.Context, cache *kv.Store, bcryptHash, passwordMD5 string) (bool, error) {
	if cached, ok, err := cache.BcryptCacheGet(ctx, bcryptHash); err != nil {
		return false, err
	} else if ok {
		return cached == passwordMD5, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(bcryptHash), []byte(passwordMD5)); err != nil {
		return false, nil
	}

	if err := cache.BcryptCacheSet(ctx, bcryptHash, passwordMD5); err != nil {
		return false, err
	}
	return true, nil
}
