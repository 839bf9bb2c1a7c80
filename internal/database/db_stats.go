// This file contains database methods for the per-mode stats tables
// (users_stats/rx_stats/ap_stats), grounded on the original implementation's
// repositories/stats.py. Redis-backed global_rank lookup happens in the
// caller via internal/kv, matching the original's split between Postgres
// (raw stats) and Redis (ZREVRANK-derived rank).
package database

import (
	"database/sql"
	"errors"
	"fmt"

	"akatsuki.pw/bancho/internal/models"
)

var modeNames = [4]string{"std", "taiko", "ctb", "mania"}
var statsTableForRelax = [3]string{"users_stats", "rx_stats", "ap_stats"}

// ModeName returns the column-suffix name ("std", "taiko", "ctb", "mania")
// for a gameplay mode index, matching the original's mode_str mapping.
func ModeName(mode int) (string, error) {
	if mode < 0 || mode >= len(modeNames) {
		return "", fmt.Errorf("invalid game mode %d", mode)
	}
	return modeNames[mode], nil
}

// FetchStats reads one user's raw stats (ranked_score, accuracy, playcount,
// total_score, pp) for a given mode and relax/autopilot family. global_rank
// is left unset; populate it separately from Redis.
func (db *DB) FetchStats(userID, mode, relaxInt int) (*models.Stats, error) {
	if relaxInt < 0 || relaxInt >= len(statsTableForRelax) {
		return nil, fmt.Errorf("invalid relax family %d", relaxInt)
	}
	modeStr, err := ModeName(mode)
	if err != nil {
		return nil, err
	}
	table := statsTableForRelax[relaxInt]

	query := fmt.Sprintf(`
		SELECT
			ranked_score_%s AS ranked_score,
			avg_accuracy_%s AS accuracy,
			playcount_%s AS playcount,
			total_score_%s AS total_score,
			pp_%s AS pp
		FROM %s
		WHERE id = $1
	`, modeStr, modeStr, modeStr, modeStr, modeStr, table)

	var stats models.Stats
	err = db.Get(&stats, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	stats.UserID = userID
	stats.Mode = mode
	return &stats, nil
}
