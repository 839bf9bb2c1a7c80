// This file contains database methods for the 'tokens' and 'token_buffers'
// tables, grounded on the original implementation's repositories/tokens.py.

package database

import (
	"database/sql"
	"errors"
	"fmt"

	"akatsuki.pw/bancho/internal/models"
)

const tokenReadColumns = `token_id, user_id, username, privileges, whitelist, kicked, login_time, ping_time, utc_offset, tournament,
	block_non_friends_dm, spectating_token_id, spectating_user_id, latitude, longitude, ip, country, away_message,
	match_id, last_np_beatmap_id, last_np_mods, last_np_accuracy, silence_end_time, protocol_version, spam_rate,
	action_id, action_text, action_md5, action_beatmap_id, action_mods, mode, relax, autopilot, ranked_score, accuracy,
	playcount, total_score, global_rank, pp`

// FetchTokenByID retrieves a token by its id.
func (db *DB) FetchTokenByID(tokenID string) (*models.Token, error) {
	var token models.Token
	query := fmt.Sprintf(`SELECT %s FROM tokens WHERE token_id = $1`, tokenReadColumns)
	err := db.Get(&token, query, tokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token: %w", err)
	}
	return &token, nil
}

// FetchTokensByUserID retrieves every live token belonging to a user.
func (db *DB) FetchTokensByUserID(userID int) ([]models.Token, error) {
	var tokens []models.Token
	query := fmt.Sprintf(`SELECT %s FROM tokens WHERE user_id = $1`, tokenReadColumns)
	err := db.Select(&tokens, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tokens by user id: %w", err)
	}
	return tokens, nil
}

// FetchAllTokens retrieves every live token, used for presence broadcast on login.
func (db *DB) FetchAllTokens() ([]models.Token, error) {
	var tokens []models.Token
	query := fmt.Sprintf(`SELECT %s FROM tokens`, tokenReadColumns)
	err := db.Select(&tokens, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all tokens: %w", err)
	}
	return tokens, nil
}

// CreateToken inserts a new token row, matching create_one's full default
// field initialization from the original implementation.
func (db *DB) CreateToken(t *models.Token) error {
	query := fmt.Sprintf(`
		INSERT INTO tokens (%s)
		VALUES (:token_id, :user_id, :username, :privileges, :whitelist, :kicked, :login_time, :ping_time,
			:utc_offset, :tournament, :block_non_friends_dm, :spectating_token_id, :spectating_user_id,
			:latitude, :longitude, :ip, :country, :away_message, :match_id, :last_np_beatmap_id,
			:last_np_mods, :last_np_accuracy, :silence_end_time, :protocol_version, :spam_rate,
			:action_id, :action_text, :action_md5, :action_beatmap_id, :action_mods, :mode, :relax, :autopilot,
			:ranked_score, :accuracy, :playcount, :total_score, :global_rank, :pp)
	`, tokenReadColumns)
	_, err := db.NamedExec(query, t)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// DeleteToken removes a token row on logout/kick/replacement.
func (db *DB) DeleteToken(tokenID string) error {
	_, err := db.Exec(`DELETE FROM tokens WHERE token_id = $1`, tokenID)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// UpdateTokenCachedStats writes the per-token denormalized stats snapshot
// used for presence/stats broadcasts without a join on every tick.
func (db *DB) UpdateTokenCachedStats(tokenID string, rankedScore int64, accuracy float64, playcount, totalScore, globalRank, pp int64) error {
	_, err := db.Exec(`
		UPDATE tokens SET ranked_score = $1, accuracy = $2, playcount = $3, total_score = $4, global_rank = $5, pp = $6
		WHERE token_id = $7
	`, rankedScore, accuracy, playcount, totalScore, globalRank, pp, tokenID)
	if err != nil {
		return fmt.Errorf("failed to update token cached stats: %w", err)
	}
	return nil
}

// EnqueuePacket appends a framed packet chunk to a token's outgoing buffer.
func (db *DB) EnqueuePacket(tokenID string, data []byte) error {
	_, err := db.Exec(`INSERT INTO token_buffers (token_id, buffer) VALUES ($1, $2)`, tokenID, data)
	if err != nil {
		return fmt.Errorf("failed to enqueue packet: %w", err)
	}
	return nil
}

// DequeuePackets atomically drains and deletes every queued packet chunk for
// a token, in insertion order, matching the original's dequeue semantics.
func (db *DB) DequeuePackets(tokenID string) ([]byte, error) {
	var buffers []models.TokenBuffer
	err := db.Select(&buffers, `
		WITH drained AS (
			DELETE FROM token_buffers WHERE token_id = $1
			RETURNING buffer_id, token_id, buffer
		)
		SELECT buffer_id, token_id, buffer FROM drained ORDER BY buffer_id ASC
	`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to drain queued packets: %w", err)
	}

	var out []byte
	for _, b := range buffers {
		out = append(out, b.Buffer...)
	}
	return out, nil
}
