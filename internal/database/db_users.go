// This file contains database methods related to user lookup and mutation,
// grounded on the original implementation's repositories/users.py READ_PARAMS.

package database

import (
	"database/sql"
	"errors"
	"fmt"

	"akatsuki.pw/bancho/internal/models"
)

const userReadColumns = `id, username, username_safe, password_md5, salt, email, register_datetime,
	latest_activity, silence_end, silence_reason, privileges, donor_expire, frozen,
	freeze_reason, notes, ban_datetime, whitelist, clan_id, clan_privileges`

// GetUserByUsername retrieves a user by their (safe, lowercased) username.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username_safe = $1`, userReadColumns)
	err := db.Get(&user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by username: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their numeric id.
func (db *DB) GetUserByID(id int) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userReadColumns)
	err := db.Get(&user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by id: %w", err)
	}
	return &user, nil
}

// UpdateUserPrivileges sets a user's privilege bitmask, used on restriction,
// freeze/unfreeze and donor revocation.
func (db *DB) UpdateUserPrivileges(userID int, privileges int64) error {
	_, err := db.Exec(`UPDATE users SET privileges = $1 WHERE id = $2`, privileges, userID)
	if err != nil {
		return fmt.Errorf("failed to update user privileges: %w", err)
	}
	return nil
}

// UpdateUserDonorExpire sets a user's donor_expire unix timestamp.
func (db *DB) UpdateUserDonorExpire(userID int, donorExpire int64) error {
	_, err := db.Exec(`UPDATE users SET donor_expire = $1 WHERE id = $2`, donorExpire, userID)
	if err != nil {
		return fmt.Errorf("failed to update donor_expire: %w", err)
	}
	return nil
}

// FreezeUser requests a freeze (frozen=1, timer not yet armed) with the
// given reason, matching the administrative "freeze" action.
func (db *DB) FreezeUser(userID int, reason string) error {
	_, err := db.Exec(`UPDATE users SET frozen = 1, freeze_reason = $1 WHERE id = $2`, reason, userID)
	if err != nil {
		return fmt.Errorf("failed to freeze user: %w", err)
	}
	return nil
}

// ArmFreezeTimer sets frozen to a concrete unix-seconds deadline 7 days from
// now, matching the original's begin_freeze_timer, and returns that
// deadline.
func (db *DB) ArmFreezeTimer(userID int, now int64) (int64, error) {
	deadline := now + 86_400*7
	_, err := db.Exec(`UPDATE users SET frozen = $1 WHERE id = $2`, deadline, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to arm freeze timer: %w", err)
	}
	return deadline, nil
}

// UnfreezeUser clears the frozen state and freeze_reason.
func (db *DB) UnfreezeUser(userID int) error {
	_, err := db.Exec(`UPDATE users SET frozen = 0, freeze_reason = '' WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to unfreeze user: %w", err)
	}
	return nil
}

// AppendUserNotes appends a note, followed by a newline, to the end of a
// user's moderation notes.
func (db *DB) AppendUserNotes(userID int, note string) error {
	_, err := db.Exec(
		`UPDATE users SET notes = COALESCE(notes, '') || $1 || E'\n' WHERE id = $2`,
		note, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to append user notes: %w", err)
	}
	return nil
}

// FetchCountry returns the lowercase country acronym stored for a user in
// users_stats, or "xx" if unknown/unset.
func (db *DB) FetchCountry(userID int) (string, error) {
	var country sql.NullString
	err := db.Get(&country, `SELECT country FROM users_stats WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) || !country.Valid || country.String == "" {
		return "xx", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch country: %w", err)
	}
	return country.String, nil
}

// FetchFriendIDs returns the ids of every user that userID has added as a
// friend, backing the friends_list packet.
func (db *DB) FetchFriendIDs(userID int) ([]int, error) {
	var ids []int
	err := db.Select(&ids, `SELECT user2 FROM users_relationships WHERE user1 = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch friend ids: %w", err)
	}
	return ids, nil
}

// LogIP upserts an (user_id, ip) occurrence counter row.
func (db *DB) LogIP(userID int, ip string) error {
	_, err := db.Exec(`
		INSERT INTO ip_user (userid, ip, occurencies)
		VALUES ($1, $2, 1)
		ON CONFLICT (userid, ip) DO UPDATE SET occurencies = ip_user.occurencies + 1
	`, userID, ip)
	if err != nil {
		return fmt.Errorf("failed to log ip: %w", err)
	}
	return nil
}

// DeleteUserBadges removes a user's custom/supporter badges (36, 59) on
// donor-privilege revocation.
func (db *DB) DeleteUserBadges(userID int, badgeIDs []int) error {
	for _, badgeID := range badgeIDs {
		if _, err := db.Exec(`DELETE FROM user_badges WHERE "user" = $1 AND badge = $2`, userID, badgeID); err != nil {
			return fmt.Errorf("failed to delete user badge %d: %w", badgeID, err)
		}
	}
	return nil
}

// ClearCustomBadgeFlags clears can_custom_badge/show_custom_badge in
// users_stats on donor-privilege revocation.
func (db *DB) ClearCustomBadgeFlags(userID int) error {
	_, err := db.Exec(`UPDATE users_stats SET can_custom_badge = false, show_custom_badge = false WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear custom badge flags: %w", err)
	}
	return nil
}

// InsertRapLog records a moderation-action audit entry.
func (db *DB) InsertRapLog(userID int, text string, through string) error {
	_, err := db.Exec(
		`INSERT INTO rap_logs (userid, text, datetime, through) VALUES ($1, $2, extract(epoch from now())::bigint, $3)`,
		userID, text, through,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rap log: %w", err)
	}
	return nil
}
