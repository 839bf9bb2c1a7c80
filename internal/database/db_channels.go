// This file contains database methods for the 'channels' and 'channel_tokens'
// tables, grounded on the original implementation's repositories/channels.py.

package database

import (
	"database/sql"
	"errors"
	"fmt"

	"akatsuki.pw/bancho/internal/models"
)

const channelReadColumns = `name, description, public_read, public_write, moderated, instance`

// FetchChannel retrieves one channel by name.
func (db *DB) FetchChannel(name string) (*models.Channel, error) {
	var ch models.Channel
	query := fmt.Sprintf(`SELECT %s FROM channels WHERE name = $1`, channelReadColumns)
	err := db.Get(&ch, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel: %w", err)
	}
	return &ch, nil
}

// FetchAllChannels retrieves every registered channel (catalog and instance).
func (db *DB) FetchAllChannels() ([]models.Channel, error) {
	var chans []models.Channel
	query := fmt.Sprintf(`SELECT %s FROM channels`, channelReadColumns)
	err := db.Select(&chans, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels: %w", err)
	}
	return chans, nil
}

// CreateChannel inserts a new channel row.
func (db *DB) CreateChannel(ch *models.Channel) error {
	_, err := db.NamedExec(`
		INSERT INTO channels (name, description, public_read, public_write, moderated, instance)
		VALUES (:name, :description, :public_read, :public_write, :moderated, :instance)
	`, ch)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

// DeleteChannel removes a channel row (instance channels, on last-leave).
func (db *DB) DeleteChannel(name string) error {
	_, err := db.Exec(`DELETE FROM channels WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

// FetchChannelClientCount counts subscribers of a channel's stream via
// channel_tokens, used for the channel_info packet's user count field.
func (db *DB) FetchChannelClientCount(channelName string) (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM channel_tokens WHERE channel_name = $1`, channelName)
	if err != nil {
		return 0, fmt.Errorf("failed to count channel clients: %w", err)
	}
	return count, nil
}

// AddChannelClient records that a token joined a channel.
func (db *DB) AddChannelClient(channelName, tokenID string) error {
	_, err := db.Exec(`INSERT INTO channel_tokens (channel_name, token_id) VALUES ($1, $2)`, channelName, tokenID)
	if err != nil {
		return fmt.Errorf("failed to add channel client: %w", err)
	}
	return nil
}

// RemoveChannelClient records that a token left a channel.
func (db *DB) RemoveChannelClient(channelName, tokenID string) error {
	_, err := db.Exec(`DELETE FROM channel_tokens WHERE channel_name = $1 AND token_id = $2`, channelName, tokenID)
	if err != nil {
		return fmt.Errorf("failed to remove channel client: %w", err)
	}
	return nil
}

// IsChannelMember reports whether a token has already joined a channel.
func (db *DB) IsChannelMember(channelName, tokenID string) (bool, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM channel_tokens WHERE channel_name = $1 AND token_id = $2`, channelName, tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check channel membership: %w", err)
	}
	return count > 0, nil
}

// BanchoChannelCatalogEntry is one row of the static 'bancho_channels' seed
// table, read once at startup to populate 'channels' if not already present.
type BanchoChannelCatalogEntry struct {
	Name        string `db:"name"`
	Description string `db:"description"`
	PublicRead  bool   `db:"public_read"`
	PublicWrite bool   `db:"public_write"`
	Temp        bool   `db:"temp"`
}

// FetchBanchoChannelsCatalog reads the static channel seed list, matching
// instantiate_channels' "SELECT * FROM bancho_channels".
func (db *DB) FetchBanchoChannelsCatalog() ([]BanchoChannelCatalogEntry, error) {
	var entries []BanchoChannelCatalogEntry
	err := db.Select(&entries, `SELECT name, description, public_read, public_write, temp FROM bancho_channels`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bancho channels catalog: %w", err)
	}
	return entries, nil
}
