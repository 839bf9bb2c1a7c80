// This file contains database methods for the 'streams' and 'stream_tokens'
// tables, grounded on the original implementation's repositories/streams.py.

package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// FetchStream reports whether a stream by this name exists.
func (db *DB) FetchStream(name string) (bool, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM streams WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch stream: %w", err)
	}
	return count > 0, nil
}

// CreateStream inserts a new stream row.
func (db *DB) CreateStream(name string) error {
	_, err := db.Exec(`INSERT INTO streams (name) VALUES ($1)`, name)
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// DeleteStream removes a stream row, once it has no subscribers left.
func (db *DB) DeleteStream(name string) error {
	_, err := db.Exec(`DELETE FROM streams WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete stream: %w", err)
	}
	return nil
}

// FetchStreamClients returns the token ids subscribed to a stream.
func (db *DB) FetchStreamClients(streamName string) ([]string, error) {
	var tokenIDs []string
	err := db.Select(&tokenIDs, `SELECT token_id FROM stream_tokens WHERE stream_name = $1`, streamName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stream clients: %w", err)
	}
	return tokenIDs, nil
}

// AddStreamClient subscribes a token to a stream.
func (db *DB) AddStreamClient(streamName, tokenID string) error {
	_, err := db.Exec(`INSERT INTO stream_tokens (stream_name, token_id) VALUES ($1, $2)`, streamName, tokenID)
	if err != nil {
		return fmt.Errorf("failed to add stream client: %w", err)
	}
	return nil
}

// RemoveStreamClient unsubscribes a token from a stream.
func (db *DB) RemoveStreamClient(streamName, tokenID string) error {
	_, err := db.Exec(`DELETE FROM stream_tokens WHERE stream_name = $1 AND token_id = $2`, streamName, tokenID)
	if err != nil {
		return fmt.Errorf("failed to remove stream client: %w", err)
	}
	return nil
}

// CountStreamClients returns the number of subscribers left on a stream,
// used to decide whether an emptied instance channel should be torn down.
func (db *DB) CountStreamClients(streamName string) (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM stream_tokens WHERE stream_name = $1`, streamName)
	if err != nil {
		return 0, fmt.Errorf("failed to count stream clients: %w", err)
	}
	return count, nil
}
