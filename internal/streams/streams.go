// Package streams implements the pub/sub fan-out group registry: named
// streams with token-id subscribers, backed by Postgres so that broadcast
// membership is shared across server processes. Grounded on the original
// implementation's usecases/streams.py and repositories/streams.py.
package streams

import (
	"fmt"

	"akatsuki.pw/bancho/internal/database"
)

// Registry wraps database access for stream lifecycle and fan-out.
type Registry struct {
	db *database.DB
}

// New builds a stream Registry over db.
func New(db *database.DB) *Registry {
	return &Registry{db: db}
}

// EnsureExists creates the stream row if it doesn't already exist.
func (r *Registry) EnsureExists(name string) error {
	exists, err := r.db.FetchStream(name)
	if err != nil {
		return fmt.Errorf("failed to check stream existence: %w", err)
	}
	if exists {
		return nil
	}
	return r.db.CreateStream(name)
}

// Delete removes every subscriber from a stream, then deletes the stream
// row, matching delete_one's "leave, then drop" order.
func (r *Registry) Delete(name string) error {
	clients, err := r.db.FetchStreamClients(name)
	if err != nil {
		return err
	}
	for _, tokenID := range clients {
		if err := r.RemoveClient(name, tokenID); err != nil {
			return err
		}
	}
	return r.db.DeleteStream(name)
}

// AddClient subscribes a token to a stream.
func (r *Registry) AddClient(streamName, tokenID string) error {
	return r.db.AddStreamClient(streamName, tokenID)
}

// RemoveClient unsubscribes a token from a stream.
func (r *Registry) RemoveClient(streamName, tokenID string) error {
	return r.db.RemoveStreamClient(streamName, tokenID)
}

// ClientCount returns how many tokens are currently subscribed to a stream.
func (r *Registry) ClientCount(streamName string) (int, error) {
	return r.db.CountStreamClients(streamName)
}

// Clients returns the subscriber token ids of a stream.
func (r *Registry) Clients(streamName string) ([]string, error) {
	return r.db.FetchStreamClients(streamName)
}

// Broadcast enqueues a framed packet to every subscriber of a stream except
// those listed in ignore.
func (r *Registry) Broadcast(streamName string, packet []byte, ignore ...string) error {
	clients, err := r.db.FetchStreamClients(streamName)
	if err != nil {
		return err
	}
	ignored := make(map[string]bool, len(ignore))
	for _, id := range ignore {
		ignored[id] = true
	}
	for _, tokenID := range clients {
		if ignored[tokenID] {
			continue
		}
		if err := r.db.EnqueuePacket(tokenID, packet); err != nil {
			return fmt.Errorf("failed to enqueue broadcast packet to %s: %w", tokenID, err)
		}
	}
	return nil
}

// SelectiveBroadcast enqueues a framed packet to an explicit list of token
// ids, regardless of their current stream membership. Nothing in this
// module calls it.
func (r *Registry) SelectiveBroadcast(tokenIDs []string, packet []byte) error {
	for _, tokenID := range tokenIDs {
		if err := r.db.EnqueuePacket(tokenID, packet); err != nil {
			return fmt.Errorf("failed to enqueue selective packet to %s: %w", tokenID, err)
		}
	}
	return nil
}
