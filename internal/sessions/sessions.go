// Package sessions implements the token (login-session) registry: token
// CRUD, the outgoing packet queue, cached-stats refresh, and the
// restriction-notice check performed at login.
// Grounded on the original implementation's usecases/tokens.py and
// repositories/tokens.py.
package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"akatsuki.pw/bancho/internal/codec"
	"akatsuki.pw/bancho/internal/database"
	"akatsuki.pw/bancho/internal/kv"
	"akatsuki.pw/bancho/internal/models"
	"akatsuki.pw/bancho/internal/streams"
)

// BotUserID is the BanchoBot account id.
const BotUserID = 999

const (
	restrictedMsg   = "Your account is currently in restricted mode. Please visit Akatsuki's website for more information."
	unrestrictedMsg = "Your account has been unrestricted! Please log in again."
)

// Registry wraps database and Redis access for the token lifecycle.
type Registry struct {
	db      *database.DB
	kv      *kv.Store
	streams *streams.Registry
}

// New builds a token Registry.
func New(db *database.DB, store *kv.Store, s *streams.Registry) *Registry {
	return &Registry{db: db, kv: store, streams: s}
}

// NewTokenParams describes the fields create_one lets the caller choose;
// everything else is defaulted exactly as the original implementation does.
type NewTokenParams struct {
	UserID            int
	Username          string
	Privileges        int64
	Whitelist         int
	SilenceEndTime    int64
	IP                string
	UTCOffset         int
	Tournament        bool
	BlockNonFriendsDM bool
}

// CreateOne inserts a new token with the original's exact default field
// set, then immediately refreshes its cached stats and joins the "main"
// presence stream.
func (r *Registry) CreateOne(p NewTokenParams) (*models.Token, error) {
	now := time.Now().Unix()
	token := &models.Token{
		ID:                uuid.New().String(),
		UserID:            p.UserID,
		Username:          p.Username,
		Privileges:        p.Privileges,
		Whitelist:         p.Whitelist,
		Kicked:            false,
		LoginTime:         now,
		PingTime:          now,
		UTCOffset:         p.UTCOffset,
		Tournament:        p.Tournament,
		BlockNonFriendsDM: p.BlockNonFriendsDM,
		Latitude:          0,
		Longitude:         0,
		IP:                p.IP,
		Country:           0,
		SilenceEndTime:    p.SilenceEndTime,
		ProtocolVersion:   0,
		SpamRate:          0,
		ActionID:          0,
		ActionText:        "",
		ActionMD5:         "",
		ActionMods:        0,
		ActionBeatmapID:   0,
		Mode:              0,
		Relax:             false,
		Autopilot:         false,
		RankedScore:       0,
		Accuracy:          0,
		Playcount:         0,
		TotalScore:        0,
		GlobalRank:        0,
		PP:                0,
	}

	if err := r.db.CreateToken(token); err != nil {
		return nil, err
	}

	refreshed, err := r.UpdateCachedStats(token.ID)
	if err != nil {
		return nil, err
	}

	if err := r.JoinStream(token.ID, "main"); err != nil {
		return nil, err
	}

	return refreshed, nil
}

// FetchByID retrieves a token by id.
func (r *Registry) FetchByID(tokenID string) (*models.Token, error) {
	return r.db.FetchTokenByID(tokenID)
}

// FetchByUserID retrieves every live token belonging to a user.
func (r *Registry) FetchByUserID(userID int) ([]models.Token, error) {
	return r.db.FetchTokensByUserID(userID)
}

// FetchAll retrieves every live token.
func (r *Registry) FetchAll() ([]models.Token, error) {
	return r.db.FetchAllTokens()
}

// FetchBot retrieves the BanchoBot's live token, expected to always exist
// once the server has completed startup seeding.
func (r *Registry) FetchBot() (*models.Token, error) {
	tokens, err := r.db.FetchTokensByUserID(BotUserID)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("bot user has no active token")
	}
	return &tokens[0], nil
}

// DeleteOne removes a token row.
func (r *Registry) DeleteOne(tokenID string) error {
	return r.db.DeleteToken(tokenID)
}

// UpdateCachedStats recomputes and persists a token's denormalized stats
// snapshot (ranked score, accuracy, playcount, total score, pp, global
// rank) from the mode/relax-appropriate stats table and Redis leaderboard.
//
// Matches the original implementation's accuracy/100 division at this
// layer: the value stored here is later divided by 100 again when the
// user_stats packet is serialized, exactly as upstream does.
func (r *Registry) UpdateCachedStats(tokenID string) (*models.Token, error) {
	token, err := r.db.FetchTokenByID(tokenID)
	if err != nil {
		return nil, err
	}

	relaxInt := token.RelaxInt()
	stats, err := r.db.FetchStats(token.UserID, token.Mode, relaxInt)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for cached-stats refresh: %w", err)
	}

	modeName, err := database.ModeName(token.Mode)
	if err != nil {
		return nil, err
	}
	globalRank, err := r.kv.GlobalRank(context.Background(), relaxInt, modeName, token.UserID)
	if err != nil {
		return nil, err
	}

	if err := r.db.UpdateTokenCachedStats(
		tokenID,
		stats.RankedScore,
		stats.Accuracy/100.0,
		stats.Playcount,
		stats.TotalScore,
		globalRank,
		int64(stats.PP),
	); err != nil {
		return nil, err
	}

	return r.db.FetchTokenByID(tokenID)
}

// Enqueue appends a pre-framed packet to a token's outgoing buffer.
func (r *Registry) Enqueue(tokenID string, packet []byte) error {
	return r.db.EnqueuePacket(tokenID, packet)
}

// Dequeue atomically drains and returns every queued packet for a token.
func (r *Registry) Dequeue(tokenID string) ([]byte, error) {
	return r.db.DequeuePackets(tokenID)
}

// EnqueueMessage builds and enqueues a send_message packet from senderTokenID
// to tokenID.
func (r *Registry) EnqueueMessage(tokenID, message, senderTokenID string) error {
	token, err := r.db.FetchTokenByID(tokenID)
	if err != nil {
		return err
	}
	sender, err := r.db.FetchTokenByID(senderTokenID)
	if err != nil {
		if err == database.ErrNotFound {
			return nil
		}
		return err
	}

	w := codec.NewWriter()
	w.WriteSendMessage(sender.Username, message, token.Username, int32(sender.UserID))
	return r.Enqueue(tokenID, w.Bytes())
}

// EnqueueBotMessage sends a message on behalf of the BanchoBot.
func (r *Registry) EnqueueBotMessage(tokenID, message string) error {
	bot, err := r.FetchBot()
	if err != nil {
		return err
	}
	return r.EnqueueMessage(tokenID, message, bot.ID)
}

// EnqueueNotification enqueues a notification packet.
func (r *Registry) EnqueueNotification(tokenID, message string) error {
	w := codec.NewWriter()
	w.WriteNotification(message)
	return r.Enqueue(tokenID, w.Bytes())
}

// CheckRestricted compares a token's privileges at creation time against the
// user's current privileges, and sends a restricted/unrestricted bot
// message unless both states are unrestricted.
//
// This preserves the original implementation's early-return quirk
// literally: the check only skips sending a message when BOTH the old
// token-creation-time state and the new (freshly-read) user state are
// unrestricted. If the old state was already restricted and the new state
// is unrestricted, the notification fires; equally if both are restricted,
// it still fires the restricted-mode message again.
func (r *Registry) CheckRestricted(tokenID string, userID int, priorPrivileges int64) error {
	oldRestricted := priorPrivileges&models.UserPublic == 0

	user, err := r.db.GetUserByID(userID)
	if err != nil {
		return err
	}
	restricted := user.IsRestricted()

	if !restricted && !oldRestricted {
		return nil
	}

	message := unrestrictedMsg
	if restricted {
		message = restrictedMsg
	}
	return r.EnqueueBotMessage(tokenID, message)
}

// RemainingSilenceSeconds returns max(0, silenceEndTime - now).
func RemainingSilenceSeconds(silenceEndTime int64) int64 {
	remaining := silenceEndTime - time.Now().Unix()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// JoinStream subscribes a token to a named stream, creating the stream if
// it does not already exist.
func (r *Registry) JoinStream(tokenID, streamName string) error {
	if err := r.streams.EnsureExists(streamName); err != nil {
		return err
	}
	return r.streams.AddClient(streamName, tokenID)
}

// LeaveStream unsubscribes a token from a named stream.
func (r *Registry) LeaveStream(tokenID, streamName string) error {
	return r.streams.RemoveClient(streamName, tokenID)
}
