// Package channels implements the chat channel registry: catalog/instance
// channels 1:1 backed by "chat/<name>" streams, join/leave visibility
// policy, and the virtual channel aliasing used by spectator and
// multiplayer chat. Grounded on the original implementation's
// usecases/channels.py and repositories/channels.py.
package channels

import (
	"fmt"
	"strconv"
	"strings"

	"akatsuki.pw/bancho/internal/codec"
	"akatsuki.pw/bancho/internal/database"
	"akatsuki.pw/bancho/internal/models"
	"akatsuki.pw/bancho/internal/streams"
)

// BotUserID is the BanchoBot account id, exempt from channel join policy.
const BotUserID = 999

// Registry wraps database access and stream membership for channels.
type Registry struct {
	db      *database.DB
	streams *streams.Registry
}

// New builds a channel Registry over db and a shared stream Registry.
func New(db *database.DB, s *streams.Registry) *Registry {
	return &Registry{db: db, streams: s}
}

func streamName(channelName string) string { return "chat/" + channelName }

// FetchOne retrieves a channel by name.
func (r *Registry) FetchOne(name string) (*models.Channel, error) {
	return r.db.FetchChannel(name)
}

// FetchAll retrieves every registered channel.
func (r *Registry) FetchAll() ([]models.Channel, error) {
	return r.db.FetchAllChannels()
}

// CreateOne registers a new channel: its backing stream is created first,
// then the channel row is persisted, then the bot token (user id 999)
// joins as its permanent subscriber, matching create_one's ordering.
func (r *Registry) CreateOne(ch *models.Channel) error {
	if err := r.streams.EnsureExists(streamName(ch.Name)); err != nil {
		return fmt.Errorf("failed to create channel stream: %w", err)
	}
	if err := r.db.CreateChannel(ch); err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	botTokens, err := r.db.FetchTokensByUserID(BotUserID)
	if err != nil {
		return fmt.Errorf("failed to fetch bot token for channel subscription: %w", err)
	}
	if len(botTokens) == 0 {
		return fmt.Errorf("bot user has no active token: cannot subscribe to new channel")
	}
	if err := r.JoinChannel(&botTokens[0], ch.Name); err != nil {
		return fmt.Errorf("failed to subscribe bot to new channel: %w", err)
	}
	return nil
}

// DeleteOne kicks every current subscriber, then deletes the backing stream
// and the channel row.
func (r *Registry) DeleteOne(name string) error {
	clients, err := r.streams.Clients(streamName(name))
	if err != nil {
		return err
	}
	for _, tokenID := range clients {
		if err := r.leaveByTokenID(tokenID, name, true); err != nil {
			return err
		}
	}
	if err := r.streams.Delete(streamName(name)); err != nil {
		return err
	}
	return r.db.DeleteChannel(name)
}

// GetClientName maps the server-internal instance-channel name
// (#spect_<id>, #multi_<id>) back to the client-facing virtual name
// (#spectator, #multiplayer); any other name passes through unchanged.
func GetClientName(name string) string {
	switch {
	case strings.HasPrefix(name, "#spect_"):
		return "#spectator"
	case strings.HasPrefix(name, "#multi_"):
		return "#multiplayer"
	default:
		return name
	}
}

// resolveVirtualName turns a client-facing virtual channel name into its
// server-internal instance name, given the acting token's spectating/match
// context. Non-virtual names pass through unchanged. Only leaving a channel
// performs this translation; joining an instance channel is always done
// with its already-resolved internal name by the spectator/multiplayer
// subsystems that create it.
func resolveVirtualName(clientName string, token *models.Token) string {
	switch clientName {
	case "#spectator":
		targetID := token.UserID
		if token.SpectatingUserID != nil {
			targetID = *token.SpectatingUserID
		}
		return "#spect_" + strconv.Itoa(targetID)
	case "#multiplayer":
		if token.MatchID != nil {
			return "#multi_" + strconv.Itoa(*token.MatchID)
		}
		return clientName
	default:
		return clientName
	}
}

// JoinChannel applies bancho's channel visibility policy and, if allowed,
// subscribes the token to the channel's stream and enqueues a
// channel_join_success packet. Names not prefixed with "#" are
// private-message targets, not channels, and are a silent no-op here; so is
// an already-nonexistent channel, an already-joined channel, or a
// policy-denied join — none of these are reported as errors, matching the
// original implementation's fire-and-forget join_channel.
func (r *Registry) JoinChannel(token *models.Token, channelName string) error {
	if !strings.HasPrefix(channelName, "#") {
		return nil
	}

	ch, err := r.db.FetchChannel(channelName)
	if err != nil {
		if err == database.ErrNotFound {
			return nil
		}
		return err
	}

	already, err := r.db.IsChannelMember(channelName, token.ID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	if token.UserID != BotUserID {
		deniedPremium := channelName == "#premium" && token.Privileges&models.UserPremium == 0
		deniedSupporter := channelName == "#supporter" && token.Privileges&models.UserDonor == 0
		deniedPrivate := !ch.PublicRead && token.Privileges&models.AdminChatMod == 0
		if deniedPremium || deniedSupporter || deniedPrivate {
			return nil
		}
	}

	if err := r.db.AddChannelClient(channelName, token.ID); err != nil {
		return err
	}
	if err := r.streams.AddClient(streamName(channelName), token.ID); err != nil {
		return err
	}

	w := codec.NewWriter()
	w.WriteChannelJoinSuccess(GetClientName(channelName))
	return r.db.EnqueuePacket(token.ID, w.Bytes())
}

// LeaveChannel removes the token from the channel, translating virtual
// spectator/multiplayer names to their instance form, tearing down the
// channel+stream if it was an empty instance channel, and optionally
// notifying the token with a channel_kick packet.
func (r *Registry) LeaveChannel(token *models.Token, clientName string, kick bool) error {
	internalName := resolveVirtualName(clientName, token)
	return r.leaveInternal(token.ID, internalName, kick)
}

func (r *Registry) leaveByTokenID(tokenID, internalName string, kick bool) error {
	return r.leaveInternal(tokenID, internalName, kick)
}

func (r *Registry) leaveInternal(tokenID, internalName string, kick bool) error {
	ch, err := r.db.FetchChannel(internalName)
	if err != nil {
		return err
	}

	member, err := r.db.IsChannelMember(internalName, tokenID)
	if err != nil {
		return err
	}
	if !member {
		return nil
	}

	if err := r.db.RemoveChannelClient(internalName, tokenID); err != nil {
		return err
	}
	if err := r.streams.RemoveClient(streamName(internalName), tokenID); err != nil {
		return err
	}

	if ch.Instance {
		count, err := r.streams.ClientCount(streamName(internalName))
		if err != nil {
			return err
		}
		if count == 0 {
			if err := r.streams.Delete(streamName(internalName)); err != nil {
				return err
			}
			if err := r.db.DeleteChannel(internalName); err != nil {
				return err
			}
		}
	}

	if kick {
		w := codec.NewWriter()
		w.WriteChannelKick(GetClientName(internalName))
		if err := r.db.EnqueuePacket(tokenID, w.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
