// Package notify delivers best-effort anticheat/moderation notifications:
// Discord embed webhooks and a durable rap-log trail. Grounded on the
// original implementation's usecases/logging.py. No webhook-specific
// library appears anywhere in the reference pack, so delivery is done with
// net/http directly rather than importing an unrelated HTTP client wrapper
// just to wrap a single POST of a JSON body.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"akatsuki.pw/bancho/internal/database"
)

// maxWebhookRetries matches the original's MAX_DISCORD_WEBHOOK_RETRIES.
const maxWebhookRetries = 5

const embedColor = 0x542CB8
const embedThumbnail = "https://akatsuki.pw/static/logos/logo.png"
const embedFooter = "Akatsuki Anticheat"

type webhookEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type webhookEmbedFooter struct {
	Text string `json:"text"`
}

type webhookEmbedThumbnail struct {
	URL string `json:"url"`
}

type webhookEmbed struct {
	Color     int                   `json:"color"`
	Fields    []webhookEmbedField   `json:"fields"`
	Footer    webhookEmbedFooter    `json:"footer"`
	Thumbnail webhookEmbedThumbnail `json:"thumbnail"`
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

// Notifier delivers anticheat webhooks and persists rap log entries.
type Notifier struct {
	db                         *database.DB
	httpClient                 *http.Client
	generalAnticheatWebhook    string
	confidentialAnticheatWebhook string
}

// Config names the two anticheat Discord webhook destinations, matching the
// original's DISCORD_GENERAL_ANTICHEAT_WEBHOOK/DISCORD_CONFIDENTIAL_ANTICHEAT_WEBHOOK
// settings.
type Config struct {
	GeneralWebhookURL       string
	ConfidentialWebhookURL  string
}

// New builds a Notifier.
func New(db *database.DB, cfg Config) *Notifier {
	return &Notifier{
		db:                           db,
		httpClient:                   &http.Client{Timeout: 10 * time.Second},
		generalAnticheatWebhook:      cfg.GeneralWebhookURL,
		confidentialAnticheatWebhook: cfg.ConfidentialWebhookURL,
	}
}

// Channel identifies which anticheat Discord channel a message belongs to.
type Channel string

const (
	ChannelNone          Channel = ""
	ChannelGeneral       Channel = "ac_general"
	ChannelConfidential  Channel = "ac_confidental"
)

func (n *Notifier) webhookURLFor(channel Channel) (string, error) {
	switch channel {
	case ChannelGeneral:
		return n.generalAnticheatWebhook, nil
	case ChannelConfidential:
		return n.confidentialAnticheatWebhook, nil
	default:
		return "", fmt.Errorf("invalid anticheat channel: %q", channel)
	}
}

// sendWebhook posts a single anticheat embed, retrying up to
// maxWebhookRetries times and silently giving up; delivery failures are
// neither logged nor returned to the caller.
func (n *Notifier) sendWebhook(ctx context.Context, message, webhookURL string) {
	if webhookURL == "" {
		return
	}

	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Color:     embedColor,
			Fields:    []webhookEmbedField{{Name: "** **", Value: message}},
			Footer:    webhookEmbedFooter{Text: embedFooter},
			Thumbnail: webhookEmbedThumbnail{URL: embedThumbnail},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	for attempt := 0; attempt < maxWebhookRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.httpClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return
		}
	}
}

// Anticheat relays an anticheat message to the Discord webhook for channel;
// with ChannelNone it does nothing.
func (n *Notifier) Anticheat(ctx context.Context, message string, channel Channel) error {
	if channel == ChannelNone {
		return nil
	}
	webhookURL, err := n.webhookURLFor(channel)
	if err != nil {
		return err
	}
	n.sendWebhook(ctx, message, webhookURL)
	return nil
}

// Rap records a moderation (rap log) entry and, if channel is set, also
// relays the message to Discord.
func (n *Notifier) Rap(ctx context.Context, userID int, message string, channel Channel, through string) error {
	if through == "" {
		through = "Aika"
	}
	if err := n.db.InsertRapLog(userID, message, through); err != nil {
		return fmt.Errorf("failed to persist rap log: %w", err)
	}
	if channel != ChannelNone {
		webhookURL, err := n.webhookURLFor(channel)
		if err != nil {
			return err
		}
		n.sendWebhook(ctx, message, webhookURL)
	}
	return nil
}
