package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookURLForKnownChannels(t *testing.T) {
	n := &Notifier{
		generalAnticheatWebhook:      "https://example.com/general",
		confidentialAnticheatWebhook: "https://example.com/confidential",
	}

	got, err := n.webhookURLFor(ChannelGeneral)
	if err != nil || got != "https://example.com/general" {
		t.Fatalf("unexpected general webhook result: %q, %v", got, err)
	}

	got, err = n.webhookURLFor(ChannelConfidential)
	if err != nil || got != "https://example.com/confidential" {
		t.Fatalf("unexpected confidential webhook result: %q, %v", got, err)
	}
}

func TestWebhookURLForRejectsChannelNone(t *testing.T) {
	n := &Notifier{}
	if _, err := n.webhookURLFor(ChannelNone); err == nil {
		t.Fatal("expected error for ChannelNone")
	}
}

func TestAnticheatChannelNoneIsNoOp(t *testing.T) {
	n := &Notifier{httpClient: http.DefaultClient}
	if err := n.Anticheat(context.Background(), "message", ChannelNone); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestAnticheatRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := &Notifier{
		httpClient:              server.Client(),
		generalAnticheatWebhook: server.URL,
	}

	if err := n.Anticheat(context.Background(), "message", ChannelGeneral); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts before success, got %d", attempts)
	}
}

func TestAnticheatGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := &Notifier{
		httpClient:              server.Client(),
		generalAnticheatWebhook: server.URL,
	}

	if err := n.Anticheat(context.Background(), "message", ChannelGeneral); err != nil {
		t.Fatalf("expected nil error (best-effort give-up), got %v", err)
	}
	if attempts != maxWebhookRetries {
		t.Fatalf("expected exactly %d attempts, got %d", maxWebhookRetries, attempts)
	}
}
