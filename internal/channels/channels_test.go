package channels

import (
	"testing"

	"akatsuki.pw/bancho/internal/models"
)

func TestGetClientNameTranslatesInstanceNames(t *testing.T) {
	cases := map[string]string{
		"#spect_123": "#spectator",
		"#multi_45":  "#multiplayer",
		"#osu":       "#osu",
		"#announce":  "#announce",
	}
	for input, want := range cases {
		if got := GetClientName(input); got != want {
			t.Errorf("GetClientName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestResolveVirtualNameSpectatorDefaultsToSelf(t *testing.T) {
	token := &models.Token{UserID: 42}
	if got := resolveVirtualName("#spectator", token); got != "#spect_42" {
		t.Fatalf("expected #spect_42, got %q", got)
	}
}

func TestResolveVirtualNameSpectatorUsesTarget(t *testing.T) {
	target := 99
	token := &models.Token{UserID: 42, SpectatingUserID: &target}
	if got := resolveVirtualName("#spectator", token); got != "#spect_99" {
		t.Fatalf("expected #spect_99, got %q", got)
	}
}

func TestResolveVirtualNameMultiplayerWithoutMatchPassesThrough(t *testing.T) {
	token := &models.Token{UserID: 42}
	if got := resolveVirtualName("#multiplayer", token); got != "#multiplayer" {
		t.Fatalf("expected pass-through, got %q", got)
	}
}

func TestResolveVirtualNameMultiplayerWithMatch(t *testing.T) {
	matchID := 7
	token := &models.Token{UserID: 42, MatchID: &matchID}
	if got := resolveVirtualName("#multiplayer", token); got != "#multi_7" {
		t.Fatalf("expected #multi_7, got %q", got)
	}
}

func TestResolveVirtualNamePassesThroughOrdinaryChannel(t *testing.T) {
	token := &models.Token{UserID: 42}
	if got := resolveVirtualName("#osu", token); got != "#osu" {
		t.Fatalf("expected pass-through, got %q", got)
	}
}
