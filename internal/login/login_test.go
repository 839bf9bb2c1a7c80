package login

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFormatHMSDurationSevenDays(t *testing.T) {
	got := formatHMSDuration(7 * 24 * time.Hour)
	if got != "168:00:00" {
		t.Fatalf("unexpected duration format: %q", got)
	}
}

func TestFormatHMSDurationSubMinute(t *testing.T) {
	got := formatHMSDuration(45 * time.Second)
	if got != "0:00:45" {
		t.Fatalf("unexpected duration format: %q", got)
	}
}

func TestFormatHMSDurationNegativeClampsToZero(t *testing.T) {
	got := formatHMSDuration(-5 * time.Second)
	if got != "0:00:00" {
		t.Fatalf("unexpected duration format: %q", got)
	}
}

func TestParsePayloadHappyPath(t *testing.T) {
	body := []byte("cmyui\n" +
		"d41d8cd98f00b204e9800998ecf8427e\n" +
		"b20230101|24|1|osu_path_md5:adapters:adapters_md5:uninstall_md5:disk_sig:|0\n")

	data, err := ParsePayload(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Username != "cmyui" {
		t.Fatalf("unexpected username: %q", data.Username)
	}
	if data.PasswordMD5 != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected password md5: %q", data.PasswordMD5)
	}
	if data.OsuVersion != "b20230101" {
		t.Fatalf("unexpected osu version: %q", data.OsuVersion)
	}
	if data.UTCOffset != 24 {
		t.Fatalf("unexpected utc offset: %d", data.UTCOffset)
	}
	if !data.DisplayCity {
		t.Fatal("expected display_city true")
	}
	if data.PMPrivate {
		t.Fatal("expected pm_private false")
	}
	if data.OsuPathMD5 != "osu_path_md5" || data.AdaptersStr != "adapters" {
		t.Fatalf("unexpected client hashes: %+v", data)
	}
}

func TestParsePayloadMalformed(t *testing.T) {
	if _, err := ParsePayload([]byte("only one line")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestResolveIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	r.Header.Set("X-Real-IP", "198.51.100.9")

	if got := ResolveIP(r); got != "203.0.113.5" {
		t.Fatalf("expected first forwarded-for entry, got %q", got)
	}
}

func TestResolveIPFallsBackToRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.9")

	if got := ResolveIP(r); got != "198.51.100.9" {
		t.Fatalf("expected real-ip fallback, got %q", got)
	}
}

func TestResolveIPFallsBackToSentinel(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	if got := ResolveIP(r); got != "some_ip" {
		t.Fatalf("expected literal some_ip sentinel, got %q", got)
	}
}

func TestParseClientVersionPlain(t *testing.T) {
	v, ok := parseClientVersion("b20230615")
	if !ok {
		t.Fatal("expected successful parse")
	}
	if v.tournament {
		t.Fatal("expected non-tournament client")
	}
	want := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	if !v.date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, v.date)
	}
}

func TestParseClientVersionTourney(t *testing.T) {
	v, ok := parseClientVersion("b20230615.1tourney")
	if !ok {
		t.Fatal("expected successful parse")
	}
	if !v.tournament {
		t.Fatal("expected tournament client")
	}
}

func TestParseClientVersionInvalid(t *testing.T) {
	if _, ok := parseClientVersion("not-a-version"); ok {
		t.Fatal("expected parse failure for garbage input")
	}
}

func TestWirePrivilegesBaseline(t *testing.T) {
	if got := wirePrivileges(true, false, false); got != 1 {
		t.Fatalf("expected restricted baseline 1, got %d", got)
	}
}

func TestWirePrivilegesUnrestrictedStaffTourney(t *testing.T) {
	got := wirePrivileges(false, true, true)
	want := int32(1 | 4 | 2 | 32)
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}
