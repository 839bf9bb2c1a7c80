package sessions

import (
	"testing"
	"time"
)

func TestRemainingSilenceSecondsFuture(t *testing.T) {
	end := time.Now().Add(30 * time.Second).Unix()
	got := RemainingSilenceSeconds(end)
	if got <= 0 || got > 30 {
		t.Fatalf("expected remaining silence within (0, 30], got %d", got)
	}
}

func TestRemainingSilenceSecondsPastClampsToZero(t *testing.T) {
	end := time.Now().Add(-30 * time.Second).Unix()
	if got := RemainingSilenceSeconds(end); got != 0 {
		t.Fatalf("expected 0 for past silence end, got %d", got)
	}
}

func TestRemainingSilenceSecondsExactlyNow(t *testing.T) {
	end := time.Now().Unix()
	if got := RemainingSilenceSeconds(end); got < 0 {
		t.Fatalf("expected non-negative remaining silence, got %d", got)
	}
}
