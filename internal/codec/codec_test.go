package codec

import (
	"encoding/binary"
	"testing"
)

func TestWritePacketFraming(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	framed := WritePacket(AccountID, payload)

	if len(framed) != 7+len(payload) {
		t.Fatalf("expected frame length %d, got %d", 7+len(payload), len(framed))
	}
	if id := binary.LittleEndian.Uint16(framed[0:2]); id != AccountID {
		t.Fatalf("expected packet id %d, got %d", AccountID, id)
	}
	if framed[2] != 0x00 {
		t.Fatalf("expected reserved byte 0x00, got %#x", framed[2])
	}
	if length := binary.LittleEndian.Uint32(framed[3:7]); length != uint32(len(payload)) {
		t.Fatalf("expected length %d, got %d", len(payload), length)
	}
}

func TestPackStringEmpty(t *testing.T) {
	got := packString("")
	if len(got) != 1 || got[0] != 0x00 {
		t.Fatalf("expected single 0x00 byte for empty string, got %v", got)
	}
}

func TestPackStringNonEmpty(t *testing.T) {
	got := packString("abc")
	want := []byte{0x0b, 0x03, 'a', 'b', 'c'}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, got[i], want[i])
		}
	}
}

func TestPackStringLongUsesTwoByteULEB128Length(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	got := packString(string(long))
	// 300 requires two ULEB128 bytes: 0xAC 0x02
	if got[0] != 0x0b || got[1] != 0xAC || got[2] != 0x02 {
		t.Fatalf("unexpected ULEB128 length prefix: %v", got[:3])
	}
	if len(got) != 1+2+300 {
		t.Fatalf("unexpected total length: %d", len(got))
	}
}

func TestWriterAccumulatesMultiplePackets(t *testing.T) {
	w := NewWriter()
	w.WriteAccountID(42)
	w.WriteProtocolVersion(19)
	w.WriteNotification("hello")

	b := w.Bytes()
	if len(b) == 0 {
		t.Fatal("expected non-empty accumulated buffer")
	}

	firstID := binary.LittleEndian.Uint16(b[0:2])
	if firstID != AccountID {
		t.Fatalf("expected first packet id %d, got %d", AccountID, firstID)
	}
}

func TestWriteMainMenuIconJoinsURLs(t *testing.T) {
	w := NewWriter()
	w.WriteMainMenuIcon("https://example.com/icon.png", "https://example.com")
	b := w.Bytes()

	length := binary.LittleEndian.Uint32(b[3:7])
	payload := b[7 : 7+length]
	// 0x0b marker + uleb128 length + bytes
	if payload[0] != 0x0b {
		t.Fatalf("expected string marker byte, got %#x", payload[0])
	}
	want := "https://example.com/icon.png|https://example.com"
	if payload[1] != byte(len(want)) || string(payload[2:]) != want {
		t.Fatalf("expected joined payload %q, got %q", want, payload[1:])
	}
}
