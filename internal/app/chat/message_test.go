package chat

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMessageEncodeJSON(t *testing.T) {
	msg := Message{Text: "Ada: hi", Timestamp: 1700000000123}

	data, err := msg.Encode(EnvelopeJSON)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if decoded["message"] != "Ada: hi" || decoded["timestamp"] != float64(1700000000123) {
		t.Errorf("envelope = %s", data)
	}
}

func TestMessageEncodeText(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 4, 321_000_000, time.UTC)
	msg := Message{Text: "Ada has joined the chat.", Timestamp: ts.UnixMilli()}

	data, err := msg.Encode(EnvelopeText)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := "[2024-03-09 07:05:04.321 UTC] Ada has joined the chat."
	if string(data) != want {
		t.Errorf("Encode(text) = %q, want %q", data, want)
	}
}

func TestMessageEncodeUnknownMode(t *testing.T) {
	if _, err := NewMessage("x").Encode("xml"); err == nil {
		t.Fatal("expected an error for an unknown envelope")
	}
}

func TestNewMessageTimestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	msg := NewMessage("hello")
	after := time.Now().UnixMilli()

	if msg.Timestamp < before || msg.Timestamp > after {
		t.Errorf("Timestamp %d not within [%d, %d]", msg.Timestamp, before, after)
	}
}

func TestParseEnvelopeMode(t *testing.T) {
	for _, s := range []string{"json", "text"} {
		if mode, err := ParseEnvelopeMode(s); err != nil || string(mode) != s {
			t.Errorf("ParseEnvelopeMode(%q) = %q, %v", s, mode, err)
		}
	}
	if _, err := ParseEnvelopeMode("JSON "); err == nil {
		t.Error("expected an error for an unknown envelope name")
	}
}
