/*
Package chat contains the core of the chat system: rooms and their broadcast fan-out,
the room registry (Manager), and the per-connection protocol state machine (Session).

This file defines the broadcast unit and its wire encodings.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// EnvelopeMode selects how broadcasts are written to clients.
type EnvelopeMode string

const (
	// EnvelopeJSON wraps each broadcast as {"message": ..., "timestamp": <epoch ms>}.
	EnvelopeJSON EnvelopeMode = "json"

	// EnvelopeText writes "[2006-01-02 15:04:05.000 UTC] message".
	EnvelopeText EnvelopeMode = "text"
)

// textTimeLayout is the timestamp layout used by EnvelopeText.
const textTimeLayout = "2006-01-02 15:04:05.000"

// Message is one broadcast. Timestamp is the server time of publication in Unix milliseconds.
type Message struct {
	Text      string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage stamps text with the current time.
func NewMessage(text string) Message {
	return Message{Text: text, Timestamp: time.Now().UnixMilli()}
}

// Encode renders the message for the wire.
func (m Message) Encode(mode EnvelopeMode) ([]byte, error) {
	switch mode {
	case EnvelopeJSON, "":
		return json.Marshal(m)
	case EnvelopeText:
		ts := time.UnixMilli(m.Timestamp).UTC().Format(textTimeLayout)
		return fmt.Appendf(nil, "[%s UTC] %s", ts, m.Text), nil
	default:
		return nil, fmt.Errorf("unknown envelope mode %q", mode)
	}
}

// ParseEnvelopeMode validates a configured envelope name.
func ParseEnvelopeMode(s string) (EnvelopeMode, error) {
	switch mode := EnvelopeMode(s); mode {
	case EnvelopeJSON, EnvelopeText:
		return mode, nil
	default:
		return "", fmt.Errorf("envelope must be %q or %q, got %q", EnvelopeJSON, EnvelopeText, s)
	}
}
