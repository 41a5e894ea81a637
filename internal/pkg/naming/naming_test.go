package naming

import (
	"strings"
	"testing"
)

func TestValidDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Ada_x1Z", true},
		{"Grace Hopper", true},
		{strings.Repeat("a", MaxDisplayNameLength), true},
		{"", false},
		{strings.Repeat("a", MaxDisplayNameLength+1), false},
		{"/join", false},
		{"trailing ", false},
		{"tab\tname", false},
		{"bad\xff", false},
	}

	for _, tt := range tests {
		if got := ValidDisplayName(tt.name); got != tt.valid {
			t.Errorf("ValidDisplayName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestValidRoomName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"main", true},
		{"/slashes/ok", true},
		{"ルーム", true},
		{strings.Repeat("r", MaxRoomNameLength), true},
		{"", false},
		{strings.Repeat("r", MaxRoomNameLength+1), false},
		{" lobby", false},
		{"bell\a", false},
	}

	for _, tt := range tests {
		if got := ValidRoomName(tt.name); got != tt.valid {
			t.Errorf("ValidRoomName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}
