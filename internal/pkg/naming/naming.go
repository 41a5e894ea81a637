// Package naming holds the character rules shared by display names and room names.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxDisplayNameLength is the maximum display name length in runes.
	MaxDisplayNameLength = 32

	// MaxRoomNameLength is the maximum room name length in runes.
	MaxRoomNameLength = 64
)

// ValidDisplayName reports whether name is 1-32 runes of valid UTF-8 with no surrounding
// whitespace, no control characters and no leading '/'.
func ValidDisplayName(name string) bool {
	return !strings.HasPrefix(name, "/") && valid(name, MaxDisplayNameLength)
}

// ValidRoomName reports whether name is 1-64 runes of valid UTF-8 with no surrounding
// whitespace and no control characters.
func ValidRoomName(name string) bool {
	return valid(name, MaxRoomNameLength)
}

func valid(name string, maxRunes int) bool {
	if name == "" || !utf8.ValidString(name) || utf8.RuneCountInString(name) > maxRunes {
		return false
	}

	if strings.TrimSpace(name) != name {
		return false
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}

	return true
}
