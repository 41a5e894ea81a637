/*
Package user contains the identity side of the chat system: display names and the
registry that keeps them unique among connected sessions.
*/
package user

import (
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/naming"
)

// MaxNameLength is the maximum display name length in runes.
const MaxNameLength = naming.MaxDisplayNameLength

// ValidateName checks that name can be used as a display name.
// Names are 1-MaxNameLength runes, contain no control characters and do not start
// with '/', so they can never be confused with a command.
func ValidateName(name string) *errs.CustomError {
	if !naming.ValidDisplayName(name) {
		return errs.NewError(errs.ErrNameInvalid)
	}
	return nil
}
