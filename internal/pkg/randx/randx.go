/*
Package randx provides functions for generating cryptographically secure random values.

It generates the display names handed to new connections and the UUID session identifiers
used to correlate log records.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// NameSuffixLength is the number of Base62 characters appended to a generated display name.
	NameSuffixLength = 3
)

// famousNames is the pool generated display names are drawn from.
var famousNames = []string{
	"Ada", "Alan", "Barbara", "Bjarne", "Claude", "Dennis", "Donald", "Edsger",
	"Frances", "Grace", "Guido", "Hedy", "Ken", "Linus", "Margaret", "Niklaus",
	"Radia", "Rob", "Robert", "Sophie", "Tim", "Tony", "Vint", "Whitfield",
	"Alonzo", "Annie", "Charles", "John", "Katherine", "Leslie", "Mary", "Shafi",
}

// Base62 returns a random Base62 string of the given length.
func Base62(length int) (string, error) {
	result := make([]byte, length)

	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// DisplayName generates a display name such as "Grace_x7Q": a name from the pool
// followed by an underscore and NameSuffixLength Base62 characters.
func DisplayName() (string, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(famousNames))))
	if err != nil {
		return "", fmt.Errorf("failed to pick display name: %v", err)
	}

	suffix, err := Base62(NameSuffixLength)
	if err != nil {
		return "", err
	}

	return famousNames[idx.Int64()] + "_" + suffix, nil
}

// SessionID generates a standard UUID v4 string identifying one connection.
func SessionID() string {
	return uuid.New().String()
}
