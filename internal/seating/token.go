package seating

import (
	"fmt"
	"strings"
)

// DefaultTokenPrefix is the prefix of check-in tokens unless configured.
const DefaultTokenPrefix = "WEDDING"

// TokenFormat derives check-in tokens.  A token is a pure function of the
// guest id and table number, so it stays stable for the lifetime of an
// assignment and changes on every move.
type TokenFormat struct {
	Prefix string
}

func (f TokenFormat) prefix() string {
	if f.Prefix == "" {
		return DefaultTokenPrefix
	}
	return f.Prefix
}

// Token returns the token for guestID seated at tableNumber.
func (f TokenFormat) Token(guestID string, tableNumber int) string {
	return fmt.Sprintf("%s-%s-TABLE%d", f.prefix(), guestID, tableNumber)
}

// Valid reports whether token carries this format's prefix.
func (f TokenFormat) Valid(token string) bool {
	return strings.HasPrefix(token, f.prefix()+"-")
}
