// Package identity normalizes end-user identity keys. An identity is a
// phone-number-shaped contact string; the normalized form is its digits
// only. Every store and every per-user lock in the daemon is keyed by
// the normalized form, so normalization happens exactly once, at the
// edge, before any state is touched.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned when a contact string does not normalize to a
// plausible phone number.
var ErrInvalid = errors.New("invalid identity")

const (
	minDigits = 10
	maxDigits = 15
)

// Normalize strips all non-digit characters from raw and validates the
// result length. It is idempotent: normalizing an already-normalized
// key returns it unchanged.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	key := b.String()
	if len(key) < minDigits || len(key) > maxDigits {
		return "", fmt.Errorf("%w: %q has %d digits (want %d-%d)", ErrInvalid, raw, len(key), minDigits, maxDigits)
	}
	return key, nil
}
