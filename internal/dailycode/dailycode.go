// Package dailycode derives the rotating 6-digit identity proof used at
// physical handoffs. The code is a pure function of (userID, calendar date):
// both sides can compute it independently, so the recipient needs no network
// access at the moment of the exchange.
package dailycode

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Code returns the 6-digit code for a user on the calendar date of t.
// Only the date matters, never the time of day; the code is stable for the
// whole day and changes at the date boundary.
func Code(userID string, t time.Time) string {
	day := t.Format("2006-01-02")
	sum := sha256.Sum256([]byte(userID + "|" + day))
	n := binary.BigEndian.Uint64(sum[:8]) % 1000000
	return fmt.Sprintf("%06d", n)
}

// IsValid checks a submitted code against the derived value for the user on
// the given date. The submitted code is normalized first, so "123-456",
// "123 456" and "123456" all compare equal.
func IsValid(userID, submitted string, t time.Time) bool {
	return Normalize(submitted) == Code(userID, t)
}

// Format renders a code for display with a separator after the third digit.
func Format(code string) string {
	if len(code) != 6 {
		return code
	}
	return code[:3] + "-" + code[3:]
}

// Normalize strips every non-digit character from s.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
