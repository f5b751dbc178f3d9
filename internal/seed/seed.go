// internal/seed/seed.go
//
// Seeds for the board's random source.
//   - Daily: the same seed for everyone on a given UTC date, keyed by a salt.
//   - FromPhrase: a stable seed for a player-chosen phrase.
//   - Random: a fresh seed from crypto/rand.
//
// Every seed is non-negative so it can be shown and typed back in.

package seed

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Daily returns HMAC-SHA256(salt, YYYY-MM-DD) folded into an int64.
func Daily(t time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	return fold(h.Sum(nil))
}

// FromPhrase maps a phrase to a seed. A phrase that is already a decimal
// integer is used as-is so shared numeric seeds round-trip.
func FromPhrase(phrase string) int64 {
	phrase = strings.TrimSpace(phrase)
	if n, err := strconv.ParseInt(phrase, 10, 64); err == nil && n >= 0 {
		return n
	}
	sum := blake2b.Sum256([]byte(phrase))
	return fold(sum[:])
}

// Random returns a seed from crypto/rand, falling back to the clock.
func Random() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano() & (1<<63 - 1)
	}
	return fold(b[:])
}

// fold takes the first 8 bytes big-endian and clears the sign bit.
func fold(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b[:8]) & (1<<63 - 1))
}
