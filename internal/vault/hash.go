package vault

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

const hashPrefix = "blake3:"

// Digest returns the content hash recorded for value.
func Digest(value string) string {
	sum := blake3.Sum256([]byte(value))
	return hashPrefix + hex.EncodeToString(sum[:])
}

// ShortHash trims a digest for display.
func ShortHash(h string) string {
	h = strings.TrimPrefix(h, hashPrefix)
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
