// Package checksum derives content versions used as HTTP entity tags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/starford/luach/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Event returns the version of an event: the digest of its JSON encoding.
// Any field change, including the derived date, yields a new version.
func Event(e models.Event) string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return Sum(data)
}
