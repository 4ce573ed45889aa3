package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// shortHashLen is the length of hashes embedded in other keys.
const shortHashLen = 16

// Hash returns the hex SHA-256 of data. Profiles are keyed by the hash of
// their source bytes, downloads by the hash of their URL.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash hashes the JSON encoding of v and truncates it. It folds
// values such as theme overrides or timing markers into a single key field.
func ShortHash(v any) string {
	data, _ := json.Marshal(v)
	return Hash(data)[:shortHashLen]
}

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
