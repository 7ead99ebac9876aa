package invite

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// NewToken returns a fresh plaintext invite token. Only its digest is stored.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HashToken returns the hex BLAKE3 digest stored in place of a token.
func HashToken(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyToken reports whether token matches a stored digest.
func VerifyToken(token, digest string) bool {
	return token != "" && HashToken(token) == strings.ToLower(digest)
}
