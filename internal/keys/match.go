package keys

import (
	"bytes"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/dropkit/internal/config"
)

// MatchFunc reports whether the local public key text corresponds to the
// material stored on an account key.
type MatchFunc func(local, stored string) bool

// MatcherFor returns the comparison used for the configured strategy.
// Unknown strategies fall back to containment.
func MatcherFor(strategy config.KeyMatch) MatchFunc {
	if strategy == config.KeyMatchExact {
		return ExactMatch
	}
	return ContainsMatch
}

// ContainsMatch reports whether the local key text contains the stored
// material. Key files usually carry a trailing newline or comment that the
// account copy lacks. Empty stored material never matches.
func ContainsMatch(local, stored string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	return strings.Contains(local, stored)
}

// ExactMatch compares the wire-format key bytes of both authorized-key lines,
// ignoring comments and whitespace. When either side does not parse, the
// whitespace-normalised text is compared instead.
func ExactMatch(local, stored string) bool {
	localKey, _, _, _, errLocal := ssh.ParseAuthorizedKey([]byte(local))
	storedKey, _, _, _, errStored := ssh.ParseAuthorizedKey([]byte(stored))
	if errLocal == nil && errStored == nil {
		return bytes.Equal(localKey.Marshal(), storedKey.Marshal())
	}

	a, b := normalize(local), normalize(stored)
	return a != "" && a == b
}

// Fingerprint returns the MD5 fingerprint DigitalOcean uses for a public key,
// or "" when the text is not an authorized-key line.
func Fingerprint(publicKey string) string {
	key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(publicKey))
	if err != nil {
		return ""
	}
	return ssh.FingerprintLegacyMD5(key)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
