package keys

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound is returned when a key file does not exist.
	ErrKeyNotFound = errors.New("local key not found")

	// ErrKeyDecode is returned when a key file is not valid UTF-8 text.
	ErrKeyDecode = errors.New("local key is not valid UTF-8 text")

	// ErrMatchInconsistency is matched by *MatchInconsistencyError.
	ErrMatchInconsistency = errors.New("account keys exist but none match the local key")

	// ErrKeyConflict is wrapped by Store implementations when the account
	// refuses a new key because the same material is already registered.
	ErrKeyConflict = errors.New("key already registered on the account")
)

// MatchInconsistencyError reports an account that holds keys, none of which
// match the local public key.
type MatchInconsistencyError struct {
	// LocalFingerprint is the MD5 fingerprint of the local key, if parsable.
	LocalFingerprint string
	// AccountKeys lists the names of the keys that were compared.
	AccountKeys []string
}

func (e *MatchInconsistencyError) Error() string {
	local := e.LocalFingerprint
	if local == "" {
		local = "unparsable key"
	}
	return fmt.Sprintf("none of the %d account keys [%s] match the local key (%s)",
		len(e.AccountKeys), strings.Join(e.AccountKeys, ", "), local)
}

// Is makes errors.Is(err, ErrMatchInconsistency) true.
func (e *MatchInconsistencyError) Is(target error) bool {
	return target == ErrMatchInconsistency
}
