package keys

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/dropkit/internal/util/keygen"
)

// fakeStore records every call made against the account.
type fakeStore struct {
	keys      []RemoteKey
	listErr   error
	createErr error
	// afterCreate, if set, replaces keys once CreateKey has been called.
	afterCreate []RemoteKey

	calls   []string
	created []RemoteKey
}

func (f *fakeStore) ListKeys(_ context.Context) ([]RemoteKey, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.keys, nil
}

func (f *fakeStore) CreateKey(_ context.Context, name, publicKey string) (*RemoteKey, error) {
	f.calls = append(f.calls, "create")
	if f.afterCreate != nil {
		f.keys = f.afterCreate
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	key := RemoteKey{
		ID:          len(f.created) + 100,
		Name:        name,
		PublicKey:   publicKey,
		Fingerprint: "fp-new",
	}
	f.created = append(f.created, key)
	return &key, nil
}

func (f *fakeStore) createCalls() int {
	n := 0
	for _, c := range f.calls {
		if c == "create" {
			n++
		}
	}
	return n
}

// writeKey stores a key pair under <home>/.ssh and returns the home dir.
func writeKey(t *testing.T, name, pub, priv string) string {
	t.Helper()
	home := t.TempDir()
	dir := filepath.Join(home, ".ssh")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".pub"), []byte(pub), 0o644))
	if priv != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(priv), 0o600))
	}
	return home
}

func generateKey(t *testing.T, comment string) *keygen.KeyPair {
	t.Helper()
	kp, err := keygen.GenerateEd25519KeyPair(comment)
	require.NoError(t, err)
	return kp
}

var errBoom = errors.New("boom")
