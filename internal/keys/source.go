package keys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// LocalKeyPair is a key pair read from ~/.ssh for the duration of a run.
type LocalKeyPair struct {
	Name           string
	PublicKey      string
	PrivateKey     string
	PublicKeyPath  string
	PrivateKeyPath string
}

// Source reads key pairs from <home>/.ssh. It never writes.
type Source struct {
	home string
}

// NewSource returns a Source rooted at the given home directory.
func NewSource(home string) *Source {
	return &Source{home: home}
}

// DefaultSource returns a Source rooted at the current user's home directory.
func DefaultSource() (*Source, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}
	return NewSource(home), nil
}

// PrivateKeyPath returns <home>/.ssh/<name>.
func (s *Source) PrivateKeyPath(name string) string {
	return filepath.Join(s.home, ".ssh", name)
}

// PublicKeyPath returns <home>/.ssh/<name>.pub.
func (s *Source) PublicKeyPath(name string) string {
	return s.PrivateKeyPath(name) + ".pub"
}

// Read loads both halves of the named key pair.
func (s *Source) Read(name string) (*LocalKeyPair, error) {
	pub, err := s.ReadPublicKey(name)
	if err != nil {
		return nil, err
	}
	priv, err := readText(s.PrivateKeyPath(name))
	if err != nil {
		return nil, err
	}
	return &LocalKeyPair{
		Name:           name,
		PublicKey:      pub,
		PrivateKey:     priv,
		PublicKeyPath:  s.PublicKeyPath(name),
		PrivateKeyPath: s.PrivateKeyPath(name),
	}, nil
}

// ReadPublicKey loads only <name>.pub, exactly as stored on disk.
func (s *Source) ReadPublicKey(name string) (string, error) {
	return readText(s.PublicKeyPath(name))
}

func readText(path string) (string, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrKeyDecode, path)
	}
	return string(data), nil
}
