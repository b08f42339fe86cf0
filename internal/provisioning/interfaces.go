package provisioning

import (
	"context"
	"os"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
	"github.com/imamik/dropkit/internal/platform/ssh"
)

// KeyReader reads the local key pair.
// This interface is implemented by *keys.Source.
type KeyReader interface {
	Read(name string) (*keys.LocalKeyPair, error)
	ReadPublicKey(name string) (string, error)
	PublicKeyPath(name string) string
	PrivateKeyPath(name string) string
}

// KeyReconciler resolves the account key for an already loaded public key.
// This interface is implemented by *keys.Reconciler.
type KeyReconciler interface {
	ReconcilePublicKey(ctx context.Context, accountName, publicKey string) (keys.Handle, error)
}

// RemoteRunner transfers files to and runs commands on the droplet.
// This interface is implemented by *ssh.Client.
type RemoteRunner interface {
	Upload(ctx context.Context, localPath, remotePath string, mode os.FileMode) error
	Execute(ctx context.Context, command string) (string, error)
}

// RemoteDialer returns a RemoteRunner for host authenticated with privateKey.
type RemoteDialer func(host string, privateKey []byte) (RemoteRunner, error)

// ObjectStore receives archived run outputs.
// This interface is implemented by *s3.Client.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error
}

// ArchiveReader reads archived run outputs back.
// This interface is implemented by *s3.Client.
type ArchiveReader interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// SSHDialer returns a RemoteDialer that connects as the droplet's root user
// on the SSH port, retrying while sshd comes up within the given timeouts.
func SSHDialer(timeouts *config.Timeouts) RemoteDialer {
	return func(host string, privateKey []byte) (RemoteRunner, error) {
		return ssh.NewClient(&ssh.Config{
			Host:        host,
			Port:        config.SSHPort,
			User:        config.RemoteUser,
			PrivateKey:  privateKey,
			DialTimeout: timeouts.SSHDial,
			MaxRetries:  timeouts.SSHMaxRetries,
			RetryDelay:  timeouts.SSHRetryDelay,
		})
	}
}
