package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/imamik/dropkit/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 30
	defaultRetryDelay  = 5 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// RemoteError is a failed transfer or command on the remote host.
type RemoteError struct {
	Host    string
	Op      string // "upload" or "exec"
	Command string // remote path for uploads
	Output  string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed on %s: %v\nCommand: %s", e.Op, e.Host, e.Err, e.Command)
	}
	return fmt.Sprintf("%s failed on %s: %v\nCommand: %s\nOutput: %s", e.Op, e.Host, e.Err, e.Command, e.Output)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ExitStatus returns the remote exit code, or -1 if the command did not exit
// normally.
func (e *RemoteError) ExitStatus() int {
	var exitErr *ssh.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitStatus()
	}
	return -1
}

// Client talks to a remote server via SSH.
// It parses the private key once during construction and
// creates connections on demand per call.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // the droplet's host key is not known yet
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Execute runs a command on the remote host.
// Returns command output (stdout+stderr) and any execution error, which is a
// *RemoteError once connected.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(client, command)
}

// Upload copies the local file to remotePath over SFTP, replacing any existing
// file, and sets its mode.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string, mode os.FileMode) error {
	// #nosec G304
	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer func() { _ = local.Close() }()

	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	sc, err := sftp.NewClient(client)
	if err != nil {
		return c.uploadError(remotePath, fmt.Errorf("failed to start sftp: %w", err))
	}
	defer func() { _ = sc.Close() }()

	remote, err := sc.Create(remotePath)
	if err != nil {
		return c.uploadError(remotePath, err)
	}
	if _, err := io.Copy(remote, local); err != nil {
		_ = remote.Close()
		return c.uploadError(remotePath, err)
	}
	if err := remote.Close(); err != nil {
		return c.uploadError(remotePath, err)
	}
	if err := sc.Chmod(remotePath, mode); err != nil {
		return c.uploadError(remotePath, err)
	}
	return nil
}

func (c *Client) uploadError(remotePath string, err error) error {
	return &RemoteError{Host: c.config.Host, Op: "upload", Command: remotePath, Err: err}
}

// connect establishes SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	var client *ssh.Client

	// sshd starts late in the boot of a new droplet
	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = c.dial(ctx, addr, config)
		if isAuthRejected(dialErr) {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	return client, nil
}

// isAuthRejected reports a handshake that reached sshd but whose key was
// refused. Redialing with the same key cannot succeed.
func isAuthRejected(err error) bool {
	return err != nil && strings.Contains(err.Error(), "unable to authenticate")
}

// dial opens one connection. The handshake shares the dial timeout.
func (c *Client) dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	_ = conn.SetDeadline(time.Now().Add(c.config.DialTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// runCommand executes a command on an established SSH session.
func (c *Client) runCommand(client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", &RemoteError{Host: c.config.Host, Op: "exec", Command: command, Err: fmt.Errorf("failed to create session: %w", err)}
	}
	defer func() { _ = session.Close() }()

	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), &RemoteError{Host: c.config.Host, Op: "exec", Command: command, Output: string(output), Err: err}
	}

	return string(output), nil
}
