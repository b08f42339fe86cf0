package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts bounds the waiting done during a run. Requests that fail are
// never re-issued; these only limit how long readiness is awaited.
type Timeouts struct {
	DropletCreate time.Duration // droplet create request through to "active"
	DropletIP     time.Duration // waiting for a public IPv4 address
	PollInterval  time.Duration // between droplet status checks
	SSHDial       time.Duration // per TCP dial
	SSHMaxRetries int           // dial attempts while sshd comes up
	SSHRetryDelay time.Duration // first delay between dial attempts
}

// LoadTimeouts reads timeouts from the environment, falling back to defaults
// for unset or malformed values.
//
// Environment Variables:
//   - DO_TIMEOUT_DROPLET_CREATE (default: 10m)
//   - DO_TIMEOUT_DROPLET_IP (default: 5m)
//   - DO_POLL_INTERVAL (default: 5s)
//   - SSH_TIMEOUT_DIAL (default: 10s)
//   - SSH_MAX_RETRIES (default: 30)
//   - SSH_RETRY_DELAY (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		DropletCreate: parseDuration("DO_TIMEOUT_DROPLET_CREATE", 10*time.Minute),
		DropletIP:     parseDuration("DO_TIMEOUT_DROPLET_IP", 5*time.Minute),
		PollInterval:  parseDuration("DO_POLL_INTERVAL", 5*time.Second),
		SSHDial:       parseDuration("SSH_TIMEOUT_DIAL", 10*time.Second),
		SSHMaxRetries: parseInt("SSH_MAX_RETRIES", 30),
		SSHRetryDelay: parseDuration("SSH_RETRY_DELAY", 5*time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
