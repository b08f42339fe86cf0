package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
)

// KeyResult is printed by the keys command.
type KeyResult struct {
	Fingerprint      string `json:"fingerprint"`
	Created          bool   `json:"created"`
	AccountName      string `json:"accountName"`
	PublicKeyPath    string `json:"publicKeyPath"`
	LocalFingerprint string `json:"localFingerprint"`
}

// Keys resolves the local public key against the account and prints the
// fingerprint to use.
func Keys(ctx context.Context, global GlobalOptions, configPath string, out OutputOptions) error {
	if err := out.validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	creds := loadCredentials()
	if creds.Token == "" {
		return errors.New(config.EnvToken + " environment variable is required")
	}

	logger, closeLog, err := newLogger(global, false)
	if err != nil {
		return err
	}
	defer closeLog()

	source, err := newKeySource()
	if err != nil {
		return err
	}

	client, err := newCloudClient(creds.Token, config.LoadTimeouts())
	if err != nil {
		return err
	}
	handle, err := newReconciler(cfg, client, source, logger).Reconcile(ctx, cfg.Name, cfg.KeyName)
	if err != nil {
		return withTokenHint(fmt.Errorf("key reconciliation failed: %w", err))
	}

	pub, err := source.ReadPublicKey(cfg.KeyName)
	if err != nil {
		return err
	}

	result := &KeyResult{
		Fingerprint:      handle.Fingerprint,
		Created:          handle.Created,
		AccountName:      cfg.Name,
		PublicKeyPath:    source.PublicKeyPath(cfg.KeyName),
		LocalFingerprint: keys.Fingerprint(pub),
	}
	return writeResult(out, result, func(w io.Writer) {
		state := "matched"
		if result.Created {
			state = "registered as " + result.AccountName
		}
		fmt.Fprintf(w, "%s (%s)\n", result.Fingerprint, state)
	})
}
