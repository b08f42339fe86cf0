package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/provisioning"
)

// Outputs prints the outputs an earlier apply archived to Spaces.
func Outputs(ctx context.Context, _ GlobalOptions, configPath, runID string, out OutputOptions) error {
	if err := out.validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !cfg.Archive.Enabled() {
		return errors.New("archive.bucket is not configured, runs are not archived")
	}

	creds := loadCredentials()
	if creds.SpacesAccessKey == "" || creds.SpacesSecretKey == "" {
		return fmt.Errorf("%s and %s are required to read archived runs", config.EnvSpacesAccessKey, config.EnvSpacesSecretKey)
	}

	reader, err := newArchiveReader(ctx, cfg.Archive, creds)
	if err != nil {
		return fmt.Errorf("failed to create archive client: %w", err)
	}

	outputs, err := provisioning.FetchArchivedOutputs(ctx, reader, cfg.Archive.Bucket, cfg.Name, runID)
	if err != nil {
		return fmt.Errorf("failed to read run %s: %w", runID, err)
	}

	return writeResult(out, outputs, func(w io.Writer) {
		printOutputs(w, outputs)
	})
}
