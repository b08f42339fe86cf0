package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
	"github.com/imamik/dropkit/internal/util/keygen"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive wizard.
	runWizard = config.RunWizard

	// saveConfig writes the config to a file.
	saveConfig = config.Save

	// generateKeyPair creates a new key pair.
	generateKeyPair = keygen.GenerateEd25519KeyPair
)

// Init runs the configuration wizard and writes the result to a file.
// With generateKey, a missing key pair is created under ~/.ssh.
func Init(ctx context.Context, outputPath string, generateKey bool) error {
	if fileExists(outputPath) {
		fmt.Fprintf(stdout, "Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.ToConfig()

	if generateKey {
		if err := ensureKeyPair(cfg); err != nil {
			return err
		}
	}

	if err := saveConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// ensureKeyPair creates ~/.ssh/<keyName> unless it already exists.
func ensureKeyPair(cfg *config.Config) error {
	source, err := newKeySource()
	if err != nil {
		return err
	}

	if _, err := source.ReadPublicKey(cfg.KeyName); err == nil {
		fmt.Fprintf(stdout, "Using existing key %s\n", source.PublicKeyPath(cfg.KeyName))
		return nil
	} else if !errors.Is(err, keys.ErrKeyNotFound) {
		return err
	}

	kp, err := generateKeyPair(cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}
	if err := kp.Write(filepath.Dir(source.PrivateKeyPath(cfg.KeyName)), cfg.KeyName); err != nil {
		return fmt.Errorf("failed to write key pair: %w", err)
	}
	fmt.Fprintf(stdout, "Generated %s\n", source.PublicKeyPath(cfg.KeyName))
	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "dropkit - key-only droplets on DigitalOcean")
	fmt.Fprintln(stdout, "===========================================")
	fmt.Fprintln(stdout)
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Configuration saved!")
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "  File: %s\n", outputPath)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Droplet Summary")
	fmt.Fprintln(stdout, "---------------")
	fmt.Fprintf(stdout, "  Name:    %s\n", cfg.Name)
	fmt.Fprintf(stdout, "  Image:   %s\n", cfg.Image)
	fmt.Fprintf(stdout, "  Size:    %s\n", cfg.Size)
	fmt.Fprintf(stdout, "  Region:  %s\n", cfg.Region)
	fmt.Fprintf(stdout, "  Key:     ~/.ssh/%s\n", cfg.KeyName)
	fmt.Fprintf(stdout, "  Mode:    %s\n", cfg.Mode)
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "Next Steps")
	fmt.Fprintln(stdout, "----------")
	fmt.Fprintln(stdout, "  1. Set your DigitalOcean API token:")
	fmt.Fprintf(stdout, "     export %s=<your-token>\n", config.EnvToken)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "  2. Check what will be created:")
	fmt.Fprintln(stdout, "     dropkit plan")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "  3. Create the droplet:")
	fmt.Fprintln(stdout, "     dropkit apply")
	fmt.Fprintln(stdout)
}
