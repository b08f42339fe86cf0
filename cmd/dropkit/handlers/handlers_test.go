package handlers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
	"github.com/imamik/dropkit/internal/platform/digitalocean"
	"github.com/imamik/dropkit/internal/provisioning"
	"github.com/imamik/dropkit/internal/util/keygen"
)

const testKeyName = "id_test"

// saveAndRestoreFactories restores every injectable factory after the test.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origNewCloudClient := newCloudClient
	origNewArchiveReader := newArchiveReader
	origNewKeySource := newKeySource
	origNewObjectStore := newObjectStore
	origNewRemoteDialer := newRemoteDialer
	origRunApplyTUI := runApplyTUI
	origIsInteractiveTTY := isInteractiveTTY
	origFindConfigFile := findConfigFile
	origLoadConfigFile := loadConfigFile
	origLoadCredentials := loadCredentials
	origStdout := stdout
	origStderr := stderr
	origFileExists := fileExists
	origRunWizard := runWizard
	origSaveConfig := saveConfig
	origGenerateKeyPair := generateKeyPair

	t.Cleanup(func() {
		newCloudClient = origNewCloudClient
		newArchiveReader = origNewArchiveReader
		newKeySource = origNewKeySource
		newObjectStore = origNewObjectStore
		newRemoteDialer = origNewRemoteDialer
		runApplyTUI = origRunApplyTUI
		isInteractiveTTY = origIsInteractiveTTY
		findConfigFile = origFindConfigFile
		loadConfigFile = origLoadConfigFile
		loadCredentials = origLoadCredentials
		stdout = origStdout
		stderr = origStderr
		fileExists = origFileExists
		runWizard = origRunWizard
		saveConfig = origSaveConfig
		generateKeyPair = origGenerateKeyPair
	})
}

// testEnv is a sandboxed home directory with a key pair, a config file and
// captured output.
type testEnv struct {
	home       string
	configPath string
	key        *keygen.KeyPair
	out        *bytes.Buffer
	logs       *bytes.Buffer
	cloud      *digitalocean.MockClient
	dropletReq *digitalocean.DropletCreateOpts
}

func setupTestEnv(t *testing.T, configYAML string) *testEnv {
	t.Helper()
	saveAndRestoreFactories(t)

	env := &testEnv{
		home: t.TempDir(),
		out:  &bytes.Buffer{},
		logs: &bytes.Buffer{},
	}

	kp, err := keygen.GenerateEd25519KeyPair("dev@laptop")
	require.NoError(t, err)
	require.NoError(t, kp.Write(filepath.Join(env.home, ".ssh"), testKeyName))
	env.key = kp

	env.configPath = filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, os.WriteFile(env.configPath, []byte(configYAML), 0o600))

	env.cloud = &digitalocean.MockClient{
		CreateDropletFunc: func(_ context.Context, opts digitalocean.DropletCreateOpts) (*digitalocean.Droplet, error) {
			env.dropletReq = &opts
			return &digitalocean.Droplet{ID: 42, Name: opts.Name}, nil
		},
		WaitForIPv4Func: func(_ context.Context, _ int) (string, error) {
			return "203.0.113.10", nil
		},
	}

	stdout = env.out
	stderr = env.logs
	isInteractiveTTY = func() bool { return false }
	newKeySource = func() (*keys.Source, error) { return keys.NewSource(env.home), nil }
	newCloudClient = func(_ string, _ *config.Timeouts) (digitalocean.Client, error) { return env.cloud, nil }
	loadCredentials = func() config.Credentials {
		return config.Credentials{Token: "test-token", SpacesAccessKey: "ak", SpacesSecretKey: "sk"}
	}
	newRemoteDialer = func(_ *config.Timeouts) provisioning.RemoteDialer {
		return func(string, []byte) (provisioning.RemoteRunner, error) {
			t.Fatal("unexpected SSH dial")
			return nil, nil
		}
	}
	return env
}

const cloudInitConfig = `name: web
image: ubuntu-24-04-x64
keyName: id_test
tags: [frontend]
`
