package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dropkit/internal/config"
)

// mockObjectStore is a testify mock of ObjectStore.
type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) EnsureBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *mockObjectStore) PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error {
	args := m.Called(ctx, bucket, key, contentType, data)
	return args.Error(0)
}

func (m *mockObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func archiveContext(t *testing.T, mode config.Mode, store ObjectStore) *Context {
	t.Helper()
	ctx, _ := newTestContext(t)
	ctx.Config = testConfig(mode)
	ctx.Config.Archive.Bucket = "dropkit-runs"
	ctx.Archive = store
	ctx.State.LocalKey = &LocalKey{Name: testKeyName, PrivateKeyPath: "/home/dev/.ssh/id_test"}
	ctx.State.Machine = &Machine{ID: 7, Name: "web", IPv4: "198.51.100.4"}
	return ctx
}

func TestArchiveOutputs_BootstrapSkipsCloudConfig(t *testing.T) {
	t.Parallel()
	store := &mockObjectStore{}
	ctx := archiveContext(t, config.ModeBootstrap, store)

	store.On("EnsureBucket", mock.Anything, "dropkit-runs").Return(nil).Once()
	store.On("PutObject", mock.Anything, "dropkit-runs", "runs/web/test-run/outputs.json", "application/json",
		mock.MatchedBy(func(data []byte) bool { return len(data) > 0 })).Return(nil).Once()

	require.NoError(t, archiveOutputs(ctx))

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "PutObject", 1)
	assert.Equal(t, []string{"runs/web/test-run/outputs.json"}, ctx.State.ArchivedKeys)
}

func TestArchiveOutputs_CloudInitStoresDocument(t *testing.T) {
	t.Parallel()
	store := &mockObjectStore{}
	ctx := archiveContext(t, config.ModeCloudInit, store)
	ctx.State.CloudConfig = "#cloud-config\ntimezone: Europe/London\n"

	store.On("EnsureBucket", mock.Anything, "dropkit-runs").Return(nil)
	store.On("PutObject", mock.Anything, "dropkit-runs", "runs/web/test-run/outputs.json", "application/json", mock.Anything).Return(nil)
	store.On("PutObject", mock.Anything, "dropkit-runs", "runs/web/test-run/cloud-config.yaml", "text/cloud-config",
		[]byte(ctx.State.CloudConfig)).Return(nil)

	require.NoError(t, archiveOutputs(ctx))

	store.AssertExpectations(t)
	assert.Equal(t, []string{
		"runs/web/test-run/outputs.json",
		"runs/web/test-run/cloud-config.yaml",
	}, ctx.State.ArchivedKeys)
}

func TestArchiveOutputs_BucketFailureStopsUploads(t *testing.T) {
	t.Parallel()
	store := &mockObjectStore{}
	ctx := archiveContext(t, config.ModeCloudInit, store)
	denied := errors.New("access denied")

	store.On("EnsureBucket", mock.Anything, "dropkit-runs").Return(denied)

	err := archiveOutputs(ctx)

	require.ErrorIs(t, err, denied)
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, ctx.State.ArchivedKeys)
}

func TestArchiveOutputs_PutFailureKeepsEarlierKeys(t *testing.T) {
	t.Parallel()
	store := &mockObjectStore{}
	ctx := archiveContext(t, config.ModeCloudInit, store)
	ctx.State.CloudConfig = "#cloud-config\n"
	full := errors.New("quota exceeded")

	store.On("EnsureBucket", mock.Anything, "dropkit-runs").Return(nil)
	store.On("PutObject", mock.Anything, "dropkit-runs", "runs/web/test-run/outputs.json", mock.Anything, mock.Anything).Return(nil)
	store.On("PutObject", mock.Anything, "dropkit-runs", "runs/web/test-run/cloud-config.yaml", mock.Anything, mock.Anything).Return(full)

	err := archiveOutputs(ctx)

	require.ErrorIs(t, err, full)
	assert.Equal(t, []string{"runs/web/test-run/outputs.json"}, ctx.State.ArchivedKeys)
}

func TestFetchArchivedOutputs_ReadsWhatArchiveWrote(t *testing.T) {
	t.Parallel()
	store := &mockObjectStore{}
	ctx := archiveContext(t, config.ModeCloudInit, store)
	ctx.State.CloudConfig = "#cloud-config\n"

	var written []byte
	store.On("EnsureBucket", mock.Anything, "dropkit-runs").Return(nil)
	store.On("PutObject", mock.Anything, "dropkit-runs", "runs/web/test-run/outputs.json", "application/json", mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(4).([]byte) }).Return(nil)
	store.On("PutObject", mock.Anything, "dropkit-runs", "runs/web/test-run/cloud-config.yaml", mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, archiveOutputs(ctx))

	store.On("GetObject", mock.Anything, "dropkit-runs", "runs/web/test-run/outputs.json").Return(written, nil)

	out, err := FetchArchivedOutputs(context.Background(), store, "dropkit-runs", "web", "test-run")

	require.NoError(t, err)
	assert.Equal(t, ctx.State.Outputs(), out)
}

func TestFetchArchivedOutputs_Errors(t *testing.T) {
	t.Parallel()
	missing := errors.New("NoSuchKey")

	tests := []struct {
		name  string
		runID string
		data  []byte
		err   error
		want  string
	}{
		{name: "empty run ID", runID: "", want: `invalid run ID ""`},
		{name: "parent directory", runID: "..", want: `invalid run ID ".."`},
		{name: "nested path", runID: "a/b", want: `invalid run ID "a/b"`},
		{name: "missing object", runID: "r1", err: missing, want: "NoSuchKey"},
		{name: "corrupt object", runID: "r1", data: []byte("{"), want: "failed to decode runs/web/r1/outputs.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &mockObjectStore{}
			store.On("GetObject", mock.Anything, "dropkit-runs", mock.Anything).Return(tt.data, tt.err)

			_, err := FetchArchivedOutputs(context.Background(), store, "dropkit-runs", "web", tt.runID)

			require.ErrorContains(t, err, tt.want)
			if tt.err == nil && tt.data == nil {
				store.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestArchivePrefix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "runs/web/3f2a", ArchivePrefix("web", "3f2a"))
}
