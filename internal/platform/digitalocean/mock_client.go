package digitalocean

import (
	"context"

	"github.com/imamik/dropkit/internal/keys"
)

// MockClient is a function-field implementation of Client. Nil functions
// return canned successes.
type MockClient struct {
	ListKeysFunc      func(ctx context.Context) ([]keys.RemoteKey, error)
	CreateKeyFunc     func(ctx context.Context, name, publicKey string) (*keys.RemoteKey, error)
	CreateDropletFunc func(ctx context.Context, opts DropletCreateOpts) (*Droplet, error)
	GetDropletFunc    func(ctx context.Context, id int) (*Droplet, error)
	WaitForIPv4Func   func(ctx context.Context, id int) (string, error)
}

var _ Client = (*MockClient)(nil)

// ListKeys implements keys.Store.
func (m *MockClient) ListKeys(ctx context.Context) ([]keys.RemoteKey, error) {
	if m.ListKeysFunc != nil {
		return m.ListKeysFunc(ctx)
	}
	return nil, nil
}

// CreateKey implements keys.Store.
func (m *MockClient) CreateKey(ctx context.Context, name, publicKey string) (*keys.RemoteKey, error) {
	if m.CreateKeyFunc != nil {
		return m.CreateKeyFunc(ctx, name, publicKey)
	}
	return &keys.RemoteKey{ID: 1, Name: name, PublicKey: publicKey, Fingerprint: "mock-fingerprint"}, nil
}

// CreateDroplet implements DropletManager.
func (m *MockClient) CreateDroplet(ctx context.Context, opts DropletCreateOpts) (*Droplet, error) {
	if m.CreateDropletFunc != nil {
		return m.CreateDropletFunc(ctx, opts)
	}
	return &Droplet{ID: 1, Name: opts.Name, Status: "new"}, nil
}

// GetDroplet implements DropletManager.
func (m *MockClient) GetDroplet(ctx context.Context, id int) (*Droplet, error) {
	if m.GetDropletFunc != nil {
		return m.GetDropletFunc(ctx, id)
	}
	return &Droplet{ID: id, Status: statusActive, IPv4: "192.0.2.1"}, nil
}

// WaitForIPv4 implements DropletManager.
func (m *MockClient) WaitForIPv4(ctx context.Context, id int) (string, error) {
	if m.WaitForIPv4Func != nil {
		return m.WaitForIPv4Func(ctx, id)
	}
	return "192.0.2.1", nil
}
