package digitalocean

import (
	"context"
	"fmt"

	"github.com/digitalocean/godo"

	"github.com/imamik/dropkit/internal/keys"
)

const (
	opListKeys  = "list ssh keys"
	opCreateKey = "create ssh key"
)

// ListKeys returns every SSH key on the account, following pagination.
func (c *RealClient) ListKeys(ctx context.Context) ([]keys.RemoteKey, error) {
	var out []keys.RemoteKey
	opt := &godo.ListOptions{Page: 1, PerPage: c.perPage}

	for {
		page, resp, err := c.client.Keys.List(ctx, opt)
		if err != nil {
			return nil, newRequestError(opListKeys, resp, err)
		}
		for _, k := range page {
			out = append(out, toRemoteKey(k))
		}

		if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
			return out, nil
		}
		current, err := resp.Links.CurrentPage()
		if err != nil {
			return nil, fmt.Errorf("failed to read ssh key page: %w", err)
		}
		opt.Page = current + 1
	}
}

// CreateKey registers a public key. A 422 answer wraps keys.ErrKeyConflict.
func (c *RealClient) CreateKey(ctx context.Context, name, publicKey string) (*keys.RemoteKey, error) {
	key, resp, err := c.client.Keys.Create(ctx, &godo.KeyCreateRequest{
		Name:      name,
		PublicKey: publicKey,
	})
	if err != nil {
		reqErr := newRequestError(opCreateKey, resp, err)
		if IsUnprocessable(reqErr) {
			return nil, fmt.Errorf("%w: %w", keys.ErrKeyConflict, reqErr)
		}
		return nil, reqErr
	}
	k := toRemoteKey(*key)
	return &k, nil
}

func toRemoteKey(k godo.Key) keys.RemoteKey {
	return keys.RemoteKey{
		ID:          k.ID,
		Name:        k.Name,
		PublicKey:   k.PublicKey,
		Fingerprint: k.Fingerprint,
	}
}
