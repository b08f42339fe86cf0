package digitalocean

import (
	"context"
	"fmt"

	"github.com/digitalocean/godo"

	"github.com/imamik/dropkit/internal/util/retry"
)

const (
	opCreateDroplet = "create droplet"
	opGetDroplet    = "get droplet"

	statusActive = "active"
)

// CreateDroplet requests a new droplet. It returns as soon as the API has
// accepted the request; use WaitForIPv4 to wait for the droplet to come up.
func (c *RealClient) CreateDroplet(ctx context.Context, opts DropletCreateOpts) (*Droplet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.DropletCreate)
	defer cancel()

	d, resp, err := c.client.Droplets.Create(ctx, buildCreateRequest(opts))
	if err != nil {
		return nil, newRequestError(opCreateDroplet, resp, err)
	}
	return toDroplet(d), nil
}

func buildCreateRequest(opts DropletCreateOpts) *godo.DropletCreateRequest {
	sshKeys := make([]godo.DropletCreateSSHKey, 0, len(opts.SSHKeys))
	for _, fp := range opts.SSHKeys {
		sshKeys = append(sshKeys, godo.DropletCreateSSHKey{Fingerprint: fp})
	}
	return &godo.DropletCreateRequest{
		Name:     opts.Name,
		Region:   opts.Region,
		Size:     opts.Size,
		Image:    godo.DropletCreateImage{Slug: opts.Image},
		SSHKeys:  sshKeys,
		Tags:     opts.Tags,
		UserData: opts.UserData,
	}
}

// GetDroplet returns the current state of a droplet.
func (c *RealClient) GetDroplet(ctx context.Context, id int) (*Droplet, error) {
	d, resp, err := c.client.Droplets.Get(ctx, id)
	if err != nil {
		return nil, newRequestError(opGetDroplet, resp, err)
	}
	return toDroplet(d), nil
}

// WaitForIPv4 polls the droplet every PollInterval until it is active and
// has a public IPv4 address, for at most DropletIP. A droplet that is not yet
// visible (404) or a rate-limited poll (429) counts as not ready; any other
// failed status request ends the wait with a retry.Fatal error.
func (c *RealClient) WaitForIPv4(ctx context.Context, id int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.DropletIP)
	defer cancel()

	var ip string
	var lastErr error
	err := retry.Until(ctx, c.timeouts.PollInterval, func() (bool, error) {
		d, err := c.GetDroplet(ctx, id)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			// the wait itself expired; retry.Until reports it
			return false, nil
		case IsNotFound(err) || IsRateLimited(err):
			lastErr = err
			return false, nil
		default:
			return false, retry.Fatal(err)
		}
		if d.Status != statusActive || d.IPv4 == "" {
			return false, nil
		}
		ip = d.IPv4
		return true, nil
	})
	if err != nil {
		if lastErr != nil && !retry.IsFatal(err) {
			err = fmt.Errorf("%w (last poll: %v)", err, lastErr)
		}
		return "", fmt.Errorf("droplet %d has no public IPv4: %w", id, err)
	}
	return ip, nil
}

func toDroplet(d *godo.Droplet) *Droplet {
	out := &Droplet{ID: d.ID, Name: d.Name, Status: d.Status}
	// PublicIPv4 only fails when no networks have been assigned yet.
	if ip, err := d.PublicIPv4(); err == nil {
		out.IPv4 = ip
	}
	return out
}
