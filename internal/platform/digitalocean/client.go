package digitalocean

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/digitalocean/godo"
	"golang.org/x/oauth2"

	"github.com/imamik/dropkit/internal/config"
	"github.com/imamik/dropkit/internal/keys"
)

// DropletCreateOpts holds all parameters for creating a droplet.
type DropletCreateOpts struct {
	Name    string
	Region  string
	Size    string
	Image   string
	SSHKeys []string // fingerprints
	Tags    []string
	// UserData is passed verbatim, typically a rendered cloud-config.
	UserData string
}

// Droplet is the subset of droplet attributes a run reports.
type Droplet struct {
	ID     int
	Name   string
	Status string
	IPv4   string
}

// DropletManager defines the interface for managing droplets.
type DropletManager interface {
	CreateDroplet(ctx context.Context, opts DropletCreateOpts) (*Droplet, error)
	GetDroplet(ctx context.Context, id int) (*Droplet, error)
	// WaitForIPv4 polls until the droplet is active with a public IPv4
	// address and returns it.
	WaitForIPv4(ctx context.Context, id int) (string, error)
}

// Client combines all interfaces used by a run.
type Client interface {
	keys.Store
	DropletManager
}

// RealClient implements Client using the DigitalOcean API.
type RealClient struct {
	client   *godo.Client
	timeouts *config.Timeouts
	perPage  int

	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithBaseURL points the client at another API endpoint (tests use an
// httptest server).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *RealClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client whose transport carries the
// authenticated requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// WithPageSize sets how many keys are requested per page.
func WithPageSize(n int) ClientOption {
	return func(c *RealClient) {
		c.perPage = n
	}
}

// NewRealClient creates a RealClient authenticated with token.
func NewRealClient(token string, opts ...ClientOption) (*RealClient, error) {
	c := &RealClient{
		timeouts: config.LoadTimeouts(),
		perPage:  200,
	}
	for _, opt := range opts {
		opt(c)
	}

	gc, err := NewGodoClient(token, c.baseURL, c.httpClient)
	if err != nil {
		return nil, err
	}
	c.client = gc
	return c, nil
}

// NewGodoClient returns a godo client that sends token as a bearer token
// over base's transport. An empty baseURL keeps the public API endpoint and
// a nil base uses http.DefaultClient.
//
// Unlike godo.NewFromToken it does not enable godo's request retries:
// failed provider requests are reported, not repeated.
func NewGodoClient(token, baseURL string, base *http.Client) (*godo.Client, error) {
	token = strings.Trim(strings.TrimSpace(token), "'")
	if token == "" {
		return nil, errors.New("DigitalOcean API token is empty")
	}

	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	opts := []godo.ClientOpt{godo.SetUserAgent("dropkit")}
	if baseURL != "" {
		opts = append(opts, godo.SetBaseURL(baseURL))
	}
	gc, err := godo.New(httpClient, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create godo client: %w", err)
	}
	return gc, nil
}

// GodoClient returns the underlying godo.Client for API features not exposed
// through RealClient.
func (c *RealClient) GodoClient() *godo.Client {
	return c.client
}
