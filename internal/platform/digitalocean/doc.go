// Package digitalocean wraps the godo client with the handful of DigitalOcean
// API calls a run needs.
//
// # Architecture
//
//   - client.go: interfaces, RealClient construction and options
//   - ssh_key.go: account key listing (all pages) and registration
//   - droplet.go: droplet creation and waiting for a public address
//   - errors.go: RequestError and status classification
//   - mock_client.go: function-field mock for tests
//
// # Error Handling
//
// Every failed API call is returned as a *RequestError carrying the
// operation and HTTP status, wrapping the godo error unmodified. Failed
// requests are never re-issued. Only waiting for a droplet's address polls,
// bounded by config.Timeouts.
package digitalocean
