// Package provisioning sequences the creation of a droplet as an explicit
// dependency graph of named steps.
//
// # Core Types
//
// Step declares a name, the steps it depends on and the work it does.
// Pipeline validates the graph and runs the steps one at a time in a
// deterministic topological order; the first failure stops the run.
// Context carries configuration, collaborators, the observer and metrics.
// State accumulates what each step produced (the key handle, rendered
// cloud-config, droplet address) and yields the run Outputs.
//
// # Variants
//
// In cloud-init mode the rendered document is handed to the droplet as user
// data. In bootstrap mode a local script is uploaded over SSH once the
// droplet has an address and then run with sudo.
package provisioning
