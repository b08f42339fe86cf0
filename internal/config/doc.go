// Package config defines the droplet configuration read from dropkit.yaml.
//
// A [Config] is loaded once per run, defaulted, validated and then passed
// explicitly to every component that needs it. Nothing in the module reads
// configuration from ambient state after that point; environment variables
// are only consulted by [LoadTimeouts] and [LoadCredentials] at startup.
package config
