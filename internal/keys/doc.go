// Package keys resolves the single account SSH key a droplet is created with.
//
// A Source reads the local key pair from ~/.ssh. A Reconciler compares the
// local public key with the keys already registered on the account and either
// returns the fingerprint of a match or registers the key once. An account
// that holds keys none of which match is reported as an error rather than
// being given a duplicate.
package keys
