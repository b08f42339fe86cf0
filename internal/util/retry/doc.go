// Package retry waits out transient conditions.
//
// [WithExponentialBackoff] re-runs an operation with growing delays until it
// succeeds, returns a [Fatal] error or runs out of attempts. [Until] polls a
// readiness condition at a fixed interval until it reports done or the
// context expires. Neither is used to re-issue failed provider requests;
// they cover waiting for a droplet address and for sshd to accept
// connections.
package retry
