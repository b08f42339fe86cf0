// Package ssh connects to a freshly created droplet to copy files and run
// commands.
//
// Connections are established on demand per call, retrying while sshd comes
// up after boot. Files are transferred over SFTP.
//
// Security: host key verification is disabled by default because the droplet
// is new and its host key is unknown. Set HostKeyCallback to verify it.
package ssh
