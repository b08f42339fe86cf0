// Package keygen generates SSH key pairs.
//
// Private keys are produced in OpenSSH PEM format and public keys in
// authorized_keys format, ready to be stored under ~/.ssh and registered
// with DigitalOcean.
package keygen
