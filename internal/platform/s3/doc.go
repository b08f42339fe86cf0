// Package s3 stores run records in DigitalOcean Spaces through its
// S3-compatible API.
package s3
