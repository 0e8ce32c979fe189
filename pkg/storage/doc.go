// Copyright © 2023 One Concern

// Package storage provides an interface to handle backend storage objects.
//
// Object stores back the remote-object upload source: publishing a file
// whose content lives in a bucket rather than on the caller's filesystem.
//
// This package supports the following backends:
//   - GCS (Google)
//   - S3 (AWS)
//   - local file system
package storage
