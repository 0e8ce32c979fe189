// Copyright © 2023 One Concern

package model

// UploadSource describes one file to publish into the shared repository.
//
// This is a closed set of variants: resolution happens as a single dispatch
// over the concrete type (see core), not through behavior on the variant.
type UploadSource interface {
	// TargetPath yields the repository-relative path the content lands at
	TargetPath() string

	uploadSource()
}

// LiteralSource carries inline bytes
type LiteralSource struct {
	Path string
	Data []byte
}

// FileSource reads a file from the caller's filesystem at publish time
type FileSource struct {
	Path string

	// SourcePath locates the file on the local filesystem
	SourcePath string
}

// DeferredSource invokes a producer for its bytes at the moment they are
// needed, once per publish attempt. A retried publish re-invokes the
// producer: callers with non-idempotent producers must not allow retries.
type DeferredSource struct {
	Path     string
	Producer func() ([]byte, error)
}

// ObjectSource pulls bytes from an external object store
type ObjectSource struct {
	Path string

	// Connection names a configured object-store connection, e.g.
	// "gcs://my-bucket" or "s3://my-bucket"
	Connection string

	// Key addresses the object within the connection's bucket
	Key string
}

func (s LiteralSource) TargetPath() string  { return s.Path }
func (s FileSource) TargetPath() string     { return s.Path }
func (s DeferredSource) TargetPath() string { return s.Path }
func (s ObjectSource) TargetPath() string   { return s.Path }

func (LiteralSource) uploadSource()  {}
func (FileSource) uploadSource()     {}
func (DeferredSource) uploadSource() {}
func (ObjectSource) uploadSource()   {}
