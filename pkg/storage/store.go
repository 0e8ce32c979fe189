// Copyright © 2023 One Concern

package storage

import (
	"context"
	"io"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	ErrNotFound     errString = "not found"
	ErrForbidden    errString = "forbidden"
	ErrNotSupported errString = "not supported"
	ErrObjectTooBig errString = "object too big to be read into memory"
)

// MaxObjectSizeInMemory caps objects read fully into memory.
const MaxObjectSizeInMemory = 2 * 1024 * 1024 * 1024 // 2 gigs

// Store implementations know how to read and write objects addressed by a key.
//
// Typically this is something file system-like. Examples are GCS, S3, local FS.
// Implementations of this interface are assumed to be fairly simple.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
}

// ReadAllLimited reads an object fully into memory, failing with
// ErrObjectTooBig past the limit instead of exhausting memory.
func ReadAllLimited(ctx context.Context, store Store, key string, limit int64) ([]byte, error) {
	if limit <= 0 || limit > MaxObjectSizeInMemory {
		limit = MaxObjectSizeInMemory
	}
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	data, err := io.ReadAll(io.LimitReader(rdr, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrObjectTooBig
	}
	return data, nil
}

// PipeIO copies a reader out to a writer
func PipeIO(writer io.Writer, reader io.Reader) (n int64, err error) {
	return io.Copy(writer, reader)
}
