// Copyright © 2023 One Concern

// Package vcs drives the external version-control engine that backs the
// shared data repository.
//
// The engine is trusted: datasync does not reimplement version control,
// it sequences well-defined calls (clone, fetch, add, commit, push,
// sparse checkout, log) against a working copy. The default engine shells
// out to the git command line.
package vcs

import (
	"context"
	"time"

	"github.com/oneconcern/datasync/pkg/errors"
	"github.com/oneconcern/datasync/pkg/model"
)

// ErrRejected signals a push that lost a race against a concurrent
// writer: the remote advanced since the last sync.
var ErrRejected = errors.New("push rejected: remote advanced concurrently")

// Engine is the command surface datasync needs from the version-control
// backend. Every mutating call assumes the caller serialized access to
// dir through the lock manager.
type Engine interface {
	// Clone initializes a working copy of remote at dir, without
	// materializing file content beyond the minimum
	Clone(ctx context.Context, remote, dir string) error

	// Sync fast-forwards dir to the latest remote state, discarding any
	// partially applied local changes left by a crashed run
	Sync(ctx context.Context, dir string) error

	// Checkout materializes only the requested paths into the working
	// copy (sparse checkout semantics)
	Checkout(ctx context.Context, dir string, paths []string) error

	// Stage adds exactly the given paths to the pending commit
	Stage(ctx context.Context, dir string, paths []string) error

	// HasStagedChanges reports whether staged content differs from the
	// committed state
	HasStagedChanges(ctx context.Context, dir string) (bool, error)

	// Commit records staged changes and yields the commit reference
	Commit(ctx context.Context, dir, message string) (string, error)

	// Push publishes local commits. A push that lost against a
	// concurrent writer fails with ErrRejected.
	Push(ctx context.Context, dir string) error

	// Head yields the current commit reference
	Head(ctx context.Context, dir string) (string, error)

	// HasPath reports whether path exists in the committed tree
	HasPath(ctx context.Context, dir, path string) (bool, error)

	// LastModified yields the instant of the most recent commit touching
	// path; found is false when no commit ever touched it
	LastModified(ctx context.Context, dir, path string) (t time.Time, found bool, err error)

	// ListTree enumerates the committed entries under subdir ("." for
	// the repository root), without materializing content
	ListTree(ctx context.Context, dir, subdir string) ([]model.Entry, error)
}
