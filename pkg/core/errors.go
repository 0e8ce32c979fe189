// Copyright © 2023 One Concern

package core

import (
	"github.com/oneconcern/datasync/pkg/errors"
	"github.com/oneconcern/datasync/pkg/locker"
	"github.com/oneconcern/datasync/pkg/model"
)

var (
	// ErrLockTimeout signals contention on the repository lock past the
	// wait budget. Retryable by the caller.
	ErrLockTimeout = locker.ErrLockTimeout

	// ErrInvalidPath signals a repository path that is empty, absolute,
	// or escapes the repository root. Fatal to the operation.
	ErrInvalidPath = model.ErrInvalidPath

	// ErrPublishConflict signals a publish that lost the push race past
	// the retry budget. Retryable by the caller, preferably after a delay.
	ErrPublishConflict = errors.New("publish conflict: remote advanced past the retry budget")

	// ErrSourceUnavailable signals an upload source that could not
	// produce its bytes. Not retried internally.
	ErrSourceUnavailable = errors.New("upload source unavailable")

	// ErrPathNotFound signals a requested download path absent from the
	// repository. The whole download batch is aborted.
	ErrPathNotFound = errors.New("path not found in repository")

	// ErrSinkFailure signals a download consumer that failed while
	// handling delivered bytes. The whole download batch is aborted.
	ErrSinkFailure = errors.New("download sink failed")

	// ErrTimedOut signals a change wait that exceeded its deadline.
	// Fatal to the waiting task.
	ErrTimedOut = errors.New("timed out waiting for repository change")
)
