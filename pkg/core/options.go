// Copyright © 2023 One Concern

package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oneconcern/datasync/pkg/locker"
	"github.com/oneconcern/datasync/pkg/storage"
	"github.com/oneconcern/datasync/pkg/vcs"
)

const (
	defaultLockTimeout  = 5 * time.Minute
	defaultPushAttempts = 3
)

// StoreOpener resolves an object-store connection string into a store
type StoreOpener func(ctx context.Context, connection string) (storage.Store, error)

// Option tunes a Client
type Option func(*Client)

// Engine overrides the version-control engine (defaults to the git CLI)
func Engine(engine vcs.Engine) Option {
	return func(c *Client) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// Locks overrides the lock manager
func Locks(locks *locker.Manager) Option {
	return func(c *Client) {
		if locks != nil {
			c.locks = locks
		}
	}
}

// Logger sets a logger (defaults to a nop logger)
func Logger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// LockTimeout bounds the wait for the repository lock
func LockTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.lockTimeout = timeout
		}
	}
}

// PushAttempts bounds the publish retry loop on push conflicts
func PushAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.pushAttempts = attempts
		}
	}
}

// ObjectStores overrides the resolver for remote-object upload sources
func ObjectStores(opener StoreOpener) Option {
	return func(c *Client) {
		if opener != nil {
			c.openStore = opener
		}
	}
}

// MaxFileSize caps the size of any single materialized file (0: the
// storage package in-memory ceiling applies)
func MaxFileSize(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxFileSize = limit
		}
	}
}

// CommitTag prefixes generated commit messages with a task identity,
// e.g. the workflow run that produced the publish
func CommitTag(tag string) Option {
	return func(c *Client) {
		c.commitTag = tag
	}
}

// WithClock overrides the time source (used by tests)
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}
