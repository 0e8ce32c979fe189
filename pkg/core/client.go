// Copyright © 2023 One Concern

package core

import (
	"time"

	"go.uber.org/zap"

	"github.com/oneconcern/datasync/pkg/locker"
	"github.com/oneconcern/datasync/pkg/model"
	"github.com/oneconcern/datasync/pkg/storage/connect"
	"github.com/oneconcern/datasync/pkg/vcs"
)

// Client exposes all datasync operations on one repository handle.
//
// A Client is cheap and carries no state beyond its configuration: the
// durable state lives in the remote repository and its cached working
// copy, both shared with every other client targeting the same remote.
type Client struct {
	handle model.RepoHandle

	engine       vcs.Engine
	locks        *locker.Manager
	logger       *zap.Logger
	openStore    StoreOpener
	lockTimeout  time.Duration
	pushAttempts int
	maxFileSize  int64
	commitTag    string
	clock        func() time.Time
}

// New builds a client for a repository handle
func New(handle model.RepoHandle, opts ...Option) *Client {
	c := &Client{
		handle:       handle,
		engine:       vcs.NewGit(),
		locks:        locker.New(),
		logger:       zap.NewNop(),
		openStore:    connect.Open,
		lockTimeout:  defaultLockTimeout,
		pushAttempts: defaultPushAttempts,
		clock:        time.Now,
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// Handle yields the repository handle this client operates on
func (c *Client) Handle() model.RepoHandle {
	return c.handle
}
