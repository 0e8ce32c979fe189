// Copyright © 2023 One Concern

package core

import (
	"context"
	"path"

	"github.com/oneconcern/datasync/pkg/model"
)

// Exists reports whether a path is committed in the repository, without
// materializing its content.
func (c *Client) Exists(ctx context.Context, filePath string) (bool, error) {
	if err := model.ValidateTargetPath(filePath); err != nil {
		return false, err
	}
	if err := c.refresh(ctx); err != nil {
		return false, err
	}
	return c.engine.HasPath(ctx, c.handle.LocalPath, path.Clean(filePath))
}

// ListEntries enumerates the committed entries under dir ("." for the
// repository root), without materializing content.
func (c *Client) ListEntries(ctx context.Context, dir string) ([]model.Entry, error) {
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	return c.engine.ListTree(ctx, c.handle.LocalPath, dir)
}

// refresh syncs the working copy under the lock, then releases it:
// committed-tree reads do not touch checked out files
func (c *Client) refresh(ctx context.Context) error {
	token, err := c.locks.Acquire(ctx, c.handle.LocalPath, c.lockTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = c.locks.Release(token) }()
	return c.ensureSynced(ctx)
}
