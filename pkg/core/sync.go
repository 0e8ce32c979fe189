// Copyright © 2023 One Concern

package core

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ensureSynced brings the cached working copy to the latest remote state.
//
// The caller must hold the repository lock. A missing working copy is
// cloned; an existing one is fetched and fast-forwarded, discarding
// whatever a previously crashed run left behind. A working copy too
// broken to sync is wiped and cloned from scratch.
func (c *Client) ensureSynced(ctx context.Context) error {
	dir := c.handle.LocalPath
	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		c.logger.Debug("cloning working copy",
			zap.String("remote", c.handle.Remote),
			zap.String("dir", dir))
		if err = os.RemoveAll(dir); err != nil {
			return err
		}
		return c.engine.Clone(ctx, c.handle.Remote, dir)
	}

	if err := c.engine.Sync(ctx, dir); err == nil {
		return nil
	} else if ctx.Err() != nil {
		return err
	}

	// last resort: the cached copy cannot be brought back to a clean
	// state, start over from the remote
	c.logger.Warn("working copy unusable, recloning",
		zap.String("remote", c.handle.Remote),
		zap.String("dir", dir))
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return c.engine.Clone(ctx, c.handle.Remote, dir)
}
