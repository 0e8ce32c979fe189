// Copyright © 2023 One Concern

package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oneconcern/datasync/pkg/model"
)

// DefaultPollBackoff paces repeated polls in WaitForChange
const DefaultPollBackoff = 5 * time.Second

// Poll reports whether every queried path was modified strictly after
// the reference instant.
//
// Satisfied (true) means each path's last-modification instant — the
// time of the most recent commit touching it — is after query.Since. A
// path never committed reports NotYet.
//
// Poll is a pure function of the handle and the query: it keeps no
// state between calls, so an external scheduler may call it repeatedly
// under a yield-and-reschedule discipline, persisting only the query.
// The repository lock is held just long enough to fetch safely, and is
// released before metadata is read.
func (c *Client) Poll(ctx context.Context, query model.ChangeQuery) (bool, error) {
	if len(query.Paths) == 0 {
		return false, fmt.Errorf("change query without paths")
	}
	for _, p := range query.Paths {
		if err := model.ValidateTargetPath(p); err != nil {
			return false, err
		}
	}

	token, err := c.locks.Acquire(ctx, c.handle.LocalPath, c.lockTimeout)
	if err != nil {
		return false, err
	}
	if err = c.ensureSynced(ctx); err != nil {
		_ = c.locks.Release(token)
		return false, err
	}
	_ = c.locks.Release(token)

	for _, p := range query.Paths {
		modifiedAt, found, err := c.engine.LastModified(ctx, c.handle.LocalPath, p)
		if err != nil {
			return false, err
		}
		if !found || !modifiedAt.After(query.Since) {
			c.logger.Debug("poll not yet satisfied",
				zap.String("repo", c.handle.Remote),
				zap.String("path", p),
				zap.Bool("found", found),
				zap.Time("modified_at", modifiedAt),
				zap.Time("since", query.Since))
			return false, nil
		}
	}
	return true, nil
}

// WaitForChange blocks until Poll is satisfied, polling with the given
// backoff, and fails with ErrTimedOut once the deadline passes.
//
// This is a convenience for callers that can afford to hold a worker;
// schedulers that cannot should drive Poll directly.
func (c *Client) WaitForChange(ctx context.Context, query model.ChangeQuery, timeout, backoff time.Duration) error {
	if backoff <= 0 {
		backoff = DefaultPollBackoff
	}
	deadline := c.clock().Add(timeout)
	for {
		satisfied, err := c.Poll(ctx, query)
		if err != nil {
			return err
		}
		if satisfied {
			return nil
		}
		if !c.clock().Before(deadline) {
			return ErrTimedOut.WrapMessage("paths %v in %q after %v", query.Paths, c.handle.Remote, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}
