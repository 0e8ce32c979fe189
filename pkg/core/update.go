// Copyright © 2023 One Concern

package core

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/oneconcern/datasync/pkg/errors"
	"github.com/oneconcern/datasync/pkg/model"
	"github.com/oneconcern/datasync/pkg/vcs"
)

// UpdateOption tunes one publish
type UpdateOption func(*updateSettings)

type updateSettings struct {
	batchContext  model.BatchContext
	commitMessage string
	messageExtra  string
}

// WithBatchContext passes caller-supplied keys to a late-bound batch provider
func WithBatchContext(bctx model.BatchContext) UpdateOption {
	return func(s *updateSettings) {
		s.batchContext = bctx
	}
}

// WithCommitMessage overrides the generated commit message
func WithCommitMessage(message string) UpdateOption {
	return func(s *updateSettings) {
		s.commitMessage = message
	}
}

// WithCommitMessageExtra appends an extra line to the commit message
func WithCommitMessageExtra(extra string) UpdateOption {
	return func(s *updateSettings) {
		s.messageExtra = extra
	}
}

// Update publishes a batch of files into the shared repository as one
// atomic commit, and returns the resulting commit reference.
//
// A late-bound batch provider is evaluated exactly once, before the
// repository lock is taken. Under the lock, every source is materialized
// in order into a freshly synced working copy, overwriting previous
// content, then staged, committed and pushed. A batch whose content
// matches the committed state produces no commit. When the push loses
// against a concurrent writer, the whole attempt is replayed on top of
// the new remote state, up to the configured attempt budget, then fails
// with ErrPublishConflict. Deferred producers are re-invoked on every
// attempt.
func (c *Client) Update(ctx context.Context, batch model.PublishBatch, opts ...UpdateOption) (*model.UpdateResult, error) {
	var settings updateSettings
	for _, apply := range opts {
		apply(&settings)
	}

	start := c.clock()
	sources, err := batch.Resolve(settings.batchContext)
	if err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(sources))
	for _, src := range sources {
		targets = append(targets, path.Clean(src.TargetPath()))
	}

	result := &model.UpdateResult{
		Repo:           c.handle.Remote,
		FilesRequested: targets,
	}
	if len(sources) == 0 {
		result.NoOp = true
		result.Duration = c.clock().Sub(start)
		return result, nil
	}

	token, err := c.locks.Acquire(ctx, c.handle.LocalPath, c.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.locks.Release(token) }()

	message := settings.commitMessage
	if message == "" {
		message = c.commitMessage(targets)
	}
	if settings.messageExtra != "" {
		message = message + "\n" + settings.messageExtra
	}

	var lastPushErr error
	for attempt := 1; attempt <= c.pushAttempts; attempt++ {
		if err = c.ensureSynced(ctx); err != nil {
			return nil, err
		}
		if err = c.applySources(ctx, sources); err != nil {
			return nil, err
		}
		if err = c.engine.Stage(ctx, c.handle.LocalPath, targets); err != nil {
			return nil, err
		}
		changed, err := c.engine.HasStagedChanges(ctx, c.handle.LocalPath)
		if err != nil {
			return nil, err
		}
		if !changed {
			// content already committed: skip the no-op commit
			head, err := c.engine.Head(ctx, c.handle.LocalPath)
			if err != nil {
				return nil, err
			}
			c.logger.Info("publish is a no-op, content unchanged",
				zap.String("repo", c.handle.Remote),
				zap.Strings("files", targets))
			result.NoOp = true
			result.CommitRef = head
			result.Duration = c.clock().Sub(start)
			return result, nil
		}

		ref, err := c.engine.Commit(ctx, c.handle.LocalPath, message)
		if err != nil {
			return nil, err
		}
		err = c.engine.Push(ctx, c.handle.LocalPath)
		if err == nil {
			c.logger.Info("published",
				zap.String("repo", c.handle.Remote),
				zap.String("commit", ref),
				zap.Strings("files", targets),
				zap.Int("attempt", attempt))
			result.CommitRef = ref
			result.CommitMessage = message
			result.FilesUpdated = targets
			result.CommittedAt = c.clock()
			result.Duration = c.clock().Sub(start)
			return result, nil
		}
		if !errors.Is(err, vcs.ErrRejected) {
			return nil, err
		}
		lastPushErr = err
		c.logger.Warn("push rejected, replaying publish on new remote state",
			zap.String("repo", c.handle.Remote),
			zap.Int("attempt", attempt),
			zap.Int("budget", c.pushAttempts))
	}
	return nil, ErrPublishConflict.WrapMessage("%d attempts on %q", c.pushAttempts, c.handle.Remote).Wrap(lastPushErr)
}

// applySources materializes every source of the batch into the working
// copy. Any single failure aborts the batch before anything is staged.
func (c *Client) applySources(ctx context.Context, sources []model.UploadSource) error {
	for _, src := range sources {
		rdr, err := c.materialize(ctx, src)
		if err != nil {
			return err
		}
		_, err = c.writeToWorkingCopy(src.TargetPath(), rdr)
		closeErr := rdr.Close()
		if err != nil {
			// not a source failure: the bytes were produced, the working
			// copy could not take them
			return fmt.Errorf("writing %q into working copy: %w", src.TargetPath(), err)
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}

func (c *Client) commitMessage(targets []string) string {
	names := make([]string, 0, len(targets))
	for _, target := range targets {
		names = append(names, path.Base(target))
	}
	message := fmt.Sprintf("datasync: updated files: %s", strings.Join(names, ", "))
	if c.commitTag != "" {
		message = fmt.Sprintf("[%s] %s", c.commitTag, message)
	}
	return message
}
