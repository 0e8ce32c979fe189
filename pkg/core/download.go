// Copyright © 2023 One Concern

package core

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/oneconcern/datasync/pkg/model"
)

// DownloadOption tunes one fetch
type DownloadOption func(*downloadSettings)

type downloadSettings struct {
	emptyFallback bool
}

// WithEmptyFallback delivers empty content for paths absent from the
// repository instead of failing the batch
func WithEmptyFallback() DownloadOption {
	return func(s *downloadSettings) {
		s.emptyFallback = true
	}
}

// Download fetches published content and hands it to the given sinks.
//
// The requested paths are materialized through a sparse checkout, so the
// I/O cost is bounded by the batch, not the repository size. A path
// absent from the repository aborts the whole batch with ErrPathNotFound
// (consistent with Update's all-or-nothing contract), unless
// WithEmptyFallback is set. A failing consumer aborts the batch with
// ErrSinkFailure.
func (c *Client) Download(ctx context.Context, sinks []model.DownloadSink, opts ...DownloadOption) (*model.DownloadResult, error) {
	var settings downloadSettings
	for _, apply := range opts {
		apply(&settings)
	}

	start := c.clock()
	result := &model.DownloadResult{Repo: c.handle.Remote}
	if len(sinks) == 0 {
		result.Duration = c.clock().Sub(start)
		return result, nil
	}

	paths := make([]string, 0, len(sinks))
	for _, sink := range sinks {
		if err := model.ValidateTargetPath(sink.SourcePath()); err != nil {
			return nil, err
		}
		paths = append(paths, path.Clean(sink.SourcePath()))
	}

	// checkout mutates the shared working copy, so a fetch serializes
	// through the same lock as publishes
	token, err := c.locks.Acquire(ctx, c.handle.LocalPath, c.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.locks.Release(token) }()

	if err = c.ensureSynced(ctx); err != nil {
		return nil, err
	}
	if err = c.engine.Checkout(ctx, c.handle.LocalPath, paths); err != nil {
		return nil, err
	}

	for i, sink := range sinks {
		data, err := c.readWorkingCopy(paths[i])
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if !settings.emptyFallback {
				return nil, ErrPathNotFound.WrapMessage("%q in %q", paths[i], c.handle.Remote)
			}
			data = []byte{}
		}
		if err = c.deliver(sink, data); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, paths[i])
		result.Sizes = append(result.Sizes, int64(len(data)))
	}

	c.logger.Info("downloaded",
		zap.String("repo", c.handle.Remote),
		zap.Strings("files", result.Files))
	result.Duration = c.clock().Sub(start)
	return result, nil
}

// Get fetches a single file and returns its content
func (c *Client) Get(ctx context.Context, filePath string, opts ...DownloadOption) ([]byte, error) {
	var data []byte
	sink := model.FuncSink{
		Path: filePath,
		Consumer: func(fetched []byte) error {
			data = fetched
			return nil
		},
	}
	if _, err := c.Download(ctx, []model.DownloadSink{sink}, opts...); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) readWorkingCopy(repoPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(c.handle.LocalPath, filepath.FromSlash(repoPath)))
}
