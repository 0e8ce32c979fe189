// Copyright © 2023 One Concern

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-units"

	"github.com/oneconcern/datasync/pkg/core"
	"github.com/oneconcern/datasync/pkg/dlogger"
	"github.com/oneconcern/datasync/pkg/model"
	"github.com/oneconcern/datasync/pkg/vcs"
)

func cacheRoot() (string, error) {
	if datasyncFlags.repo.CacheRoot != "" {
		return datasyncFlags.repo.CacheRoot, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datasync", "cache"), nil
}

// paramsToClient builds the sync client for the repository named by flags
func paramsToClient() (*core.Client, error) {
	if datasyncFlags.repo.Remote == "" {
		return nil, fmt.Errorf("a repository is required: use --repo or set 'repo' in the config file")
	}
	root, err := cacheRoot()
	if err != nil {
		return nil, err
	}
	handle, err := model.NewRepoHandle(datasyncFlags.repo.Remote, root)
	if err != nil {
		return nil, err
	}
	logger, err := dlogger.New(datasyncFlags.root.logLevel, dlogger.WithConsole())
	if err != nil {
		return nil, err
	}

	gitOpts := []vcs.GitOption{vcs.GitLogger(logger)}
	if datasyncFlags.repo.Branch != "" {
		gitOpts = append(gitOpts, vcs.GitBranch(datasyncFlags.repo.Branch))
	}

	opts := []core.Option{
		core.Engine(vcs.NewGit(gitOpts...)),
		core.Logger(logger),
		core.LockTimeout(datasyncFlags.root.lockTimeout),
		core.PushAttempts(datasyncFlags.update.PushAttempts),
		core.CommitTag(datasyncFlags.update.Tag),
	}
	if datasyncFlags.update.MaxFileSize != "" {
		limit, err := units.RAMInBytes(datasyncFlags.update.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("parse --max-file-size: %w", err)
		}
		opts = append(opts, core.MaxFileSize(limit))
	}
	return core.New(handle, opts...), nil
}
