// Copyright © 2023 One Concern

package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

type flagsT struct {
	repo struct {
		Remote    string
		Branch    string
		CacheRoot string
	}
	update struct {
		SpecFile     string
		Message      string
		MessageExtra string
		Tag          string
		MaxFileSize  string
		PushAttempts int
	}
	download struct {
		DestDir      string
		AllowMissing bool
	}
	poll struct {
		Since   string
		Timeout time.Duration
		Backoff time.Duration
	}
	root struct {
		logLevel    string
		lockTimeout time.Duration
	}
}

var datasyncFlags = flagsT{}

func addRepoFlag(cmd *cobra.Command) string {
	repo := "repo"
	cmd.PersistentFlags().StringVar(&datasyncFlags.repo.Remote, repo, "",
		"The URL of the shared repository, e.g. https://git.example.com/acme/datasets.git")
	return repo
}

func addBranchFlag(cmd *cobra.Command) string {
	branch := "branch"
	cmd.PersistentFlags().StringVar(&datasyncFlags.repo.Branch, branch, "",
		"The branch to synchronize with. Defaults to the remote default branch")
	return branch
}

func addCacheRootFlag(cmd *cobra.Command) string {
	cacheRoot := "cache-root"
	cmd.PersistentFlags().StringVar(&datasyncFlags.repo.CacheRoot, cacheRoot, "",
		"The directory holding cached working copies. Defaults to $HOME/.datasync/cache")
	return cacheRoot
}

func addBatchSpecFlag(cmd *cobra.Command) string {
	files := "files"
	cmd.Flags().StringVar(&datasyncFlags.update.SpecFile, files, "",
		"Path to a YAML file listing the files to publish (see 'datasync update --help' for the format)")
	return files
}

func addCommitMessageFlag(cmd *cobra.Command) string {
	message := "message"
	cmd.Flags().StringVar(&datasyncFlags.update.Message, message, "",
		"The commit message. Defaults to a generated message naming the published files")
	return message
}

func addCommitMessageExtraFlag(cmd *cobra.Command) string {
	extra := "message-extra"
	cmd.Flags().StringVar(&datasyncFlags.update.MessageExtra, extra, "",
		"An extra line appended to the commit message")
	return extra
}

func addCommitTagFlag(cmd *cobra.Command) string {
	tag := "tag"
	cmd.Flags().StringVar(&datasyncFlags.update.Tag, tag, "",
		"A task identity prefixed to generated commit messages, e.g. a workflow run id")
	return tag
}

func addMaxFileSizeFlag(cmd *cobra.Command) string {
	maxSize := "max-file-size"
	cmd.Flags().StringVar(&datasyncFlags.update.MaxFileSize, maxSize, "",
		"The maximum size of any single published file, e.g. 512MB")
	return maxSize
}

func addPushAttemptsFlag(cmd *cobra.Command) string {
	attempts := "push-attempts"
	cmd.Flags().IntVar(&datasyncFlags.update.PushAttempts, attempts, 0,
		"How many times a publish losing the push race is replayed before giving up")
	return attempts
}

func addDestDirFlag(cmd *cobra.Command) string {
	destination := "destination"
	cmd.Flags().StringVar(&datasyncFlags.download.DestDir, destination, ".",
		"The directory downloaded files are written to, keeping their repository layout")
	return destination
}

func addAllowMissingFlag(cmd *cobra.Command) string {
	allowMissing := "allow-missing"
	cmd.Flags().BoolVar(&datasyncFlags.download.AllowMissing, allowMissing, false,
		"Deliver empty content for paths absent from the repository instead of failing")
	return allowMissing
}

func addSinceFlag(cmd *cobra.Command) string {
	since := "since"
	cmd.Flags().StringVar(&datasyncFlags.poll.Since, since, "",
		"The reference instant (RFC3339): satisfied when every path changed strictly after it")
	return since
}

func addTimeoutFlag(cmd *cobra.Command) string {
	timeout := "timeout"
	cmd.Flags().DurationVar(&datasyncFlags.poll.Timeout, timeout, 0,
		"Block until the query is satisfied, up to this duration. 0 polls exactly once")
	return timeout
}

func addBackoffFlag(cmd *cobra.Command) string {
	backoff := "backoff"
	cmd.Flags().DurationVar(&datasyncFlags.poll.Backoff, backoff, 0,
		"The pause between polls while blocking. Defaults to 5s")
	return backoff
}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "loglevel"
	cmd.PersistentFlags().StringVar(&datasyncFlags.root.logLevel, logLevel, "info",
		"The logging level (debug, info, none)")
	return logLevel
}

func addLockTimeoutFlag(cmd *cobra.Command) string {
	lockTimeout := "lock-timeout"
	cmd.PersistentFlags().DurationVar(&datasyncFlags.root.lockTimeout, lockTimeout, 0,
		"How long to wait for the repository lock before giving up. Defaults to 5m")
	return lockTimeout
}
