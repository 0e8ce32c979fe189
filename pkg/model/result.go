// Copyright © 2023 One Concern

package model

import "time"

// UpdateResult reports the outcome of one publish.
type UpdateResult struct {
	Repo           string        `json:"repo" yaml:"repo"`
	CommitRef      string        `json:"commit_ref,omitempty" yaml:"commit_ref,omitempty"`
	CommitMessage  string        `json:"commit_message,omitempty" yaml:"commit_message,omitempty"`
	FilesRequested []string      `json:"files_requested" yaml:"files_requested"`
	FilesUpdated   []string      `json:"files_updated" yaml:"files_updated"`
	CommittedAt    time.Time     `json:"committed_at,omitempty" yaml:"committed_at,omitempty"`
	Duration       time.Duration `json:"duration" yaml:"duration"`

	// NoOp is set when the batch content matched the committed state
	// and no commit was produced
	NoOp bool `json:"no_op,omitempty" yaml:"no_op,omitempty"`
}

// DownloadResult reports the outcome of one fetch.
type DownloadResult struct {
	Repo     string        `json:"repo" yaml:"repo"`
	Files    []string      `json:"files" yaml:"files"`
	Sizes    []int64       `json:"sizes" yaml:"sizes"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Entry describes a repository entry found when browsing, without
// materializing its content.
type Entry struct {
	Path  string `json:"path" yaml:"path"`
	Name  string `json:"name" yaml:"name"`
	IsDir bool   `json:"is_dir" yaml:"is_dir"`
}
