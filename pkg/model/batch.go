// Copyright © 2023 One Concern

package model

import (
	"fmt"
	"path"
	"path/filepath"
	"time"
)

// BatchContext carries caller-supplied keys handed to a batch provider
// when the batch is late-bound.
type BatchContext map[string]interface{}

// BatchProvider produces a concrete list of upload sources at execution
// time, from the caller's context.
type BatchProvider func(ctx BatchContext) ([]UploadSource, error)

// PublishBatch is an ordered set of upload sources, either static or
// late-bound through a provider. Providers are evaluated exactly once,
// before any repository lock is taken.
type PublishBatch struct {
	static   []UploadSource
	provider BatchProvider
}

// StaticBatch builds a batch from a fixed list of sources
func StaticBatch(sources ...UploadSource) PublishBatch {
	return PublishBatch{static: sources}
}

// ProvidedBatch builds a batch whose sources are produced at execution time
func ProvidedBatch(provider BatchProvider) PublishBatch {
	return PublishBatch{provider: provider}
}

// Resolve evaluates the batch into a concrete, validated list of sources.
//
// Duplicate target paths within one batch take the last write: earlier
// sources for the same path are dropped, and the surviving source keeps
// the position of the first occurrence.
func (b PublishBatch) Resolve(bctx BatchContext) ([]UploadSource, error) {
	sources := b.static
	if b.provider != nil {
		var err error
		sources, err = b.provider(bctx)
		if err != nil {
			return nil, fmt.Errorf("batch provider: %w", err)
		}
	}
	resolved := make([]UploadSource, 0, len(sources))
	seen := make(map[string]int, len(sources))
	for _, src := range sources {
		if src == nil {
			return nil, fmt.Errorf("nil upload source in batch")
		}
		if err := ValidateTargetPath(src.TargetPath()); err != nil {
			return nil, err
		}
		// spellings of the same target ("a.txt", "./a.txt") dedupe to
		// one cleaned path
		key := path.Clean(filepath.ToSlash(src.TargetPath()))
		if at, ok := seen[key]; ok {
			resolved[at] = src
			continue
		}
		seen[key] = len(resolved)
		resolved = append(resolved, src)
	}
	return resolved, nil
}

// ChangeQuery asks whether every path was modified strictly after Since.
type ChangeQuery struct {
	Paths []string
	Since time.Time
}
