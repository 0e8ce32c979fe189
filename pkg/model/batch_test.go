// Copyright © 2023 One Concern

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticBatchResolve(t *testing.T) {
	batch := StaticBatch(
		LiteralSource{Path: "a.txt", Data: []byte("hello")},
		FileSource{Path: "b.txt", SourcePath: "/tmp/b.txt"},
	)
	sources, err := batch.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a.txt", sources[0].TargetPath())
	assert.Equal(t, "b.txt", sources[1].TargetPath())
}

func TestProvidedBatchResolve(t *testing.T) {
	batch := ProvidedBatch(func(ctx BatchContext) ([]UploadSource, error) {
		return []UploadSource{
			LiteralSource{Path: "b.txt", Data: []byte(ctx["x"].(string))},
		}, nil
	})
	sources, err := batch.Resolve(BatchContext{"x": "v"})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, []byte("v"), sources[0].(LiteralSource).Data)
}

func TestBatchDuplicateTargetsLastWins(t *testing.T) {
	batch := StaticBatch(
		LiteralSource{Path: "a.txt", Data: []byte("first")},
		LiteralSource{Path: "b.txt", Data: []byte("keep")},
		LiteralSource{Path: "a.txt", Data: []byte("last")},
	)
	sources, err := batch.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	// last write wins and keeps the original position
	assert.Equal(t, "a.txt", sources[0].TargetPath())
	assert.Equal(t, []byte("last"), sources[0].(LiteralSource).Data)
	assert.Equal(t, "b.txt", sources[1].TargetPath())
}

func TestBatchDuplicateTargetsDedupeOnCleanedPath(t *testing.T) {
	batch := StaticBatch(
		LiteralSource{Path: "a.txt", Data: []byte("first")},
		LiteralSource{Path: "./a.txt", Data: []byte("second")},
		LiteralSource{Path: "dir/../a.txt", Data: []byte("last")},
	)
	sources, err := batch.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, []byte("last"), sources[0].(LiteralSource).Data)
}

func TestBatchRejectsBadPaths(t *testing.T) {
	_, err := StaticBatch(LiteralSource{Path: "../escape", Data: nil}).Resolve(nil)
	assert.Error(t, err)

	_, err = StaticBatch(LiteralSource{Path: "/abs", Data: nil}).Resolve(nil)
	assert.Error(t, err)

	_, err = PublishBatch{static: []UploadSource{nil}}.Resolve(nil)
	assert.Error(t, err)
}

func TestProvidedBatchError(t *testing.T) {
	batch := ProvidedBatch(func(BatchContext) ([]UploadSource, error) {
		return nil, assert.AnError
	})
	_, err := batch.Resolve(nil)
	assert.ErrorIs(t, err, assert.AnError)
}
