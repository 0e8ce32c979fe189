// Copyright © 2023 One Concern

package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datasync/pkg/model"
)

func TestWorkingCopyClonedOnce(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("1")})
	ctx := context.Background()

	_, err := env.client.Get(ctx, "a.txt")
	require.NoError(t, err)
	_, err = env.client.Get(ctx, "a.txt")
	require.NoError(t, err)

	assert.Equal(t, 1, env.engine.cloneCalls)
	assert.Equal(t, 1, env.engine.syncCalls)
}

func TestWorkingCopyReclonedWhenMissing(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("1")})
	ctx := context.Background()

	_, err := env.client.Get(ctx, "a.txt")
	require.NoError(t, err)

	// a crashed run wiped the metadata dir out from under the cache
	require.NoError(t, os.RemoveAll(filepath.Join(env.handle.LocalPath, ".git")))

	data, err := env.client.Get(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), data)
	assert.Equal(t, 2, env.engine.cloneCalls)
}

func TestWorkingCopyRecloneOnBrokenSync(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("1")})
	ctx := context.Background()

	_, err := env.client.Get(ctx, "a.txt")
	require.NoError(t, err)

	// make the engine forget the working copy while the cache dir still
	// holds a .git: sync fails and the client starts over
	env.engine.mu.Lock()
	delete(env.engine.dirs, env.handle.LocalPath)
	env.engine.mu.Unlock()

	data, err := env.client.Get(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), data)
	assert.Equal(t, 2, env.engine.cloneCalls)
}

func TestStaleWorkingCopyDiscardedOnSync(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("v1")})
	ctx := context.Background()

	_, err := env.client.Get(ctx, "a.txt")
	require.NoError(t, err)

	// leftover junk from an interrupted publish
	junk := filepath.Join(env.handle.LocalPath, "half-written.tmp")
	require.NoError(t, os.WriteFile(junk, []byte("junk"), 0600))

	_, err = env.client.Update(ctx, model.StaticBatch(
		model.LiteralSource{Path: "b.txt", Data: []byte("new")},
	))
	require.NoError(t, err)

	_, err = os.Stat(junk)
	assert.True(t, os.IsNotExist(err))
}
