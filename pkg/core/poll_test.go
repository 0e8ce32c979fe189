// Copyright © 2023 One Concern

package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datasync/pkg/model"
)

func TestPollSatisfiedAfterCommit(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"data/feed.csv": []byte("v1")})
	ctx := context.Background()

	since := env.clock.Now()
	query := model.ChangeQuery{Paths: []string{"data/feed.csv"}, Since: since}

	// the last commit touching the path is not strictly after since
	satisfied, err := env.client.Poll(ctx, query)
	require.NoError(t, err)
	assert.False(t, satisfied)

	env.clock.advance(time.Minute)
	_, err = env.client.Update(ctx, model.StaticBatch(
		model.LiteralSource{Path: "data/feed.csv", Data: []byte("v2")},
	))
	require.NoError(t, err)

	satisfied, err = env.client.Poll(ctx, query)
	require.NoError(t, err)
	assert.True(t, satisfied)

	// once satisfied, the same query stays satisfied
	satisfied, err = env.client.Poll(ctx, query)
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestPollUncommittedPath(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("1")})
	ctx := context.Background()

	satisfied, err := env.client.Poll(ctx, model.ChangeQuery{
		Paths: []string{"never-published.txt"},
		Since: time.Time{},
	})
	require.NoError(t, err)
	assert.False(t, satisfied)
}

func TestPollAllPathsMustChange(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{
		"a.txt": []byte("1"),
		"b.txt": []byte("1"),
	})
	ctx := context.Background()

	since := env.clock.Now()
	query := model.ChangeQuery{Paths: []string{"a.txt", "b.txt"}, Since: since}

	env.clock.advance(time.Minute)
	_, err := env.client.Update(ctx, model.StaticBatch(
		model.LiteralSource{Path: "a.txt", Data: []byte("2")},
	))
	require.NoError(t, err)

	satisfied, err := env.client.Poll(ctx, query)
	require.NoError(t, err)
	assert.False(t, satisfied)

	env.clock.advance(time.Minute)
	_, err = env.client.Update(ctx, model.StaticBatch(
		model.LiteralSource{Path: "b.txt", Data: []byte("2")},
	))
	require.NoError(t, err)

	satisfied, err = env.client.Poll(ctx, query)
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestPollSeesExternalCommits(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"shared.txt": []byte("v1")})
	ctx := context.Background()

	since := env.clock.Now()
	query := model.ChangeQuery{Paths: []string{"shared.txt"}, Since: since}

	satisfied, err := env.client.Poll(ctx, query)
	require.NoError(t, err)
	require.False(t, satisfied)

	env.clock.advance(time.Minute)
	env.remote.commitFiles("external", map[string][]byte{"shared.txt": []byte("v2")})

	satisfied, err = env.client.Poll(ctx, query)
	require.NoError(t, err)
	assert.True(t, satisfied)
}

func TestPollRejectsEmptyQuery(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.client.Poll(context.Background(), model.ChangeQuery{})
	require.Error(t, err)

	_, err = env.client.Poll(context.Background(), model.ChangeQuery{Paths: []string{"../x"}})
	require.Error(t, err)
}

func TestWaitForChangeReturnsOnSatisfaction(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("1")})
	ctx := context.Background()

	err := env.client.WaitForChange(ctx, model.ChangeQuery{
		Paths: []string{"a.txt"},
		Since: time.Time{},
	}, time.Minute, time.Millisecond)
	require.NoError(t, err)
}

func TestWaitForChangeTimesOut(t *testing.T) {
	// real clock here: the wait loop measures its own deadline
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("1")}, WithClock(time.Now))

	err := env.client.WaitForChange(context.Background(), model.ChangeQuery{
		Paths: []string{"a.txt"},
		Since: time.Now().Add(time.Hour),
	}, 30*time.Millisecond, 5*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimedOut)
}

func TestWaitForChangeHonorsContext(t *testing.T) {
	env := newTestEnv(t, map[string][]byte{"a.txt": []byte("1")}, WithClock(time.Now))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := env.client.WaitForChange(ctx, model.ChangeQuery{
		Paths: []string{"a.txt"},
		Since: time.Now().Add(time.Hour),
	}, time.Minute, 5*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
}
