// Copyright © 2023 One Concern

package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datasync/pkg/locker"
	"github.com/oneconcern/datasync/pkg/model"
	"github.com/oneconcern/datasync/pkg/storage"
	"github.com/oneconcern/datasync/pkg/storage/mockstorage"
	"github.com/oneconcern/datasync/pkg/vcs"
)

// manual clock shared by the client and the fake remote
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeCommit struct {
	id      string
	message string
	at      time.Time
	files   map[string][]byte
	touched []string
}

// fakeRemote plays the remote repository: an append-only commit log of
// full snapshots, with atomic head updates
type fakeRemote struct {
	mu      sync.Mutex
	commits []fakeCommit
	seq     int
	clock   func() time.Time
}

func newFakeRemote(initial map[string][]byte, clock func() time.Time) *fakeRemote {
	r := &fakeRemote{clock: clock}
	files := copyFiles(initial)
	touched := make([]string, 0, len(files))
	for p := range files {
		touched = append(touched, p)
	}
	sort.Strings(touched)
	r.commits = append(r.commits, fakeCommit{
		id:      r.nextID(),
		message: "initial",
		at:      clock(),
		files:   files,
		touched: touched,
	})
	return r
}

func (r *fakeRemote) nextID() string {
	r.seq++
	return fmt.Sprintf("sha-%06d", r.seq)
}

func (r *fakeRemote) head() fakeCommit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits[len(r.commits)-1]
}

// commitFiles plays an external concurrent writer
func (r *fakeRemote) commitFiles(message string, overlay map[string][]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	head := r.commits[len(r.commits)-1]
	files := copyFiles(head.files)
	touched := make([]string, 0, len(overlay))
	for p, data := range overlay {
		files[p] = append([]byte(nil), data...)
		touched = append(touched, p)
	}
	sort.Strings(touched)
	r.commits = append(r.commits, fakeCommit{
		id:      r.nextID(),
		message: message,
		at:      r.clock(),
		files:   files,
		touched: touched,
	})
}

func (r *fakeRemote) lastModified(p string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.commits) - 1; i >= 0; i-- {
		for _, touched := range r.commits[i].touched {
			if touched == p {
				return r.commits[i].at, true
			}
		}
	}
	return time.Time{}, false
}

type workState struct {
	baseHead  string
	baseFiles map[string][]byte
	sparse    map[string]bool
	staged    map[string]bool
	pending   *fakeCommit
}

// fakeEngine implements vcs.Engine over real working directories and the
// in-memory remote, close enough to the git behavior the executors rely
// on: sparse materialization, staged-versus-committed comparison, and
// rejected pushes when the remote advanced past the synced base
type fakeEngine struct {
	remote *fakeRemote
	mu     sync.Mutex
	dirs   map[string]*workState

	// beforePush, when set, runs ahead of every push attempt so tests
	// can interleave concurrent writers
	beforePush func()

	cloneCalls int
	syncCalls  int
}

func newFakeEngine(remote *fakeRemote) *fakeEngine {
	return &fakeEngine{remote: remote, dirs: make(map[string]*workState)}
}

var _ vcs.Engine = &fakeEngine{}

func (e *fakeEngine) Clone(_ context.Context, _ string, dir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cloneCalls++
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0700); err != nil {
		return err
	}
	head := e.remote.head()
	e.dirs[dir] = &workState{
		baseHead:  head.id,
		baseFiles: copyFiles(head.files),
		sparse:    make(map[string]bool),
		staged:    make(map[string]bool),
	}
	return nil
}

func (e *fakeEngine) Sync(_ context.Context, dir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncCalls++
	state, ok := e.dirs[dir]
	if !ok {
		return fmt.Errorf("not a working copy: %s", dir)
	}
	head := e.remote.head()
	// discard anything on disk and rematerialize the sparse set
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err = os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	for p := range state.sparse {
		if data, ok := head.files[p]; ok {
			if err = writeFileAt(dir, p, data); err != nil {
				return err
			}
		}
	}
	state.baseHead = head.id
	state.baseFiles = copyFiles(head.files)
	state.staged = make(map[string]bool)
	state.pending = nil
	return nil
}

func (e *fakeEngine) Checkout(_ context.Context, dir string, paths []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return fmt.Errorf("not a working copy: %s", dir)
	}
	for _, p := range paths {
		state.sparse[p] = true
		if data, ok := state.baseFiles[p]; ok {
			if err := writeFileAt(dir, p, data); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *fakeEngine) Stage(_ context.Context, dir string, paths []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return fmt.Errorf("not a working copy: %s", dir)
	}
	for _, p := range paths {
		state.staged[p] = true
	}
	return nil
}

func (e *fakeEngine) HasStagedChanges(_ context.Context, dir string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return false, fmt.Errorf("not a working copy: %s", dir)
	}
	for p := range state.staged {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil {
			return false, err
		}
		if string(data) != string(state.baseFiles[p]) {
			return true, nil
		}
	}
	return false, nil
}

func (e *fakeEngine) Commit(_ context.Context, dir, message string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return "", fmt.Errorf("not a working copy: %s", dir)
	}
	files := copyFiles(state.baseFiles)
	var touched []string
	for p := range state.staged {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil {
			return "", err
		}
		if string(data) != string(state.baseFiles[p]) {
			touched = append(touched, p)
		}
		files[p] = append([]byte(nil), data...)
	}
	sort.Strings(touched)
	e.remote.mu.Lock()
	id := e.remote.nextID()
	e.remote.mu.Unlock()
	state.pending = &fakeCommit{
		id:      id,
		message: message,
		at:      e.remote.clock(),
		files:   files,
		touched: touched,
	}
	return id, nil
}

func (e *fakeEngine) Push(_ context.Context, dir string) error {
	if hook := e.beforePush; hook != nil {
		hook()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return fmt.Errorf("not a working copy: %s", dir)
	}
	if state.pending == nil {
		return fmt.Errorf("nothing to push in %s", dir)
	}
	e.remote.mu.Lock()
	defer e.remote.mu.Unlock()
	if e.remote.commits[len(e.remote.commits)-1].id != state.baseHead {
		return vcs.ErrRejected
	}
	e.remote.commits = append(e.remote.commits, *state.pending)
	state.baseHead = state.pending.id
	state.baseFiles = copyFiles(state.pending.files)
	state.pending = nil
	state.staged = make(map[string]bool)
	return nil
}

func (e *fakeEngine) Head(_ context.Context, dir string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return "", fmt.Errorf("not a working copy: %s", dir)
	}
	if state.pending != nil {
		return state.pending.id, nil
	}
	return state.baseHead, nil
}

func (e *fakeEngine) HasPath(_ context.Context, dir, p string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return false, fmt.Errorf("not a working copy: %s", dir)
	}
	_, has := state.baseFiles[p]
	return has, nil
}

func (e *fakeEngine) LastModified(_ context.Context, dir, p string) (time.Time, bool, error) {
	e.mu.Lock()
	_, ok := e.dirs[dir]
	e.mu.Unlock()
	if !ok {
		return time.Time{}, false, fmt.Errorf("not a working copy: %s", dir)
	}
	at, found := e.remote.lastModified(p)
	return at, found, nil
}

func (e *fakeEngine) ListTree(_ context.Context, dir, subdir string) ([]model.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("not a working copy: %s", dir)
	}
	prefix := ""
	if subdir != "" && subdir != "." {
		prefix = strings.TrimSuffix(subdir, "/") + "/"
	}
	seen := make(map[string]bool)
	var entries []model.Entry
	for p := range state.baseFiles {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, model.Entry{
			Path:  prefix + name,
			Name:  name,
			IsDir: isDir,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func copyFiles(files map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(files))
	for p, data := range files {
		out[p] = append([]byte(nil), data...)
	}
	return out
}

func writeFileAt(dir, p string, data []byte) error {
	full := filepath.Join(dir, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0600)
}

// testEnv wires a client over the fake engine and a real lock manager
type testEnv struct {
	clock  *fakeClock
	remote *fakeRemote
	engine *fakeEngine
	handle model.RepoHandle
	stores map[string]storage.Store
	client *Client
}

func newTestEnv(t *testing.T, initial map[string][]byte, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:  &fakeClock{now: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)},
		stores: make(map[string]storage.Store),
	}
	env.remote = newFakeRemote(initial, env.clock.Now)
	env.engine = newFakeEngine(env.remote)

	handle, err := model.NewRepoHandle("https://git.example.com/acme/datasets.git", t.TempDir())
	require.NoError(t, err)
	env.handle = handle

	base := []Option{
		Engine(env.engine),
		Locks(locker.New(locker.WithRetryInterval(5 * time.Millisecond))),
		WithClock(env.clock.Now),
		LockTimeout(10 * time.Second),
		ObjectStores(func(_ context.Context, connection string) (storage.Store, error) {
			store, ok := env.stores[connection]
			if !ok {
				return nil, fmt.Errorf("unknown connection %q", connection)
			}
			return store, nil
		}),
	}
	env.client = New(handle, append(base, opts...)...)
	return env
}

func (env *testEnv) mockStore(connection string) *mockstorage.Store {
	store := mockstorage.New()
	env.stores[connection] = store
	return store
}
