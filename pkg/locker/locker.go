// Copyright © 2023 One Concern

// Package locker serializes access to a shared working copy.
//
// A lock is materialized as a marker file next to the working copy, so
// mutual exclusion holds across processes and hosts sharing the same
// path. Within one process, a per-path gate serializes goroutines before
// they ever reach the marker (the pid-based marker alone cannot tell two
// goroutines of the same process apart). A marker left behind by a
// crashed holder is reclaimed: the lockfile primitive clears dead owners
// on the same host, and an age-based expiry window covers holders on
// other hosts.
package locker

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nightlyone/lockfile"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/oneconcern/datasync/pkg/errors"
)

// ErrLockTimeout signals that the lock stayed held past the caller's wait
// budget. Retryable by the caller.
var ErrLockTimeout = errors.New("timed out waiting for repository lock")

const (
	// DefaultExpiry is the age past which a lock marker is considered
	// abandoned and may be reclaimed
	DefaultExpiry = 10 * time.Minute

	// DefaultRetryInterval paces acquisition attempts while the lock is busy
	DefaultRetryInterval = 250 * time.Millisecond
)

// in-process gates, one per marker path, shared by all managers
var procGates sync.Map

func procGate(markerPath string) chan struct{} {
	gate, _ := procGates.LoadOrStore(markerPath, make(chan struct{}, 1))
	return gate.(chan struct{})
}

// Token records ownership of an acquired lock. It is returned by Acquire
// and must be handed back to Release on every exit path.
type Token struct {
	Holder     string
	AcquiredAt time.Time
	RepoPath   string

	lf       lockfile.Lockfile
	gate     chan struct{}
	released bool
	mu       sync.Mutex
}

// Option tunes a Manager
type Option func(*Manager)

// WithExpiry overrides the stale lock expiry window
func WithExpiry(expiry time.Duration) Option {
	return func(m *Manager) {
		if expiry > 0 {
			m.expiry = expiry
		}
	}
}

// WithRetryInterval overrides the pacing of acquisition attempts
func WithRetryInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.retryInterval = interval
		}
	}
}

// WithLogger sets a logger (defaults to a nop logger)
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source (used by tests)
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// New builds a lock manager
func New(opts ...Option) *Manager {
	m := &Manager{
		expiry:        DefaultExpiry,
		retryInterval: DefaultRetryInterval,
		logger:        zap.NewNop(),
		clock:         time.Now,
	}
	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Manager acquires and releases per-working-copy locks
type Manager struct {
	expiry        time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
	clock         func() time.Time
}

// Acquire takes the lock guarding repoLocalPath, waiting up to timeout.
//
// The marker file is repoLocalPath + ".lock", a sibling of the working
// copy. At most one active token exists per path at any instant, across
// goroutines, processes and hosts.
func (m *Manager) Acquire(ctx context.Context, repoLocalPath string, timeout time.Duration) (*Token, error) {
	markerPath, err := filepath.Abs(repoLocalPath + ".lock")
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(filepath.Dir(markerPath), 0700); err != nil {
		return nil, err
	}
	lf, err := lockfile.New(markerPath)
	if err != nil {
		return nil, err
	}

	deadline := m.clock().Add(timeout)
	gate := procGate(markerPath)
	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, ErrLockTimeout.WrapMessage("path %q held past %v", repoLocalPath, timeout)
	}

	for {
		err = lf.TryLock()
		if err == nil {
			token := &Token{
				Holder:     ksuid.New().String(),
				AcquiredAt: m.clock(),
				RepoPath:   repoLocalPath,
				lf:         lf,
				gate:       gate,
			}
			m.logger.Debug("lock acquired",
				zap.String("repo_path", repoLocalPath),
				zap.String("holder", token.Holder))
			return token, nil
		}
		if m.reclaimStale(markerPath) {
			continue
		}
		if !m.clock().Before(deadline) {
			<-gate
			return nil, ErrLockTimeout.WrapMessage("path %q held past %v", repoLocalPath, timeout)
		}
		select {
		case <-ctx.Done():
			<-gate
			return nil, ctx.Err()
		case <-time.After(m.retryInterval):
		}
	}
}

// Release hands the lock back. It is idempotent: releasing an already
// released or expired token is a no-op, not an error.
func (m *Manager) Release(token *Token) error {
	if token == nil {
		return nil
	}
	token.mu.Lock()
	defer token.mu.Unlock()
	if token.released {
		return nil
	}
	token.released = true
	if err := token.lf.Unlock(); err != nil {
		// the marker may have been reclaimed after expiry: not our lock
		// to release anymore, nothing left to undo on disk
		m.logger.Debug("lock marker already gone at release",
			zap.String("repo_path", token.RepoPath),
			zap.Error(err))
	}
	<-token.gate
	m.logger.Debug("lock released",
		zap.String("repo_path", token.RepoPath),
		zap.String("holder", token.Holder))
	return nil
}

// reclaimStale removes the marker when it exceeded the expiry window.
// The age is measured from the marker's mtime, which the lockfile
// primitive sets at acquisition. This covers holders on other hosts,
// which the pid-based dead-owner detection cannot see.
func (m *Manager) reclaimStale(markerPath string) bool {
	fi, err := os.Stat(markerPath)
	if err != nil {
		return false
	}
	if m.clock().Sub(fi.ModTime()) <= m.expiry {
		return false
	}
	return m.claimExpired(markerPath)
}

// claimExpired takes ownership of an expired marker by renaming it
// aside: when several contenders race for the same marker, exactly one
// rename succeeds. The expiry is confirmed on the claimed file, so a
// marker that changed hands between the caller's stat and the rename is
// put back untouched instead of deleted out from under its live holder.
func (m *Manager) claimExpired(markerPath string) bool {
	claim := markerPath + ".reap-" + ksuid.New().String()
	if err := os.Rename(markerPath, claim); err != nil {
		return false
	}
	fi, err := os.Stat(claim)
	if err == nil && m.clock().Sub(fi.ModTime()) <= m.expiry {
		if err = os.Rename(claim, markerPath); err != nil {
			_ = os.Remove(claim)
		}
		return false
	}
	_ = os.Remove(claim)
	m.logger.Warn("reclaimed stale lock marker",
		zap.String("marker", markerPath))
	return true
}
