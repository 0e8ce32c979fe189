// Copyright © 2023 One Concern

// Package mockstorage provides an in-memory storage.Store for tests.
package mockstorage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/oneconcern/datasync/pkg/storage"
)

// New builds an empty in-memory store
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Store keeps objects in a map, safe for concurrent use
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailGet, when set, is returned by every Get call
	FailGet error
}

func (m *Store) String() string {
	return "mock"
}

func (m *Store) Has(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Store) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Store) Put(_ context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *Store) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Store) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
