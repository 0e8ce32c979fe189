// Copyright © 2023 One Concern

// Package rand generates random payloads and names for tests.
package rand

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	mu   sync.Mutex
	rgen = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec
)

// Bytes returns a random slice of bytes
func Bytes(n int) []byte {
	buf := make([]byte, n)
	mu.Lock()
	_, _ = rgen.Read(buf)
	mu.Unlock()
	return buf
}

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

// LetterString returns a random string picked in the [0-9]|[a-z] range
func LetterString(n int) string {
	var b strings.Builder
	b.Grow(n)
	mu.Lock()
	for i := 0; i < n; i++ {
		b.WriteByte(letters[rgen.Intn(len(letters))])
	}
	mu.Unlock()
	return b.String()
}
