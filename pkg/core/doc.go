// Copyright © 2023 One Concern

// Package core implements the repository synchronization engine behind
// datasync: publishing batches of files into a shared version-controlled
// repository, fetching published content back out, and polling a set of
// paths for changes since a reference instant.
//
// All mutating operations on one repository handle are serialized through
// the lock manager, so concurrent callers (goroutines, processes, hosts)
// never observe or corrupt a half-applied working copy. Publishes are
// atomic per attempt: stage, commit, push, with a bounded retry loop when
// the remote advanced concurrently.
package core
