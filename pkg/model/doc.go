// Copyright © 2023 One Concern

// Package model describes the core entities handled by datasync:
// repository handles, upload sources, download sinks, publish batches
// and operation results.
//
// All entities here are transient: they are built per operation call and
// never persisted. The only durable state datasync manages is the shared
// repository itself and the lock marker next to its working copy.
package model
