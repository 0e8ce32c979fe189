/*
Package datasync lets workflow tasks exchange files through a shared
version-controlled repository.

A task publishes its outputs as one atomic commit and downstream tasks
fetch exactly the files they need, or poll for them to change. Every
process and host sharing the same remote converges on the same content:
concurrent publishers serialize through a repository lock and replay
their publish when they lose a push race.

The entry point is pkg/core, operating on a repository handle from
pkg/model. The datasync CLI under cmd/datasync exposes the same
operations to shell-driven pipelines.
*/
package datasync
