// Copyright © 2023 One Concern

package model

import "io"

// DownloadSink describes the consumer for one file fetched from the
// shared repository. Like UploadSource, this is a closed set of variants
// resolved by a single dispatch in core.
type DownloadSink interface {
	// SourcePath yields the repository-relative path to fetch
	SourcePath() string

	downloadSink()
}

// FuncSink hands the fetched bytes to a consumer function
type FuncSink struct {
	Path     string
	Consumer func([]byte) error
}

// FileSink writes the fetched bytes to a local filesystem path
type FileSink struct {
	Path string

	// DestPath locates the output file on the local filesystem
	DestPath string
}

// WriterSink streams the fetched bytes to an io.Writer
type WriterSink struct {
	Path   string
	Writer io.Writer
}

func (s FuncSink) SourcePath() string   { return s.Path }
func (s FileSink) SourcePath() string   { return s.Path }
func (s WriterSink) SourcePath() string { return s.Path }

func (FuncSink) downloadSink()   {}
func (FileSink) downloadSink()   {}
func (WriterSink) downloadSink() {}
