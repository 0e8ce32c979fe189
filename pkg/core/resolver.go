// Copyright © 2023 One Concern

package core

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/oneconcern/datasync/pkg/model"
	"github.com/oneconcern/datasync/pkg/storage"
)

// materialize resolves one upload source into a byte stream.
//
// Resolution is a single dispatch over the closed set of source variants.
// Deferred producers are invoked here, at the moment their bytes are
// needed: a retried publish attempt calls materialize again and
// re-invokes the producer.
func (c *Client) materialize(ctx context.Context, source model.UploadSource) (io.ReadCloser, error) {
	switch src := source.(type) {
	case model.LiteralSource:
		return io.NopCloser(bytes.NewReader(src.Data)), nil

	case model.FileSource:
		f, err := os.Open(src.SourcePath)
		if err != nil {
			return nil, ErrSourceUnavailable.WrapMessage("local file %q", src.SourcePath).Wrap(err)
		}
		return f, nil

	case model.DeferredSource:
		if src.Producer == nil {
			return nil, ErrSourceUnavailable.WrapMessage("nil producer for %q", src.Path)
		}
		data, err := src.Producer()
		if err != nil {
			return nil, ErrSourceUnavailable.WrapMessage("producer for %q", src.Path).Wrap(err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil

	case model.ObjectSource:
		store, err := c.openStore(ctx, src.Connection)
		if err != nil {
			return nil, ErrSourceUnavailable.WrapMessage("connection %q", src.Connection).Wrap(err)
		}
		rdr, err := store.Get(ctx, src.Key)
		if err != nil {
			return nil, ErrSourceUnavailable.WrapMessage("object %q on %q", src.Key, src.Connection).Wrap(err)
		}
		return rdr, nil

	default:
		return nil, ErrSourceUnavailable.WrapMessage("unsupported source kind %T", source)
	}
}

// deliver hands fetched bytes to one download sink, again a single
// dispatch over the closed set of sink variants.
func (c *Client) deliver(sink model.DownloadSink, data []byte) error {
	switch snk := sink.(type) {
	case model.FuncSink:
		if snk.Consumer == nil {
			return ErrSinkFailure.WrapMessage("nil consumer for %q", snk.Path)
		}
		if err := snk.Consumer(data); err != nil {
			return ErrSinkFailure.WrapMessage("consumer for %q", snk.Path).Wrap(err)
		}
		return nil

	case model.FileSink:
		if err := os.MkdirAll(filepath.Dir(snk.DestPath), 0700); err != nil {
			return ErrSinkFailure.WrapMessage("output %q", snk.DestPath).Wrap(err)
		}
		if err := os.WriteFile(snk.DestPath, data, 0600); err != nil {
			return ErrSinkFailure.WrapMessage("output %q", snk.DestPath).Wrap(err)
		}
		return nil

	case model.WriterSink:
		if snk.Writer == nil {
			return ErrSinkFailure.WrapMessage("nil writer for %q", snk.Path)
		}
		if _, err := snk.Writer.Write(data); err != nil {
			return ErrSinkFailure.WrapMessage("writer for %q", snk.Path).Wrap(err)
		}
		return nil

	default:
		return ErrSinkFailure.WrapMessage("unsupported sink kind %T", sink)
	}
}

// writeToWorkingCopy lands a materialized stream at target inside the
// working copy, overwriting any previous content.
func (c *Client) writeToWorkingCopy(target string, rdr io.Reader) (int64, error) {
	full := filepath.Join(c.handle.LocalPath, filepath.FromSlash(target))
	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, err
	}
	limit := c.maxFileSize
	if limit <= 0 {
		limit = storage.MaxObjectSizeInMemory
	}
	written, err := io.Copy(out, io.LimitReader(rdr, limit+1))
	if err != nil {
		_ = out.Close()
		return written, err
	}
	if written > limit {
		_ = out.Close()
		return written, storage.ErrObjectTooBig
	}
	return written, out.Close()
}
