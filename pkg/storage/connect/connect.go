// Copyright © 2023 One Concern

// Package connect resolves object-store connection strings into stores.
//
// A connection string is "{scheme}://{bucket-or-path}", with one scheme per
// supported backend: gcs, s3, local.
package connect

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/oneconcern/datasync/pkg/storage"
	"github.com/oneconcern/datasync/pkg/storage/gcs"
	"github.com/oneconcern/datasync/pkg/storage/localfs"
	"github.com/oneconcern/datasync/pkg/storage/sthree"
)

const (
	schemeGCS   = "gcs"
	schemeS3    = "s3"
	schemeLocal = "local"
)

// Open resolves a connection string into a ready-to-use store.
func Open(ctx context.Context, connection string) (storage.Store, error) {
	scheme, target, found := strings.Cut(connection, "://")
	if !found || target == "" {
		return nil, fmt.Errorf("invalid object store connection %q, expected scheme://target", connection)
	}
	switch scheme {
	case schemeGCS:
		return gcs.New(ctx, target)
	case schemeS3:
		return sthree.New(sthree.Bucket(target)), nil
	case schemeLocal:
		return localfs.New(afero.NewBasePathFs(afero.NewOsFs(), target)), nil
	default:
		return nil, fmt.Errorf("unsupported object store scheme %q in %q", scheme, connection)
	}
}
