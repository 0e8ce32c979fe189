// Copyright © 2023 One Concern

package gcs

import (
	"context"
	"io"

	gcsStorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/oneconcern/datasync/pkg/storage"
)

type gcs struct {
	client         *gcsStorage.Client
	readOnlyClient *gcsStorage.Client
	bucket         string
}

// New builds a store for a GCS bucket
func New(ctx context.Context, bucket string, opts ...option.ClientOption) (storage.Store, error) {
	googleStore := &gcs{bucket: bucket}
	var err error
	roOpts := append([]option.ClientOption{option.WithScopes(gcsStorage.ScopeReadOnly)}, opts...)
	googleStore.readOnlyClient, err = gcsStorage.NewClient(ctx, roOpts...)
	if err != nil {
		return nil, err
	}
	rwOpts := append([]option.ClientOption{option.WithScopes(gcsStorage.ScopeFullControl)}, opts...)
	googleStore.client, err = gcsStorage.NewClient(ctx, rwOpts...)
	if err != nil {
		return nil, err
	}
	return googleStore, nil
}

func (g *gcs) String() string {
	return "gcs://" + g.bucket
}

func (g *gcs) Has(ctx context.Context, objectName string) (bool, error) {
	_, err := g.readOnlyClient.Bucket(g.bucket).Object(objectName).Attrs(ctx)
	if err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *gcs) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	rdr, err := g.readOnlyClient.Bucket(g.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return rdr, nil
}

func (g *gcs) Put(ctx context.Context, objectName string, reader io.Reader) error {
	writer := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(writer, reader); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func (g *gcs) Delete(ctx context.Context, objectName string) error {
	return g.client.Bucket(g.bucket).Object(objectName).Delete(ctx)
}

func (g *gcs) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	objectsIterator := g.readOnlyClient.Bucket(g.bucket).Objects(ctx, nil)
	for {
		attrs, err := objectsIterator.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}
