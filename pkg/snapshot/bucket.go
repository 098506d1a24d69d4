package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Object is one stored snapshot
type Object struct {
	Name    string
	Size    int64
	Updated time.Time
}

// Bucket is the object store snapshots are written to
type Bucket interface {
	Write(ctx context.Context, name string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, name string) error
}

// GCSBucket stores snapshots in a Cloud Storage bucket
type GCSBucket struct {
	bucket *storage.BucketHandle
}

// NewGCSBucket wraps the named bucket of client
func NewGCSBucket(client *storage.Client, name string) *GCSBucket {
	return &GCSBucket{bucket: client.Bucket(name)}
}

// Write uploads data as name
func (b *GCSBucket) Write(ctx context.Context, name string, data []byte, contentType string) error {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// List returns the objects under prefix
func (b *GCSBucket) List(ctx context.Context, prefix string) ([]Object, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var objects []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate %s: %w", prefix, err)
		}
		objects = append(objects, Object{Name: attrs.Name, Size: attrs.Size, Updated: attrs.Updated})
	}
	return objects, nil
}

// Delete removes name. A missing object is not an error.
func (b *GCSBucket) Delete(ctx context.Context, name string) error {
	err := b.bucket.Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
