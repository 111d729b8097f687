package blob

import "context"

// ObjectStore persists binary artifacts and returns a stable URL.
// Overwrites are idempotent: putting the same key twice keeps the last bytes.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
}
