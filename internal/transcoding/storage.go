package transcoding

import "context"

// StorageRepository wraps the object store holding source and output media.
// Any key-addressed blob service satisfies it.
type StorageRepository interface {
	// FetchToFile downloads the object into destDir and returns the local
	// path. A missing or inaccessible object yields ErrSourceUnavailable;
	// other failures are transient.
	FetchToFile(ctx context.Context, bucket, key, destDir string) (string, error)

	// UploadDir stores every file under localDir beneath prefix, returning
	// the number of uploaded objects. Re-uploading the same keys overwrites,
	// so a retried upload after partial failure is safe.
	UploadDir(ctx context.Context, localDir, bucket, prefix string) (int, error)

	RemoveObject(ctx context.Context, bucket, key string) error

	// PublicURL builds the CDN-facing URL for an output object.
	PublicURL(bucket, key string) string
}
