package repository

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for object storage operations.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Upload stores an object in the storage.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes an object from the storage.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in the storage.
	Exists(ctx context.Context, key string) (bool, error)
}

// AssetKind selects where an uploaded file is stored.
type AssetKind string

const (
	AssetVideo     AssetKind = "videos"
	AssetThumbnail AssetKind = "thumbnails"
)

// UploadedAsset describes a file that has been moved to object storage.
type UploadedAsset struct {
	Key string
	URL string
	// Duration is the media length in seconds; zero for images or when
	// probing failed.
	Duration float64
}

// AssetUploader moves locally received files into object storage.
type AssetUploader interface {
	// Upload stores the file at localPath and removes the local copy,
	// whether or not the upload succeeded.
	Upload(ctx context.Context, localPath string, kind AssetKind) (*UploadedAsset, error)

	// KeyFromURL recovers the object key of an asset URL it produced.
	KeyFromURL(url string) (string, bool)
}
