package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/media"
)

const defaultContentType = "application/octet-stream"

// videoContentTypes covers containers missing from the builtin mime table.
var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
}

// Uploader moves files received by the API into object storage and derives
// their public URLs.
type Uploader struct {
	storage       repository.ObjectStorage
	prober        media.Prober
	publicBaseURL string
}

// NewUploader creates an Uploader. publicBaseURL is the address objects are
// served from, bucket included. prober may be nil, in which case durations
// are reported as zero.
func NewUploader(storage repository.ObjectStorage, prober media.Prober, publicBaseURL string) *Uploader {
	return &Uploader{
		storage:       storage,
		prober:        prober,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Upload stores the file at localPath under kind and removes the local file
// afterwards, whether or not the upload succeeded.
func (u *Uploader) Upload(ctx context.Context, localPath string, kind repository.AssetKind) (*repository.UploadedAsset, error) {
	defer u.removeLocal(ctx, localPath)

	if kind != repository.AssetVideo && kind != repository.AssetThumbnail {
		return nil, fmt.Errorf("unknown asset kind %q", kind)
	}

	var duration float64
	if kind == repository.AssetVideo && u.prober != nil {
		d, err := u.prober.Duration(ctx, localPath)
		if err != nil {
			slog.WarnContext(ctx, "failed to probe media duration",
				"path", localPath,
				"error", err,
			)
		} else {
			duration = d
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	key := string(kind) + "/" + uuid.NewString() + ext

	contentType := contentTypeFor(ext)

	if err := u.storage.Upload(ctx, key, f, contentType); err != nil {
		return nil, err
	}

	return &repository.UploadedAsset{
		Key:      key,
		URL:      u.publicBaseURL + "/" + key,
		Duration: duration,
	}, nil
}

// KeyFromURL recovers the object key from a URL produced by Upload.
func (u *Uploader) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, u.publicBaseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func contentTypeFor(ext string) string {
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultContentType
}

func (u *Uploader) removeLocal(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.WarnContext(ctx, "failed to remove local upload",
			"path", path,
			"error", err,
		)
	}
}

// Compile-time verification that Uploader implements repository.AssetUploader.
var _ repository.AssetUploader = (*Uploader)(nil)
