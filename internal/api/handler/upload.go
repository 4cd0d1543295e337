package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// ErrInvalidUpload is returned for unreadable or oversized multipart bodies.
var ErrInvalidUpload = fmt.Errorf("%w: invalid multipart upload", model.ErrInvalidArgument)

// UploadReceiver stores files of multipart requests in a local directory
// until the usecase layer moves them to object storage.
type UploadReceiver struct {
	dir     string
	maxSize int64
}

// NewUploadReceiver creates an UploadReceiver writing to dir and rejecting
// bodies larger than maxSize bytes.
func NewUploadReceiver(dir string, maxSize int64) *UploadReceiver {
	return &UploadReceiver{dir: dir, maxSize: maxSize}
}

// Received holds the form values and saved file paths of a request.
type Received struct {
	files map[string]string
	form  map[string][]string
}

// File returns the local path of a file field, or "" when it was not sent.
func (rc *Received) File(field string) string {
	return rc.files[field]
}

// Value returns the first value of a form field.
func (rc *Received) Value(field string) string {
	if v := rc.form[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Cleanup removes every saved file that is still on disk.
func (rc *Received) Cleanup() {
	for _, path := range rc.files {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove received upload", "path", path, "error", err)
		}
	}
}

// Receive parses a multipart request and saves the listed file fields.
// Missing fields are skipped. The caller must call Cleanup.
func (u *UploadReceiver) Receive(w http.ResponseWriter, r *http.Request, fields ...string) (*Received, error) {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	rc := &Received{
		files: make(map[string]string, len(fields)),
		form:  r.MultipartForm.Value,
	}
	for _, field := range fields {
		path, err := u.save(r, field)
		if err != nil {
			rc.Cleanup()
			return nil, err
		}
		if path != "" {
			rc.files[field] = path
		}
	}

	return rc, nil
}

func (u *UploadReceiver) save(r *http.Request, field string) (string, error) {
	src, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: field %s: %v", ErrInvalidUpload, field, err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.CreateTemp(u.dir, field+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return dst.Name(), nil
}
