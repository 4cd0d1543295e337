// Package media inspects uploaded media files.
package media

import "context"

// Prober reads technical metadata from a local media file.
type Prober interface {
	// Duration returns the length of the media in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}
