package repository

import (
	"errors"
	"fmt"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

var (
	// ErrVideoNotFound is returned when a video cannot be found.
	ErrVideoNotFound = fmt.Errorf("video %w", model.ErrNotFound)

	// ErrPlaylistNotFound is returned when a playlist cannot be found.
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", model.ErrNotFound)

	// ErrChannelNotFound is returned when no user has the requested username.
	ErrChannelNotFound = fmt.Errorf("channel %w", model.ErrNotFound)

	// ErrLikeTargetNotFound is returned when the liked record does not exist.
	ErrLikeTargetNotFound = fmt.Errorf("like target %w", model.ErrNotFound)

	// ErrDuplicateVideo is returned when attempting to create a video that already exists.
	ErrDuplicateVideo = errors.New("video already exists")

	// ErrDuplicatePlaylist is returned when attempting to create a playlist that already exists.
	ErrDuplicatePlaylist = errors.New("playlist already exists")

	// ErrBucketNotFound is returned when the storage bucket does not exist.
	ErrBucketNotFound = errors.New("storage bucket not found")

	// ErrObjectNotFound is returned when a stored object does not exist.
	ErrObjectNotFound = errors.New("stored object not found")
)
