package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublishState represents the visibility of a video.
type PublishState string

const (
	StateDraft     PublishState = "DRAFT"
	StatePublished PublishState = "PUBLISHED"
)

func (s PublishState) String() string {
	return string(s)
}

// Video represents a video entity in the domain.
type Video struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	Views       int64
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrEmptyTitle       = fmt.Errorf("%w: title cannot be empty", ErrInvalidArgument)
	ErrTitleTooLong     = fmt.Errorf("%w: title exceeds maximum length of 255 characters", ErrInvalidArgument)
	ErrEmptyDescription = fmt.Errorf("%w: description cannot be empty", ErrInvalidArgument)
	ErrMissingVideoFile = fmt.Errorf("%w: video file is required", ErrInvalidArgument)
	ErrInvalidOwnerID   = fmt.Errorf("%w: owner ID cannot be nil", ErrInvalidArgument)
)

const maxTitleLength = 255

// NewVideoParams holds the inputs of NewVideo.
type NewVideoParams struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	VideoFile   string
	Thumbnail   string
	Duration    float64
	Draft       bool
}

// NewVideo creates a Video. It starts Published only when a thumbnail is
// present and the caller did not ask for a draft.
func NewVideo(p NewVideoParams) (*Video, error) {
	if p.OwnerID == uuid.Nil {
		return nil, ErrInvalidOwnerID
	}
	if p.VideoFile == "" {
		return nil, ErrMissingVideoFile
	}

	title, description, err := ValidateVideoDetails(p.Title, p.Description)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Video{
		ID:          uuid.New(),
		OwnerID:     p.OwnerID,
		Title:       title,
		Description: description,
		VideoFile:   p.VideoFile,
		Thumbnail:   p.Thumbnail,
		Duration:    p.Duration,
		IsPublished: p.Thumbnail != "" && !p.Draft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateVideoDetails checks a title/description pair and returns the
// trimmed values.
func ValidateVideoDetails(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", "", ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return "", "", ErrTitleTooLong
	}
	if description == "" {
		return "", "", ErrEmptyDescription
	}
	return title, description, nil
}

// State returns the publish state derived from IsPublished.
func (v *Video) State() PublishState {
	if v.IsPublished {
		return StatePublished
	}
	return StateDraft
}

// TogglePublish flips the video between Draft and Published and returns
// the new state.
func (v *Video) TogglePublish() PublishState {
	v.IsPublished = !v.IsPublished
	v.UpdatedAt = time.Now()
	return v.State()
}

// VisibleTo reports whether the viewer may see the video. Drafts are only
// visible to their owner.
func (v *Video) VisibleTo(viewer uuid.UUID) bool {
	return visibleTo(v.IsPublished, v.OwnerID, viewer)
}

func visibleTo(published bool, owner, viewer uuid.UUID) bool {
	return published || (viewer != uuid.Nil && viewer == owner)
}

// Owner implements authz.Owned.
func (v *Video) Owner() uuid.UUID { return v.OwnerID }

