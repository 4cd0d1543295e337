package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Playlist is a named, ordered set of videos owned by a user.
type Playlist struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrEmptyPlaylistName = fmt.Errorf("%w: playlist name cannot be empty", ErrInvalidArgument)
	ErrPlaylistNameLong  = fmt.Errorf("%w: playlist name exceeds maximum length of 255 characters", ErrInvalidArgument)
)

// NewPlaylist creates a Playlist owned by ownerID.
func NewPlaylist(ownerID uuid.UUID, name, description string) (*Playlist, error) {
	if ownerID == uuid.Nil {
		return nil, ErrInvalidOwnerID
	}
	name, err := validatePlaylistName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Playlist{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rename updates the name and description.
func (p *Playlist) Rename(name, description string) error {
	name, err := validatePlaylistName(name)
	if err != nil {
		return err
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.UpdatedAt = time.Now()
	return nil
}

func validatePlaylistName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyPlaylistName
	}
	if len(name) > maxTitleLength {
		return "", ErrPlaylistNameLong
	}
	return name, nil
}

// Owner implements authz.Owned.
func (p *Playlist) Owner() uuid.UUID { return p.OwnerID }

