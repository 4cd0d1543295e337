package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/infrastructure/metrics"
	"github.com/hszk-dev/vidvault/internal/pagination"
)

// LikeService defines the interface for like operations.
type LikeService interface {
	// ToggleLike likes the target if the viewer has not liked it yet and
	// removes the like otherwise. Two toggles in a row restore the
	// original state.
	ToggleLike(ctx context.Context, target model.LikeTarget, targetID, viewer uuid.UUID) (*model.ToggleResult, error)

	// ListLikedVideos returns the videos the viewer liked, newest like first.
	ListLikedVideos(ctx context.Context, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error)
}

type likeService struct {
	likes  repository.LikeRepository
	videos repository.VideoRepository
}

// NewLikeService creates a new LikeService instance.
func NewLikeService(likes repository.LikeRepository, videos repository.VideoRepository) LikeService {
	return &likeService{
		likes:  likes,
		videos: videos,
	}
}

func (s *likeService) ToggleLike(ctx context.Context, target model.LikeTarget, targetID, viewer uuid.UUID) (*model.ToggleResult, error) {
	if !target.IsValid() {
		return nil, model.ErrInvalidLikeTarget
	}
	if targetID == uuid.Nil {
		return nil, model.ErrInvalidID
	}
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	if target == model.TargetVideo {
		if err := s.requireVisibleVideo(ctx, targetID, viewer); err != nil {
			return nil, fmt.Errorf("toggle %s like: %w", target, err)
		}
	}

	liked, err := s.likes.Toggle(ctx, target, targetID, viewer)
	if err != nil {
		return nil, fmt.Errorf("toggle %s like: %w", target, err)
	}

	result := "unliked"
	if liked {
		result = "liked"
	}
	metrics.LikeTogglesTotal.WithLabelValues(target.String(), result).Inc()

	return &model.ToggleResult{
		Target:   target,
		TargetID: targetID,
		IsLiked:  liked,
	}, nil
}

// requireVisibleVideo reports another owner's draft as not found, as reads do.
func (s *likeService) requireVisibleVideo(ctx context.Context, videoID, viewer uuid.UUID) error {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if !video.VisibleTo(viewer) {
		return repository.ErrVideoNotFound
	}
	return nil
}

func (s *likeService) ListLikedVideos(ctx context.Context, viewer uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	return s.videos.ListLikedBy(ctx, viewer, page)
}
