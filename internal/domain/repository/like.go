package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

// LikeRepository defines the interface for like persistence.
type LikeRepository interface {
	// Toggle removes the user's like on the target if present and creates it
	// otherwise, as one atomic statement. It reports whether the target is
	// liked afterwards. Returns ErrLikeTargetNotFound for unknown targets.
	Toggle(ctx context.Context, target model.LikeTarget, targetID, userID uuid.UUID) (bool, error)
}
