package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/infrastructure/metrics"
)

// likeTargetColumns maps a like target to its column in likes.
var likeTargetColumns = map[model.LikeTarget]string{
	model.TargetVideo:   "video_id",
	model.TargetComment: "comment_id",
	model.TargetTweet:   "tweet_id",
}

// toggleLikeQuery deletes the like if present and inserts it otherwise in a
// single statement. ON CONFLICT covers a concurrent insert by the same user:
// the partial unique index keeps one row and this call reports false.
const toggleLikeQuery = `
	WITH removed AS (
		DELETE FROM likes
		WHERE %[1]s = $1 AND liked_by = $2
		RETURNING id
	), inserted AS (
		INSERT INTO likes (id, %[1]s, liked_by, created_at)
		SELECT $3::uuid, $1::uuid, $2::uuid, $4::timestamptz
		WHERE NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT DO NOTHING
		RETURNING id
	)
	SELECT EXISTS (SELECT 1 FROM inserted)
`

// LikeRepository implements repository.LikeRepository using PostgreSQL.
type LikeRepository struct {
	db      DBTX
	queries map[model.LikeTarget]string
}

// NewLikeRepository creates a new LikeRepository instance.
func NewLikeRepository(db DBTX) *LikeRepository {
	queries := make(map[model.LikeTarget]string, len(likeTargetColumns))
	for target, column := range likeTargetColumns {
		queries[target] = fmt.Sprintf(toggleLikeQuery, column)
	}
	return &LikeRepository{db: db, queries: queries}
}

// Toggle flips userID's like on the target and reports the resulting state.
func (r *LikeRepository) Toggle(ctx context.Context, target model.LikeTarget, targetID, userID uuid.UUID) (bool, error) {
	query, ok := r.queries[target]
	if !ok {
		return false, fmt.Errorf("%w: %q", model.ErrInvalidLikeTarget, target)
	}

	var liked bool
	err := r.db.QueryRow(ctx, query, targetID, userID, uuid.New(), time.Now()).Scan(&liked)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			if pgErr.ConstraintName == "likes_liked_by_fkey" {
				return false, fmt.Errorf("%w: user %s does not exist", model.ErrUnauthenticated, userID)
			}
			return false, fmt.Errorf("%s %w", target, repository.ErrLikeTargetNotFound)
		}
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableLikes).Inc()

	return liked, nil
}

// Compile-time verification that LikeRepository implements repository.LikeRepository.
var _ repository.LikeRepository = (*LikeRepository)(nil)
