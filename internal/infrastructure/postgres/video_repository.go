package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/domain/repository"
	"github.com/hszk-dev/vidvault/internal/infrastructure/metrics"
	"github.com/hszk-dev/vidvault/internal/pagination"
	"github.com/hszk-dev/vidvault/internal/pipeline"
	"github.com/hszk-dev/vidvault/internal/viewer"
)

const videoColumns = `id, owner_id, title, description, video_file, thumbnail,
	duration, views, is_published, created_at, updated_at`

// VideoRepository implements repository.VideoRepository using PostgreSQL.
type VideoRepository struct {
	db DBTX
}

// NewVideoRepository creates a new VideoRepository instance.
func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create persists a new video entity.
func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	const query = `
		INSERT INTO videos (` + videoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		video.ID,
		video.OwnerID,
		video.Title,
		video.Description,
		video.VideoFile,
		video.Thumbnail,
		video.Duration,
		video.Views,
		video.IsPublished,
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return repository.ErrDuplicateVideo
		}
		return fmt.Errorf("failed to create video: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableVideos).Inc()

	return nil
}

// GetByID retrieves a video by its unique identifier.
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	const query = `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	video, err := scanVideo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by ID: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableVideos).Inc()

	return video, nil
}

// GetDetail returns the single-video view with owner, counts and flags.
func (r *VideoRepository) GetDetail(ctx context.Context, id, viewerID uuid.UUID) (*model.VideoDetail, error) {
	owner := pipeline.From("users", "u").
		Project(ownerColumns...).
		Lookup(subscribersLookup("u"))
	viewer.Resolve(owner, viewerID, viewer.Subscribers)

	p := pipeline.From("videos", "v").
		Match(pipeline.Eq("v.id", id)).
		Project("id", "owner_id", "title", "description", "video_file", "thumbnail",
			"duration", "views", "is_published", "created_at").
		Lookup(likesLookup("v")).
		Lookup(pipeline.Join{As: "owner", From: owner, LocalKey: "v.owner_id", ForeignKey: "u.id"}).
		AddField("owner", pipeline.First("owner"))
	viewer.Resolve(p, viewerID, viewer.Likes)

	detail, err := pipeline.One(ctx, r.db, p, scanVideoDetail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video detail: %w", err)
	}

	return &detail, nil
}

// List returns one page of videos visible under q.
func (r *VideoRepository) List(ctx context.Context, q repository.VideoQuery, page pagination.Params) (*pagination.Page[model.VideoSummary], error) {
	p := pipeline.From("videos", "v")
	if q.OwnerID != uuid.Nil {
		p.Match(pipeline.Eq("v.owner_id", q.OwnerID))
	}
	if q.OwnerID == uuid.Nil || q.OwnerID != q.Viewer {
		p.Match(pipeline.Eq("v.is_published", true))
	}
	p.Search(q.Search, "title", "description").
		Project(cardColumns...).
		Lookup(likesLookup("v")).
		Lookup(ownerLookup("u", "v.owner_id")).
		AddField("owner", pipeline.First("owner"))
	viewer.Resolve(p, q.Viewer, viewer.Likes)

	column, ok := repository.VideoSortKeys[q.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := pipeline.Asc
	if q.Descending {
		dir = pipeline.Desc
	}
	p.SortBy(column, dir).Paginate(page)

	result, err := pipeline.Run(ctx, r.db, p, scanVideoSummary)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	return pagination.NewPage(page, result.Items, result.Total), nil
}

// ListLikedBy returns the videos liked by userID, newest like first.
func (r *VideoRepository) ListLikedBy(ctx context.Context, userID uuid.UUID, page pagination.Params) (*pagination.Page[model.LikedVideo], error) {
	p := pipeline.From("likes", "l").
		Via("videos", "v", "v.id = l.video_id").
		Match(pipeline.Eq("l.liked_by", userID)).
		Match(sq.Or{
			pipeline.Eq("v.is_published", true),
			pipeline.Eq("v.owner_id", userID),
		}).
		Project("l.created_at", "v.id", "v.title", "v.description", "v.video_file", "v.thumbnail",
			"v.duration", "v.views", "v.is_published", "v.created_at").
		Lookup(ownerLookup("u", "v.owner_id")).
		AddField("owner", pipeline.First("owner")).
		SortBy("l.created_at", pipeline.Desc).
		Paginate(page)

	result, err := pipeline.Run(ctx, r.db, p, scanLikedVideo)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked videos: %w", err)
	}

	return pagination.NewPage(page, result.Items, result.Total), nil
}

// Update persists title, description and thumbnail.
func (r *VideoRepository) Update(ctx context.Context, video *model.Video) error {
	video.UpdatedAt = time.Now()

	query, args, err := psql.Update("videos").
		Set("title", video.Title).
		Set("description", video.Description).
		Set("thumbnail", video.Thumbnail).
		Set("updated_at", video.UpdatedAt).
		Where(pipeline.Eq("id", video.ID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build video update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableVideos).Inc()

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// TogglePublish flips is_published in a single statement.
func (r *VideoRepository) TogglePublish(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	const query = `
		UPDATE videos
		SET is_published = NOT is_published, updated_at = $2
		WHERE id = $1
		RETURNING ` + videoColumns

	video, err := scanVideo(r.db.QueryRow(ctx, query, id, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to toggle publish status: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableVideos).Inc()

	return video, nil
}

// IncrementViews adds one view without reading the current count.
func (r *VideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE videos SET views = views + 1 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableVideos).Inc()

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// RecordWatch adds the video to the user's watch history, refreshing the
// timestamp when it is already there.
func (r *VideoRepository) RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error {
	const query = `
		INSERT INTO watch_history (user_id, video_id, watched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at
	`

	if _, err := r.db.Exec(ctx, query, userID, videoID, time.Now()); err != nil {
		return fmt.Errorf("failed to record watch history: %w", err)
	}

	return nil
}

// cascadeStatements remove everything that references a video, children
// first so that no foreign key is violated.
var cascadeStatements = []string{
	`DELETE FROM likes WHERE comment_id IN (SELECT id FROM comments WHERE video_id = $1)`,
	`DELETE FROM likes WHERE video_id = $1`,
	`DELETE FROM comments WHERE video_id = $1`,
	`DELETE FROM playlist_videos WHERE video_id = $1`,
	`DELETE FROM watch_history WHERE video_id = $1`,
}

// Delete removes the video and everything referencing it in one transaction.
func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, stmt := range cascadeStatements {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrVideoNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete video: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableVideos).Inc()

	return nil
}

// scanVideo scans a single row into a Video model.
func scanVideo(row pgx.Row) (*model.Video, error) {
	var video model.Video

	err := row.Scan(
		&video.ID,
		&video.OwnerID,
		&video.Title,
		&video.Description,
		&video.VideoFile,
		&video.Thumbnail,
		&video.Duration,
		&video.Views,
		&video.IsPublished,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &video, nil
}

func scanVideoDetail(row pgx.CollectableRow) (model.VideoDetail, error) {
	var (
		d     model.VideoDetail
		owner []byte
	)
	err := row.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Title,
		&d.Description,
		&d.VideoFile,
		&d.Thumbnail,
		&d.Duration,
		&d.Views,
		&d.IsPublished,
		&d.CreatedAt,
		&owner,
		&d.LikesCount,
		&d.IsLiked,
	)
	if err != nil {
		return d, err
	}
	return d, pipeline.DecodeJSON(owner, &d.Owner)
}

func scanLikedVideo(row pgx.CollectableRow) (model.LikedVideo, error) {
	var (
		lv    model.LikedVideo
		owner []byte
	)
	err := row.Scan(
		&lv.LikedAt,
		&lv.Video.ID,
		&lv.Video.Title,
		&lv.Video.Description,
		&lv.Video.VideoFile,
		&lv.Video.Thumbnail,
		&lv.Video.Duration,
		&lv.Video.Views,
		&lv.Video.IsPublished,
		&lv.Video.CreatedAt,
		&owner,
	)
	if err != nil {
		return lv, err
	}
	return lv, pipeline.DecodeJSON(owner, &lv.Video.Owner)
}

// Compile-time verification that VideoRepository implements repository.VideoRepository.
var _ repository.VideoRepository = (*VideoRepository)(nil)
