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
)

const playlistColumns = `id, owner_id, name, description, created_at, updated_at`

// PlaylistRepository implements repository.PlaylistRepository using PostgreSQL.
type PlaylistRepository struct {
	db DBTX
}

// NewPlaylistRepository creates a new PlaylistRepository instance.
func NewPlaylistRepository(db DBTX) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create persists a new playlist.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	const query = `
		INSERT INTO playlists (` + playlistColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		playlist.ID,
		playlist.OwnerID,
		playlist.Name,
		playlist.Description,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return repository.ErrDuplicatePlaylist
		}
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TablePlaylists).Inc()

	return nil
}

// GetByID retrieves a playlist by its unique identifier.
func (r *PlaylistRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	const query = `SELECT ` + playlistColumns + ` FROM playlists WHERE id = $1`

	var p model.Playlist
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrPlaylistNotFound
		}
		return nil, fmt.Errorf("failed to get playlist by ID: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TablePlaylists).Inc()

	return &p, nil
}

// playlistDetail is the read pipeline behind GetDetail and ListByOwner.
// videoFilter decides which nested videos are visible; counts and the view
// total follow the same filter.
func playlistDetail(videoFilter sq.Sqlizer) *pipeline.Pipeline {
	videos := pipeline.From("videos", "vid").
		Via("playlist_videos", "pv", "pv.video_id = vid.id").
		Match(videoFilter).
		Project(cardColumns...).
		Lookup(ownerLookup("vo", "vid.owner_id")).
		AddField("owner", pipeline.First("owner")).
		SortBy("pv.position", pipeline.Asc)

	return pipeline.From("playlists", "p").
		Project("id", "owner_id", "name", "description", "created_at", "updated_at").
		Lookup(ownerLookup("u", "p.owner_id")).
		Lookup(pipeline.Join{As: "videos", From: videos, LocalKey: "p.id", ForeignKey: "pv.playlist_id"}).
		AddField("owner", pipeline.First("owner")).
		AddField("videos", pipeline.Nest("videos")).
		AddField("total_videos", pipeline.Size("videos")).
		AddField("total_views", pipeline.Sum("videos", "views"))
}

// GetDetail returns the playlist with its owner and published videos.
func (r *PlaylistRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PlaylistDetail, error) {
	p := playlistDetail(pipeline.Eq("vid.is_published", true)).
		Match(pipeline.Eq("p.id", id))

	detail, err := pipeline.One(ctx, r.db, p, scanPlaylistDetail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrPlaylistNotFound
		}
		return nil, fmt.Errorf("failed to get playlist detail: %w", err)
	}

	return &detail, nil
}

// ListByOwner returns one page of ownerID's playlists, most recently updated
// first.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID, viewerID uuid.UUID, page pagination.Params) (*pagination.Page[model.PlaylistDetail], error) {
	visible := sq.Or{
		pipeline.Eq("vid.is_published", true),
		pipeline.Eq("vid.owner_id", viewerID),
	}
	p := playlistDetail(visible).
		Match(pipeline.Eq("p.owner_id", ownerID)).
		SortBy("updated_at", pipeline.Desc).
		Paginate(page)

	result, err := pipeline.Run(ctx, r.db, p, scanPlaylistDetail)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	return pagination.NewPage(page, result.Items, result.Total), nil
}

// Update persists name and description.
func (r *PlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	query, args, err := psql.Update("playlists").
		Set("name", playlist.Name).
		Set("description", playlist.Description).
		Set("updated_at", playlist.UpdatedAt).
		Where(pipeline.Eq("id", playlist.ID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build playlist update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TablePlaylists).Inc()

	if tag.RowsAffected() == 0 {
		return repository.ErrPlaylistNotFound
	}

	return nil
}

// Delete removes the playlist; memberships go with it.
func (r *PlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM playlists WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TablePlaylists).Inc()

	if tag.RowsAffected() == 0 {
		return repository.ErrPlaylistNotFound
	}

	return nil
}

// AddVideo appends the video at the end of the playlist unless it is
// already a member.
func (r *PlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	const insert = `
		INSERT INTO playlist_videos (playlist_id, video_id, position, added_at)
		SELECT $1::uuid, $2::uuid, COALESCE(MAX(position), 0) + 1, $3::timestamptz
		FROM playlist_videos
		WHERE playlist_id = $1
		ON CONFLICT (playlist_id, video_id) DO NOTHING
	`

	return r.changeMembership(ctx, playlistID, func(tx pgx.Tx, now time.Time) error {
		_, err := tx.Exec(ctx, insert, playlistID, videoID, now)
		return err
	})
}

// RemoveVideo removes the video from the playlist if present.
func (r *PlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	const remove = `DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`

	return r.changeMembership(ctx, playlistID, func(tx pgx.Tx, now time.Time) error {
		_, err := tx.Exec(ctx, remove, playlistID, videoID)
		return err
	})
}

// ListIDsByVideo returns the playlists that contain videoID.
func (r *PlaylistRepository) ListIDsByVideo(ctx context.Context, videoID uuid.UUID) ([]uuid.UUID, error) {
	const query = `SELECT playlist_id FROM playlist_videos WHERE video_id = $1`

	rows, err := r.db.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists by video: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist ids: %w", err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TablePlaylists).Inc()

	return ids, nil
}

// changeMembership runs change and bumps the playlist's updated_at in one
// transaction.
func (r *PlaylistRepository) changeMembership(ctx context.Context, playlistID uuid.UUID, change func(tx pgx.Tx, now time.Time) error) error {
	const touch = `UPDATE playlists SET updated_at = $2 WHERE id = $1`

	now := time.Now()
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := change(tx, now); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, touch, playlistID, now)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrPlaylistNotFound
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, repository.ErrPlaylistNotFound):
			return err
		case errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation:
			if pgErr.ConstraintName == "playlist_videos_video_id_fkey" {
				return repository.ErrVideoNotFound
			}
			return repository.ErrPlaylistNotFound
		default:
			return fmt.Errorf("failed to change playlist membership: %w", err)
		}
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TablePlaylists).Inc()

	return nil
}

// Compile-time verification that PlaylistRepository implements repository.PlaylistRepository.
var _ repository.PlaylistRepository = (*PlaylistRepository)(nil)
