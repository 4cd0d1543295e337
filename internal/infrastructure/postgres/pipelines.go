package postgres

import (
	"github.com/jackc/pgx/v5"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/pipeline"
)

// Building blocks shared by the read pipelines of several repositories.

var ownerColumns = []string{"id", "username", "fullname", "avatar"}

// cardColumns are the video columns of a model.VideoCard.
var cardColumns = []string{
	"id", "title", "description", "video_file", "thumbnail",
	"duration", "views", "is_published", "created_at",
}

// ownerLookup joins the user referenced by localKey as "owner".
func ownerLookup(alias, localKey string) pipeline.Join {
	return pipeline.Join{
		As:         "owner",
		From:       pipeline.From("users", alias).Project(ownerColumns...),
		LocalKey:   localKey,
		ForeignKey: alias + ".id",
	}
}

// likesLookup joins the likes of the video aliased by videoAlias.
func likesLookup(videoAlias string) pipeline.Join {
	return pipeline.Join{
		As:         "likes",
		From:       pipeline.From("likes", "l"),
		LocalKey:   videoAlias + ".id",
		ForeignKey: "l.video_id",
	}
}

// subscribersLookup joins the subscriptions to the user aliased by userAlias.
func subscribersLookup(userAlias string) pipeline.Join {
	return pipeline.Join{
		As:         "subscribers",
		From:       pipeline.From("subscriptions", "s"),
		LocalKey:   userAlias + ".id",
		ForeignKey: "s.channel_id",
	}
}

// publishedVideosLookup joins the published videos owned by the user aliased
// by userAlias as "videos".
func publishedVideosLookup(userAlias string) pipeline.Join {
	return pipeline.Join{
		As:         "videos",
		From:       pipeline.From("videos", "cv").Match(pipeline.Eq("cv.is_published", true)),
		LocalKey:   userAlias + ".id",
		ForeignKey: "cv.owner_id",
	}
}

func scanVideoSummary(row pgx.CollectableRow) (model.VideoSummary, error) {
	var (
		v     model.VideoSummary
		owner []byte
	)
	err := row.Scan(
		&v.ID,
		&v.Title,
		&v.Description,
		&v.VideoFile,
		&v.Thumbnail,
		&v.Duration,
		&v.Views,
		&v.IsPublished,
		&v.CreatedAt,
		&owner,
		&v.LikesCount,
		&v.IsLiked,
	)
	if err != nil {
		return v, err
	}
	return v, pipeline.DecodeJSON(owner, &v.Owner)
}

func scanPlaylistDetail(row pgx.CollectableRow) (model.PlaylistDetail, error) {
	var (
		p      model.PlaylistDetail
		owner  []byte
		videos []byte
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
		&owner,
		&videos,
		&p.TotalVideos,
		&p.TotalViews,
	)
	if err != nil {
		return p, err
	}
	if err := pipeline.DecodeJSON(owner, &p.Owner); err != nil {
		return p, err
	}
	if err := pipeline.DecodeJSON(videos, &p.Videos); err != nil {
		return p, err
	}
	if p.Videos == nil {
		p.Videos = []model.VideoCard{}
	}
	return p, nil
}
