package model

import (
	"time"

	"github.com/google/uuid"
)

// The types below are read models produced by aggregation pipelines. Nested
// documents arrive as JSON, so the json tags double as the column keys of
// the compiled json_build_object calls.

// OwnerSummary is the public projection of a user embedded in other records.
// A nil *OwnerSummary means the owner record no longer exists.
type OwnerSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Fullname string    `json:"fullname"`
	Avatar   string    `json:"avatar"`
}

// ChannelOwner is an OwnerSummary enriched with subscription data.
type ChannelOwner struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Fullname         string    `json:"fullname"`
	Avatar           string    `json:"avatar"`
	SubscribersCount int64     `json:"subscribersCount"`
	IsSubscribed     bool      `json:"isSubscribed"`
}

// VideoDetail is the single-video view.
type VideoDetail struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"ownerId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail"`
	Duration    float64       `json:"duration"`
	Views       int64         `json:"views"`
	IsPublished bool          `json:"isPublished"`
	CreatedAt   time.Time     `json:"createdAt"`
	Owner       *ChannelOwner `json:"owner"`
	LikesCount  int64         `json:"likesCount"`
	IsLiked     bool          `json:"isLiked"`
}

// VisibleTo applies the same rule as Video.VisibleTo.
func (d *VideoDetail) VisibleTo(viewer uuid.UUID) bool {
	return visibleTo(d.IsPublished, d.OwnerID, viewer)
}

// VideoSummary is a video as it appears in listings.
type VideoSummary struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail"`
	Duration    float64       `json:"duration"`
	Views       int64         `json:"views"`
	IsPublished bool          `json:"isPublished"`
	CreatedAt   time.Time     `json:"createdAt"`
	Owner       *OwnerSummary `json:"owner"`
	LikesCount  int64         `json:"likesCount"`
	IsLiked     bool          `json:"isLiked"`
}

// VideoCard is a compact video nested inside playlists and like listings.
type VideoCard struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail"`
	Duration    float64       `json:"duration"`
	Views       int64         `json:"views"`
	IsPublished bool          `json:"isPublished"`
	CreatedAt   time.Time     `json:"createdAt"`
	Owner       *OwnerSummary `json:"owner"`
}

// LikedVideo is one entry of a viewer's liked-videos listing.
type LikedVideo struct {
	LikedAt time.Time `json:"likedAt"`
	Video   VideoCard `json:"video"`
}

// PlaylistDetail is a playlist with its owner and its videos.
type PlaylistDetail struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"ownerId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Owner       *OwnerSummary `json:"owner"`
	Videos      []VideoCard   `json:"videos"`
	TotalVideos int64         `json:"totalVideos"`
	TotalViews  int64         `json:"totalViews"`
}

// ChannelSummary is a channel as ranked by discovery.
type ChannelSummary struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Fullname         string    `json:"fullname"`
	Avatar           string    `json:"avatar"`
	CoverImage       string    `json:"coverImage"`
	CreatedAt        time.Time `json:"createdAt"`
	SubscribersCount int64     `json:"subscribersCount"`
	IsSubscribed     bool      `json:"isSubscribed"`
	VideosCount      int64     `json:"videosCount"`
}

// ChannelProfile is the public profile page of a channel.
type ChannelProfile struct {
	ID                        uuid.UUID `json:"id"`
	Username                  string    `json:"username"`
	Fullname                  string    `json:"fullname"`
	Email                     string    `json:"email"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	CreatedAt                 time.Time `json:"createdAt"`
	SubscribersCount          int64     `json:"subscribersCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	VideosCount               int64     `json:"videosCount"`
}
