// Package viewer carries the optional identity of the requesting user and
// attaches viewer-relative fields to pipelines.
package viewer

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/pipeline"
)

type ctxKey struct{}

// WithID returns a context carrying the viewer's user ID.
func WithID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the viewer's user ID, or false for anonymous requests.
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ID returns the viewer's user ID, or uuid.Nil when anonymous.
func ID(ctx context.Context) uuid.UUID {
	id, _ := FromContext(ctx)
	return id
}

// Relation names a join whose documents reference users, such as likes or
// subscriptions, and the output fields derived from it.
type Relation struct {
	// Join is the name the relation was registered under with Lookup.
	Join string
	// CountAs is the name of the count field; empty skips the count.
	CountAs string
	// FlagAs is the name of the membership flag; empty skips the flag.
	FlagAs string
	// MemberColumn is the column of the joined collection holding the user ID.
	MemberColumn string
}

// Common relations.
var (
	Likes = Relation{
		Join:         "likes",
		CountAs:      "likes_count",
		FlagAs:       "is_liked",
		MemberColumn: "liked_by",
	}
	Subscribers = Relation{
		Join:         "subscribers",
		CountAs:      "subscribers_count",
		FlagAs:       "is_subscribed",
		MemberColumn: "subscriber_id",
	}
)

// Resolve adds, for every relation, a count of the joined documents and a
// flag telling whether the viewer is among them. An anonymous viewer
// (uuid.Nil) never matches, so the flag is the constant false.
func Resolve(p *pipeline.Pipeline, id uuid.UUID, relations ...Relation) *pipeline.Pipeline {
	for _, r := range relations {
		if r.CountAs != "" {
			p.AddField(r.CountAs, pipeline.Size(r.Join))
		}
		if r.FlagAs == "" {
			continue
		}
		if id == uuid.Nil {
			p.AddField(r.FlagAs, pipeline.False())
		} else {
			p.AddField(r.FlagAs, pipeline.Contains(r.Join, r.MemberColumn, id))
		}
	}
	return p
}
