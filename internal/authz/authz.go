// Package authz enforces ownership of mutable resources.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidvault/internal/domain/model"
	"github.com/hszk-dev/vidvault/internal/infrastructure/metrics"
)

// Owned is a resource with a single owning user.
type Owned interface {
	Owner() uuid.UUID
}

// Action is a state-changing operation on a kind of resource.
type Action struct {
	Resource string
	Verb     string
}

func (a Action) String() string {
	return a.Resource + "." + a.Verb
}

// Guarded actions.
var (
	UpdateVideo        = Action{Resource: "video", Verb: "update"}
	DeleteVideo        = Action{Resource: "video", Verb: "delete"}
	TogglePublish      = Action{Resource: "video", Verb: "toggle_publish"}
	UpdatePlaylist     = Action{Resource: "playlist", Verb: "update"}
	DeletePlaylist     = Action{Resource: "playlist", Verb: "delete"}
	AddToPlaylist      = Action{Resource: "playlist", Verb: "add_video"}
	RemoveFromPlaylist = Action{Resource: "playlist", Verb: "remove_video"}
)

// ErrNotOwner is returned when the viewer does not own the resource.
var ErrNotOwner = fmt.Errorf("%w: viewer does not own the resource", model.ErrForbidden)

// Authorize permits action only when viewer owns res. An anonymous viewer
// (uuid.Nil) owns nothing.
func Authorize(res Owned, viewer uuid.UUID, action Action) error {
	if viewer == uuid.Nil || res.Owner() != viewer {
		return fmt.Errorf("%w: %s", ErrNotOwner, action)
	}
	return nil
}

// Guard loads a resource, checks that viewer owns it and only then runs
// mutate. A load failure, typically a NotFound, is returned as is, so a
// missing resource is always reported as missing rather than forbidden.
func Guard[T Owned, R any](
	ctx context.Context,
	viewer uuid.UUID,
	action Action,
	load func(ctx context.Context) (T, error),
	mutate func(ctx context.Context, res T) (R, error),
) (R, error) {
	var zero R

	res, err := load(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			record(action, metrics.AuthzNotFound)
		} else {
			record(action, metrics.AuthzError)
		}
		return zero, err
	}

	if err := Authorize(res, viewer, action); err != nil {
		record(action, metrics.AuthzForbidden)
		slog.WarnContext(ctx, "ownership check denied",
			"action", action.String(),
			"viewer", viewer,
			"owner", res.Owner(),
		)
		return zero, err
	}
	record(action, metrics.AuthzAllowed)

	return mutate(ctx, res)
}

func record(action Action, result string) {
	metrics.AuthzDecisionsTotal.WithLabelValues(action.Resource, action.Verb, result).Inc()
}
