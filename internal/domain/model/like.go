package model

import (
	"fmt"

	"github.com/google/uuid"
)

// LikeTarget is the kind of record a like points at.
type LikeTarget string

const (
	TargetVideo   LikeTarget = "video"
	TargetComment LikeTarget = "comment"
	TargetTweet   LikeTarget = "tweet"
)

// ErrInvalidLikeTarget is returned for unknown target kinds.
var ErrInvalidLikeTarget = fmt.Errorf("%w: unknown like target", ErrInvalidArgument)

func (t LikeTarget) IsValid() bool {
	switch t {
	case TargetVideo, TargetComment, TargetTweet:
		return true
	default:
		return false
	}
}

func (t LikeTarget) String() string {
	return string(t)
}

// ToggleResult is the outcome of a like toggle.
type ToggleResult struct {
	Target   LikeTarget `json:"target"`
	TargetID uuid.UUID  `json:"targetId"`
	IsLiked  bool       `json:"isLiked"`
}
