package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like marks a single user's endorsement of one media item. At most one
// like exists per (mediaId, userId) pair; the toggle flow enforces that
// before inserting.
type Like struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MediaID   primitive.ObjectID `json:"mediaId" bson:"mediaId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Like actions accepted by the toggle endpoint.
const (
	LikeActionLike   = "like"
	LikeActionUnlike = "unlike"
	LikeActionToggle = "toggle"
)

// ToggleLikeRequest defines the request body for POST /api/likes
type ToggleLikeRequest struct {
	MediaID string `json:"mediaId" validate:"required"`
	Action  string `json:"action" validate:"omitempty,oneof=like unlike toggle"`
}

// BulkLikeStateRequest defines the request body for POST /api/likes/bulk
type BulkLikeStateRequest struct {
	MediaIDs []string `json:"mediaIds"`
}

// LikeState is the per-item response of the like-state endpoints
type LikeState struct {
	Count int64 `json:"count"`
	Liked bool  `json:"liked"`
}

// BulkLikeState maps media ids (hex) to counts and liked flags. Items with
// zero likes are absent from Counts; callers treat absent as zero.
type BulkLikeState struct {
	Counts map[string]int64 `json:"counts"`
	Liked  map[string]bool  `json:"liked"`
}
