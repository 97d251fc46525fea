package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is one user-authored remark attached to one media item.
// Comments are immutable once created; there is no edit or delete.
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	MediaID   primitive.ObjectID `json:"mediaId" bson:"mediaId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	UserName  string             `json:"userName" bson:"userName"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateCommentRequest defines the request body for POST /api/comments.
// Text is trimmed before the required check is applied.
type CreateCommentRequest struct {
	MediaID string `json:"mediaId" validate:"required"`
	Text    string `json:"text"`
}
