package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media types and presentation scopes.
const (
	MediaTypeVideo = "video"
	MediaTypeImage = "image"
	MediaTypePDF   = "pdf"

	ScopeDashboard = "dashboard"
	ScopeLibrary   = "library"
)

// Media represents an uploaded image, video or PDF in the media collection
type Media struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Type        string             `json:"type" bson:"type"`
	Src         string             `json:"src" bson:"src"`
	Scope       string             `json:"scope" bson:"scope"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UploadedBy  string             `json:"uploadedBy,omitempty" bson:"uploadedBy,omitempty"`
}

// UpdateMediaRequest defines the request body for PATCH /api/admin/media/:id.
// Only title and scope are editable; anything else on the record is fixed at
// upload time.
type UpdateMediaRequest struct {
	Title *string `json:"title"`
	Scope *string `json:"scope"`
}

// ValidMediaType reports whether t is one of the supported upload types
func ValidMediaType(t string) bool {
	switch t {
	case MediaTypeVideo, MediaTypeImage, MediaTypePDF:
		return true
	}
	return false
}
