package repositories

import (
	"context"
	"time"

	"github.com/digital-library/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxCommentsPerMedia caps how many comments a single listing returns.
// There is no pagination cursor; callers only ever see the newest 200.
const MaxCommentsPerMedia = 200

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByMediaID(ctx context.Context, mediaID primitive.ObjectID) ([]models.Comment, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment inserts a new comment with a server-assigned id and timestamp
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentsByMediaID retrieves comments for a media item, newest first,
// capped at MaxCommentsPerMedia
func (r *MongoCommentRepository) GetCommentsByMediaID(ctx context.Context, mediaID primitive.ObjectID) ([]models.Comment, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(MaxCommentsPerMedia)
	cursor, err := r.collection.Find(ctx, bson.M{"mediaId": mediaID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
