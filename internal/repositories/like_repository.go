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

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, mediaID, userID primitive.ObjectID) error
	DeleteLike(ctx context.Context, mediaID, userID primitive.ObjectID) error
	HasUserLikedMedia(ctx context.Context, mediaID, userID primitive.ObjectID) (bool, error)
	GetLikesCountByMediaID(ctx context.Context, mediaID primitive.ObjectID) (int64, error)
	GetLikeCountsByMediaIDs(ctx context.Context, mediaIDs []primitive.ObjectID) (map[string]int64, error)
	GetUserLikedMediaIDs(ctx context.Context, mediaIDs []primitive.ObjectID, userID primitive.ObjectID) (map[string]bool, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection("likes")}
}

// CreateLike inserts a like for the (mediaID, userID) pair
func (r *MongoLikeRepository) CreateLike(ctx context.Context, mediaID, userID primitive.ObjectID) error {
	like := models.Like{
		MediaID:   mediaID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	_, err := r.collection.InsertOne(ctx, like)
	return err
}

// DeleteLike removes the like for the (mediaID, userID) pair, if any.
// Deleting an absent like is not an error; unlike is idempotent.
func (r *MongoLikeRepository) DeleteLike(ctx context.Context, mediaID, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"mediaId": mediaID, "userId": userID})
	return err
}

// HasUserLikedMedia checks if a user has liked a specific media item
func (r *MongoLikeRepository) HasUserLikedMedia(ctx context.Context, mediaID, userID primitive.ObjectID) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"mediaId": mediaID, "userId": userID}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetLikesCountByMediaID retrieves the number of likes for a specific media item
func (r *MongoLikeRepository) GetLikesCountByMediaID(ctx context.Context, mediaID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"mediaId": mediaID})
}

// GetLikeCountsByMediaIDs computes per-item like counts for the requested set
// with a single grouped aggregation. Items with zero likes are absent from
// the result map.
func (r *MongoLikeRepository) GetLikeCountsByMediaIDs(ctx context.Context, mediaIDs []primitive.ObjectID) (map[string]int64, error) {
	counts := make(map[string]int64)
	if len(mediaIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"mediaId": bson.M{"$in": mediaIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$mediaId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		MediaID primitive.ObjectID `bson:"_id"`
		Count   int64              `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.MediaID.Hex()] = row.Count
	}
	return counts, nil
}

// GetUserLikedMediaIDs returns which of the requested media items the given
// user has liked, via one membership query
func (r *MongoLikeRepository) GetUserLikedMediaIDs(ctx context.Context, mediaIDs []primitive.ObjectID, userID primitive.ObjectID) (map[string]bool, error) {
	liked := make(map[string]bool)
	if len(mediaIDs) == 0 {
		return liked, nil
	}

	filter := bson.M{"mediaId": bson.M{"$in": mediaIDs}, "userId": userID}
	findOptions := options.Find().SetProjection(bson.M{"mediaId": 1})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		MediaID primitive.ObjectID `bson:"mediaId"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		liked[row.MediaID.Hex()] = true
	}
	return liked, nil
}
