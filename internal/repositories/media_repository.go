package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/digital-library/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrMediaNotFound is returned when no media record matches the given id
var ErrMediaNotFound = errors.New("media not found")

// maxMediaListing caps how many catalog items one listing returns
const maxMediaListing = 200

// MediaRepository defines the interface for media catalog operations
type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) error
	GetMediaByID(ctx context.Context, id primitive.ObjectID) (*models.Media, error)
	ListMedia(ctx context.Context, mediaType, scope string) ([]models.Media, error)
	UpdateMedia(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Media, error)
	DeleteMedia(ctx context.Context, id primitive.ObjectID) error
}

// MongoMediaRepository implements MediaRepository for MongoDB
type MongoMediaRepository struct {
	collection *mongo.Collection
}

// NewMongoMediaRepository creates a new MongoMediaRepository
func NewMongoMediaRepository(db *mongo.Database) *MongoMediaRepository {
	return &MongoMediaRepository{collection: db.Collection("media")}
}

// CreateMedia inserts a new media record
func (r *MongoMediaRepository) CreateMedia(ctx context.Context, media *models.Media) error {
	media.ID = primitive.NewObjectID()
	media.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, media)
	return err
}

// GetMediaByID retrieves a media record by id
func (r *MongoMediaRepository) GetMediaByID(ctx context.Context, id primitive.ObjectID) (*models.Media, error) {
	var media models.Media
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&media)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &media, nil
}

// ListMedia retrieves catalog items newest first, optionally filtered by
// type (video|image|pdf) and scope (dashboard|library)
func (r *MongoMediaRepository) ListMedia(ctx context.Context, mediaType, scope string) ([]models.Media, error) {
	filter := bson.M{}
	if mediaType != "" {
		filter["type"] = mediaType
	}
	if scope != "" {
		filter["scope"] = scope
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(maxMediaListing)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.Media
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateMedia applies the given field updates and returns the updated record
func (r *MongoMediaRepository) UpdateMedia(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Media, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var media models.Media
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&media)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &media, nil
}

// DeleteMedia deletes a media record by id
func (r *MongoMediaRepository) DeleteMedia(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMediaNotFound
	}
	return nil
}
