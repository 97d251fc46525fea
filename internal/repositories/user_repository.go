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

// ErrUserNotFound is returned when no user record matches the given filter
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser inserts a new user record
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// GetUserByID retrieves a user by id
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email address
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByFirebaseUID retrieves a user linked to a Firebase account
func (r *MongoUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": firebaseUID})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsers retrieves all users, newest first, without credential fields
func (r *MongoUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"passwordHash": 0})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateStatus sets a user's account status (Active or Suspended)
func (r *MongoUserRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return r.updateOne(ctx, id, bson.M{"status": status})
}

// UpdateRole sets a user's role (admin or user)
func (r *MongoUserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	return r.updateOne(ctx, id, bson.M{"role": role})
}

// UpdateLastLogin stamps the user's last successful login time
func (r *MongoUserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"lastLogin": time.Now()})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser deletes a user record by id
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
