package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles and statuses recognised across the application.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive    = "Active"
	StatusSuspended = "Suspended"
)

// User represents a registered account in the users collection
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash,omitempty"` // Store hashed password, ignore for JSON serialization
	Role         string             `json:"role" bson:"role"`
	Status       string             `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	LastLogin    *time.Time         `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	FirebaseUID  string             `json:"firebase_uid,omitempty" bson:"firebaseUid,omitempty"` // Link to Firebase User UID
}

// PublicUser is the account shape returned to clients (no credentials)
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ToPublic strips credential fields for API responses
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// RegisterRequest defines the request body for local account registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the request body for credentials login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Suspended"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
