package handlers

import (
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/digital-library/backend/internal/middleware"
	"github.com/digital-library/backend/internal/models"
	"github.com/digital-library/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler. firebaseAuthClient may be nil
// when federated login is not configured.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes. Federated login
// is gated by FirebaseAuthMiddleware, which verifies the bearer ID token
// before the handler runs.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, requireAuth)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin, middleware.FirebaseAuthMiddleware(h.firebaseAuth))
	}
}

// Register handles local account registration with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	// Check if user with this email already exists
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		CreatedAt:    time.Now(),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": user.ToPublic()})
}

// Login handles credentials login. Suspended accounts are rejected before
// the password check.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "No user found with this email")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if isSuspended(user.Status) {
		return echo.NewHTTPError(http.StatusForbidden, "This user is suspended.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	if err := h.userRepository.UpdateLastLogin(ctx, user.ID); err != nil {
		c.Logger().Warnf("failed to stamp last login for %s: %v", user.ID.Hex(), err)
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user.ToPublic(),
	})
}

// Me returns the caller's own account record
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user.ToPublic()})
}

// FirebaseLogin completes a federated login: the ID token has already been
// verified by FirebaseAuthMiddleware; this provisions a local account on
// first sight and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	fbToken := middleware.FirebaseToken(c)
	if fbToken == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, fbToken.UID)
	if err == repositories.ErrUserNotFound {
		user = &models.User{
			Name:        claimString(fbToken.Claims, "name"),
			Email:       claimString(fbToken.Claims, "email"),
			Role:        models.RoleUser,
			Status:      models.StatusActive,
			CreatedAt:   time.Now(),
			FirebaseUID: fbToken.UID,
		}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if isSuspended(user.Status) {
		return echo.NewHTTPError(http.StatusForbidden, "This user is suspended.")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user.ToPublic()})
}

// generateJWT issues a 7-day HMAC token carrying id, name, email and role
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

// isSuspended treats legacy "blocked" and "banned" markers the same as
// Suspended
func isSuspended(status string) bool {
	switch strings.ToLower(status) {
	case "suspended", "blocked", "banned":
		return true
	}
	return false
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
