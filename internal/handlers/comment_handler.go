package handlers

import (
	"net/http"
	"strings"

	"github.com/digital-library/backend/internal/middleware"
	"github.com/digital-library/backend/internal/models"
	"github.com/digital-library/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository) *CommentHandler {
	return &CommentHandler{commentRepository: commentRepo}
}

// RegisterCommentRoutes registers comment-related routes. Listing is public;
// posting requires authentication.
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/comments", h.ListComments)
	g.POST("/comments", h.PostComment, requireAuth)
}

// ListComments returns the newest comments for a media item, capped at 200
func (h *CommentHandler) ListComments(c echo.Context) error {
	mediaID, err := primitive.ObjectIDFromHex(c.QueryParam("mediaId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid mediaId")
	}

	comments, err := h.commentRepository.GetCommentsByMediaID(c.Request().Context(), mediaID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	return c.JSON(http.StatusOK, echo.Map{"items": comments})
}

// PostComment creates an immutable comment on a media item. Text is trimmed;
// empty or whitespace-only text is rejected before any store call.
func (h *CommentHandler) PostComment(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}
	mediaID, err := primitive.ObjectIDFromHex(req.MediaID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}

	userName := claims.Name
	if userName == "" {
		userName = claims.Email
	}
	if userName == "" {
		userName = "User"
	}

	comment := &models.Comment{
		MediaID:  mediaID,
		UserID:   userID,
		UserName: userName,
		Text:     text,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": comment.ID.Hex(), "item": comment})
}
