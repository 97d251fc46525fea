package handlers

import (
	"net/http"

	"github.com/digital-library/backend/internal/middleware"
	"github.com/digital-library/backend/internal/models"
	"github.com/digital-library/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository) *LikeHandler {
	return &LikeHandler{likeRepository: likeRepo}
}

// RegisterLikeRoutes registers like-related routes. State lookups allow
// anonymous callers; the toggle mutation requires authentication.
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/likes", h.GetLikeState, optionalAuth)
	g.POST("/likes", h.ToggleLike, requireAuth)
	g.POST("/likes/bulk", h.GetLikeStatesBulk, optionalAuth)
}

// GetLikeState returns the like count for a media item and whether the
// caller has liked it. Anonymous callers always get liked=false.
func (h *LikeHandler) GetLikeState(c echo.Context) error {
	mediaID, err := primitive.ObjectIDFromHex(c.QueryParam("mediaId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid mediaId")
	}

	claims := middleware.CurrentUser(c)

	// The two reads are independent; issue them concurrently.
	var state models.LikeState
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		count, err := h.likeRepository.GetLikesCountByMediaID(ctx, mediaID)
		state.Count = count
		return err
	})
	if claims != nil {
		if userID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
			g.Go(func() error {
				liked, err := h.likeRepository.HasUserLikedMedia(ctx, mediaID, userID)
				state.Liked = liked
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusOK, state)
}

// GetLikeStatesBulk returns like counts and caller liked-state for a set of
// media items. Counts come from a single grouped aggregation; entries absent
// from counts have zero likes. Malformed ids are silently dropped: they
// cannot match anything, so excluding them is equivalent to reporting zero.
func (h *LikeHandler) GetLikeStatesBulk(c echo.Context) error {
	var req models.BulkLikeStateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	result := models.BulkLikeState{
		Counts: map[string]int64{},
		Liked:  map[string]bool{},
	}

	mediaIDs := make([]primitive.ObjectID, 0, len(req.MediaIDs))
	for _, id := range req.MediaIDs {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			mediaIDs = append(mediaIDs, objID)
		}
	}
	if len(mediaIDs) == 0 {
		return c.JSON(http.StatusOK, result)
	}

	counts, err := h.likeRepository.GetLikeCountsByMediaIDs(c.Request().Context(), mediaIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	result.Counts = counts

	if claims := middleware.CurrentUser(c); claims != nil {
		if userID, idErr := primitive.ObjectIDFromHex(claims.UserID); idErr == nil {
			liked, err := h.likeRepository.GetUserLikedMediaIDs(c.Request().Context(), mediaIDs, userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
			}
			result.Liked = liked
		}
	}

	return c.JSON(http.StatusOK, result)
}

// ToggleLike creates or removes the caller's like on a media item.
// Actions "like" and "unlike" are idempotent; "toggle" (the default) flips
// the current state. The returned count is re-read after the mutation so it
// reflects concurrent likes from other users.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	mediaID, err := primitive.ObjectIDFromHex(req.MediaID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid mediaId")
	}

	action := req.Action
	if action == "" {
		action = models.LikeActionToggle
	}

	ctx := c.Request().Context()

	// Check-then-act: read the existing like, then insert or delete.
	// Concurrent toggles by the same user leave whichever write landed last.
	existing, err := h.likeRepository.HasUserLikedMedia(ctx, mediaID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	var liked bool
	switch action {
	case models.LikeActionLike:
		if !existing {
			if err := h.likeRepository.CreateLike(ctx, mediaID, userID); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
			}
		}
		liked = true
	case models.LikeActionUnlike:
		if existing {
			if err := h.likeRepository.DeleteLike(ctx, mediaID, userID); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
			}
		}
		liked = false
	default:
		if existing {
			if err := h.likeRepository.DeleteLike(ctx, mediaID, userID); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
			}
			liked = false
		} else {
			if err := h.likeRepository.CreateLike(ctx, mediaID, userID); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
			}
			liked = true
		}
	}

	count, err := h.likeRepository.GetLikesCountByMediaID(ctx, mediaID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusOK, models.LikeState{Count: count, Liked: liked})
}
