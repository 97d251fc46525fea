package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/digital-library/backend/internal/middleware"
	"github.com/digital-library/backend/internal/models"
	"github.com/digital-library/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// MediaHandler handles the media catalog and admin upload/maintenance routes
type MediaHandler struct {
	mediaRepository repositories.MediaRepository
	uploadRoot      string
}

// NewMediaHandler creates a new MediaHandler. Uploaded files land under
// uploadRoot/<type>/ and are served at /uploads/<type>/<filename>.
func NewMediaHandler(mediaRepo repositories.MediaRepository, uploadRoot string) *MediaHandler {
	return &MediaHandler{mediaRepository: mediaRepo, uploadRoot: uploadRoot}
}

// RegisterMediaRoutes registers the public catalog routes
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/media", h.ListMedia)
	g.GET("/media/:id", h.GetMedia)
}

// RegisterAdminRoutes registers upload and catalog maintenance routes on the
// admin group
func (h *MediaHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/uploads", h.Upload)
	g.PATCH("/media/:id", h.UpdateMedia)
	g.DELETE("/media/:id", h.DeleteMedia)
}

// ListMedia returns catalog items, optionally filtered by type and scope
func (h *MediaHandler) ListMedia(c echo.Context) error {
	items, err := h.mediaRepository.ListMedia(c.Request().Context(), c.QueryParam("type"), c.QueryParam("scope"))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if items == nil {
		items = []models.Media{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMedia returns a single catalog item
func (h *MediaHandler) GetMedia(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	item, err := h.mediaRepository.GetMediaByID(c.Request().Context(), id)
	if err != nil {
		if err == repositories.ErrMediaNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

// Upload stores a media file on disk and inserts its catalog record
func (h *MediaHandler) Upload(c echo.Context) error {
	claims := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}
	mediaType := strings.ToLower(c.FormValue("type"))
	if !models.ValidMediaType(mediaType) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}
	title := c.FormValue("title")
	if title == "" {
		title = "Untitled"
	}
	scope := strings.ToLower(c.FormValue("scope"))
	if scope != models.ScopeDashboard {
		scope = models.ScopeLibrary
	}

	src, err := h.saveFile(fileHeader.Filename, mediaType, fileHeader)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed")
	}

	media := &models.Media{
		Title: title,
		Type:  mediaType,
		Src:   src,
		Scope: scope,
	}
	if claims != nil {
		media.UploadedBy = claims.UserID
	}

	if err := h.mediaRepository.CreateMedia(c.Request().Context(), media); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": media.ID.Hex(), "item": media})
}

func (h *MediaHandler) saveFile(name, mediaType string, fileHeader *multipart.FileHeader) (string, error) {
	dir := filepath.Join(h.uploadRoot, mediaType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	safeBase := unsafeFilenameChars.ReplaceAllString(filepath.Base(name), "_")
	if safeBase == "" || safeBase == "." {
		safeBase = mediaType
	}
	filename := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), safeBase)

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "/uploads/" + mediaType + "/" + filename, nil
}

// UpdateMedia edits a catalog record's title or scope and returns the
// updated item
func (h *MediaHandler) UpdateMedia(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	var req models.UpdateMediaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	update := bson.M{}
	if req.Title != nil {
		update["title"] = *req.Title
	}
	if req.Scope != nil && (*req.Scope == models.ScopeDashboard || *req.Scope == models.ScopeLibrary) {
		update["scope"] = *req.Scope
	}
	if len(update) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No valid fields")
	}

	item, err := h.mediaRepository.UpdateMedia(c.Request().Context(), id, update)
	if err != nil {
		if err == repositories.ErrMediaNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

// DeleteMedia removes a catalog record
func (h *MediaHandler) DeleteMedia(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	if err := h.mediaRepository.DeleteMedia(c.Request().Context(), id); err != nil {
		if err == repositories.ErrMediaNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Not found")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
