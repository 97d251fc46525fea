package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/digital-library/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedMedia(t *testing.T, repo *fakeMediaRepository, title, mediaType, scope string, createdAt time.Time) primitive.ObjectID {
	t.Helper()
	m := &models.Media{Title: title, Type: mediaType, Src: "/uploads/" + mediaType + "/x", Scope: scope}
	require.NoError(t, repo.CreateMedia(context.Background(), m))
	// CreateMedia stamps time.Now; rewind for ordering tests
	for i := range repo.items {
		if repo.items[i].ID == m.ID {
			repo.items[i].CreatedAt = createdAt
		}
	}
	return m.ID
}

func TestListMediaFilters(t *testing.T) {
	repo := &fakeMediaRepository{}
	h := NewMediaHandler(repo, t.TempDir())

	now := time.Now()
	seedMedia(t, repo, "Old clip", models.MediaTypeVideo, models.ScopeLibrary, now.Add(-time.Hour))
	seedMedia(t, repo, "New clip", models.MediaTypeVideo, models.ScopeLibrary, now)
	seedMedia(t, repo, "Handbook", models.MediaTypePDF, models.ScopeDashboard, now)

	c, rec := newTestContext(http.MethodGet, "/api/media?type=video&scope=library", nil)
	require.NoError(t, h.ListMedia(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []models.Media `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "New clip", resp.Items[0].Title, "listing is newest-first")
	assert.Equal(t, "video", repo.lastType)
	assert.Equal(t, "library", repo.lastScope)
}

func TestListMediaEmptyBody(t *testing.T) {
	h := NewMediaHandler(&fakeMediaRepository{}, t.TempDir())

	c, rec := newTestContext(http.MethodGet, "/api/media", nil)
	require.NoError(t, h.ListMedia(c))

	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestGetMedia(t *testing.T) {
	repo := &fakeMediaRepository{}
	h := NewMediaHandler(repo, t.TempDir())
	id := seedMedia(t, repo, "Handbook", models.MediaTypePDF, models.ScopeLibrary, time.Now())

	c, rec := newTestContext(http.MethodGet, "/api/media/"+id.Hex(), nil)
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	require.NoError(t, h.GetMedia(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Item models.Media `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.Item.ID)
	assert.Equal(t, "Handbook", resp.Item.Title)
}

func TestGetMediaUnknownID(t *testing.T) {
	h := NewMediaHandler(&fakeMediaRepository{}, t.TempDir())
	id := primitive.NewObjectID()

	c, _ := newTestContext(http.MethodGet, "/api/media/"+id.Hex(), nil)
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	err := h.GetMedia(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestGetMediaInvalidID(t *testing.T) {
	h := NewMediaHandler(&fakeMediaRepository{}, t.TempDir())

	c, _ := newTestContext(http.MethodGet, "/api/media/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	err := h.GetMedia(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestUploadStoresFileAndRecord(t *testing.T) {
	repo := &fakeMediaRepository{}
	uploadRoot := t.TempDir()
	h := NewMediaHandler(repo, uploadRoot)
	adminID := primitive.NewObjectID()

	req, rec := multipartUpload(t, map[string]string{
		"title": "Intro video",
		"type":  "VIDEO",
		"scope": "dashboard",
	}, "my intro (final).mp4", "movie-bytes")
	e := echo.New()
	c := e.NewContext(req, rec)
	asCaller(c, adminID, "Admin", "admin@example.com", models.RoleAdmin)

	require.NoError(t, h.Upload(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, repo.items, 1)
	item := repo.items[0]
	assert.Equal(t, "Intro video", item.Title)
	assert.Equal(t, models.MediaTypeVideo, item.Type)
	assert.Equal(t, models.ScopeDashboard, item.Scope)
	assert.Equal(t, adminID.Hex(), item.UploadedBy)
	assert.True(t, strings.HasPrefix(item.Src, "/uploads/video/"), "src %q", item.Src)
	assert.NotContains(t, item.Src, "(", "filename must be sanitized")

	onDisk := filepath.Join(uploadRoot, "video", filepath.Base(item.Src))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "movie-bytes", string(data))
}

func TestUploadRejectsBadType(t *testing.T) {
	repo := &fakeMediaRepository{}
	h := NewMediaHandler(repo, t.TempDir())

	req, rec := multipartUpload(t, map[string]string{"type": "exe"}, "virus.exe", "nope")
	e := echo.New()
	c := e.NewContext(req, rec)
	asCaller(c, primitive.NewObjectID(), "Admin", "admin@example.com", models.RoleAdmin)

	err := h.Upload(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Empty(t, repo.items)
}

func TestUploadRequiresFile(t *testing.T) {
	h := NewMediaHandler(&fakeMediaRepository{}, t.TempDir())

	req, rec := multipartUpload(t, map[string]string{"type": "image"}, "", "")
	e := echo.New()
	c := e.NewContext(req, rec)

	err := h.Upload(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestUpdateMediaTitleAndScope(t *testing.T) {
	repo := &fakeMediaRepository{}
	h := NewMediaHandler(repo, t.TempDir())
	id := seedMedia(t, repo, "Draft", models.MediaTypeImage, models.ScopeLibrary, time.Now())

	c, rec := newTestContext(http.MethodPatch, "/api/admin/media/"+id.Hex(), map[string]string{
		"title": "Published",
		"scope": "dashboard",
	})
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	require.NoError(t, h.UpdateMedia(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Item models.Media `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Published", resp.Item.Title)
	assert.Equal(t, models.ScopeDashboard, resp.Item.Scope)
}

func TestUpdateMediaNoValidFields(t *testing.T) {
	repo := &fakeMediaRepository{}
	h := NewMediaHandler(repo, t.TempDir())
	id := seedMedia(t, repo, "Draft", models.MediaTypeImage, models.ScopeLibrary, time.Now())

	c, _ := newTestContext(http.MethodPatch, "/api/admin/media/"+id.Hex(), map[string]string{"scope": "everywhere"})
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	err := h.UpdateMedia(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestUpdateMediaUnknownID(t *testing.T) {
	h := NewMediaHandler(&fakeMediaRepository{}, t.TempDir())
	id := primitive.NewObjectID()

	c, _ := newTestContext(http.MethodPatch, "/api/admin/media/"+id.Hex(), map[string]string{"title": "X"})
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	err := h.UpdateMedia(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestDeleteMedia(t *testing.T) {
	repo := &fakeMediaRepository{}
	h := NewMediaHandler(repo, t.TempDir())
	id := seedMedia(t, repo, "Doomed", models.MediaTypePDF, models.ScopeLibrary, time.Now())

	c, rec := newTestContext(http.MethodDelete, "/api/admin/media/"+id.Hex(), nil)
	c.SetParamNames("id")
	c.SetParamValues(id.Hex())
	require.NoError(t, h.DeleteMedia(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.items)
}

func TestDeleteMediaInvalidID(t *testing.T) {
	h := NewMediaHandler(&fakeMediaRepository{}, t.TempDir())

	c, _ := newTestContext(http.MethodDelete, "/api/admin/media/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	err := h.DeleteMedia(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
