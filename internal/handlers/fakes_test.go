package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"time"

	"github.com/digital-library/backend/internal/models"
	"github.com/digital-library/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes of the repository interfaces. They mirror the store
// semantics the handlers rely on: filtered counts, newest-first sorted
// listing with the 200 cap, and absent entries for zero-like items.

type likeKey struct {
	media string
	user  string
}

type fakeLikeRepository struct {
	likes map[likeKey]time.Time
	err   error
}

func newFakeLikeRepository() *fakeLikeRepository {
	return &fakeLikeRepository{likes: make(map[likeKey]time.Time)}
}

func (f *fakeLikeRepository) CreateLike(_ context.Context, mediaID, userID primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	f.likes[likeKey{mediaID.Hex(), userID.Hex()}] = time.Now()
	return nil
}

func (f *fakeLikeRepository) DeleteLike(_ context.Context, mediaID, userID primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	delete(f.likes, likeKey{mediaID.Hex(), userID.Hex()})
	return nil
}

func (f *fakeLikeRepository) HasUserLikedMedia(_ context.Context, mediaID, userID primitive.ObjectID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.likes[likeKey{mediaID.Hex(), userID.Hex()}]
	return ok, nil
}

func (f *fakeLikeRepository) GetLikesCountByMediaID(_ context.Context, mediaID primitive.ObjectID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for k := range f.likes {
		if k.media == mediaID.Hex() {
			count++
		}
	}
	return count, nil
}

func (f *fakeLikeRepository) GetLikeCountsByMediaIDs(_ context.Context, mediaIDs []primitive.ObjectID) (map[string]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[string]int64)
	for _, id := range mediaIDs {
		for k := range f.likes {
			if k.media == id.Hex() {
				counts[id.Hex()]++
			}
		}
	}
	return counts, nil
}

func (f *fakeLikeRepository) GetUserLikedMediaIDs(_ context.Context, mediaIDs []primitive.ObjectID, userID primitive.ObjectID) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	liked := make(map[string]bool)
	for _, id := range mediaIDs {
		if _, ok := f.likes[likeKey{id.Hex(), userID.Hex()}]; ok {
			liked[id.Hex()] = true
		}
	}
	return liked, nil
}

type fakeCommentRepository struct {
	comments []models.Comment
	err      error
}

func (f *fakeCommentRepository) CreateComment(_ context.Context, comment *models.Comment) error {
	if f.err != nil {
		return f.err
	}
	comment.ID = primitive.NewObjectID()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepository) GetCommentsByMediaID(_ context.Context, mediaID primitive.ObjectID) ([]models.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Comment
	for _, cm := range f.comments {
		if cm.MediaID == mediaID {
			out = append(out, cm)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > repositories.MaxCommentsPerMedia {
		out = out[:repositories.MaxCommentsPerMedia]
	}
	return out, nil
}

type fakeUserRepository struct {
	users map[string]*models.User
	err   error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*models.User)}
}

func (f *fakeUserRepository) CreateUser(_ context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	f.users[user.ID.Hex()] = &cp
	return nil
}

func (f *fakeUserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id.Hex()]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepository) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.FirebaseUID == firebaseUID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepository) GetUsers(_ context.Context) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, u := range f.users {
		cp := *u
		cp.PasswordHash = ""
		out = append(out, cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeUserRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	return f.update(id, func(u *models.User) { u.Status = status })
}

func (f *fakeUserRepository) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	return f.update(id, func(u *models.User) { u.Role = role })
}

func (f *fakeUserRepository) UpdateLastLogin(_ context.Context, id primitive.ObjectID) error {
	now := time.Now()
	return f.update(id, func(u *models.User) { u.LastLogin = &now })
}

func (f *fakeUserRepository) update(id primitive.ObjectID, apply func(*models.User)) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.users[id.Hex()]
	if !ok {
		return repositories.ErrUserNotFound
	}
	apply(u)
	return nil
}

func (f *fakeUserRepository) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[id.Hex()]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(f.users, id.Hex())
	return nil
}

type fakeMediaRepository struct {
	items     []models.Media
	lastType  string
	lastScope string
	err       error
}

func (f *fakeMediaRepository) CreateMedia(_ context.Context, media *models.Media) error {
	if f.err != nil {
		return f.err
	}
	media.ID = primitive.NewObjectID()
	media.CreatedAt = time.Now()
	f.items = append(f.items, *media)
	return nil
}

func (f *fakeMediaRepository) GetMediaByID(_ context.Context, id primitive.ObjectID) (*models.Media, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.items {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMediaNotFound
}

func (f *fakeMediaRepository) ListMedia(_ context.Context, mediaType, scope string) ([]models.Media, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastType, f.lastScope = mediaType, scope
	var out []models.Media
	for _, m := range f.items {
		if mediaType != "" && m.Type != mediaType {
			continue
		}
		if scope != "" && m.Scope != scope {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeMediaRepository) UpdateMedia(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Media, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			if title, ok := fields["title"].(string); ok {
				f.items[i].Title = title
			}
			if scope, ok := fields["scope"].(string); ok {
				f.items[i].Scope = scope
			}
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrMediaNotFound
}

func (f *fakeMediaRepository) DeleteMedia(_ context.Context, id primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMediaNotFound
}

// newTestContext builds an Echo context around an httptest request. body may
// be nil, a raw io.Reader, or a value to JSON-encode.
func newTestContext(method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		buf, _ := json.Marshal(b)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asCaller marks the context as authenticated with the given identity
func asCaller(c echo.Context, id primitive.ObjectID, name, email, role string) *models.JwtCustomClaims {
	claims := &models.JwtCustomClaims{UserID: id.Hex(), Name: name, Email: email, Role: role}
	c.Set("user", claims)
	return claims
}
