package handlers

import (
	"net/http"

	"github.com/digital-library/backend/internal/models"
	"github.com/digital-library/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUserHandler handles the admin user-management routes
type AdminUserHandler struct {
	userRepository repositories.UserRepository
}

// NewAdminUserHandler creates a new AdminUserHandler
func NewAdminUserHandler(userRepo repositories.UserRepository) *AdminUserHandler {
	return &AdminUserHandler{userRepository: userRepo}
}

// RegisterAdminUserRoutes registers user-management routes on the admin group
func (h *AdminUserHandler) RegisterAdminUserRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.PATCH("/users/:id", h.UpdateUserStatus)
	g.PUT("/users/:id/role", h.UpdateUserRole)
	g.DELETE("/users/:id", h.DeleteUser)
}

// adminUserView is the row shape of the admin user listing
type adminUserView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Joined string `json:"joined"`
	Status string `json:"status"`
	Role   string `json:"role"`
}

// ListUsers returns all accounts, newest first
func (h *AdminUserHandler) ListUsers(c echo.Context) error {
	users, err := h.userRepository.GetUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views := make([]adminUserView, len(users))
	for i, u := range users {
		name := u.Name
		if name == "" {
			name = "Unnamed"
		}
		status := models.StatusActive
		if u.Status == models.StatusSuspended {
			status = models.StatusSuspended
		}
		role := models.RoleUser
		if u.Role == models.RoleAdmin {
			role = models.RoleAdmin
		}
		views[i] = adminUserView{
			ID:     u.ID.Hex(),
			Name:   name,
			Email:  u.Email,
			Joined: u.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			Status: status,
			Role:   role,
		}
	}

	return c.JSON(http.StatusOK, views)
}

// UpdateUserStatus activates or suspends an account
func (h *AdminUserHandler) UpdateUserStatus(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}

	var req models.UpdateUserStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}

	if err := h.userRepository.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// UpdateUserRole promotes or demotes an account between user and admin
func (h *AdminUserHandler) UpdateUserRole(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}

	var req models.UpdateUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	}

	if err := h.userRepository.UpdateRole(c.Request().Context(), id, req.Role); err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "role": req.Role})
}

// DeleteUser removes an account
func (h *AdminUserHandler) DeleteUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user id")
	}

	if err := h.userRepository.DeleteUser(c.Request().Context(), id); err != nil {
		if err == repositories.ErrUserNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
