package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// AccountStore is the subset of repository.UserRepo used for account
// administration.
type AccountStore interface {
	Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateAccess(ctx context.Context, id uint64, role string, active bool) error
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
	Delete(ctx context.Context, id uint64) error
}

// SessionRevoker ends every refresh session of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// UserAdminHandler lets ADMIN users manage accounts.
type UserAdminHandler struct {
	Users      AccountStore
	Sessions   SessionRevoker
	BcryptCost int
}

func NewUserAdminHandler(users AccountStore, sessions SessionRevoker, bcryptCost int) *UserAdminHandler {
	return &UserAdminHandler{Users: users, Sessions: sessions, BcryptCost: bcryptCost}
}

var roles = map[string]bool{model.RoleCustomer: true, model.RoleAdmin: true}

type accountResp struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResp(u model.User) accountResp {
	return accountResp{ID: u.ID, Email: u.Email, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt}
}

// ListUsers GET /v1/admin/users
func (h *UserAdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()
	list, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]accountResp, 0, len(list))
	for _, u := range list {
		out = append(out, toAccountResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser POST /v1/admin/users
func (h *UserAdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = repository.NormalizeEmail(req.Email)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if !strings.Contains(req.Email, "@") || len(req.Password) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email and password of at least 8 characters required"})
	}
	if !roles[req.Role] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be CUSTOMER or ADMIN"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, req.Role, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusCreated, toAccountResp(u))
}

type updateUserReq struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// UpdateUser PATCH /v1/admin/users/:id
// Omitted fields are left unchanged.  Deactivating an account or
// resetting its password ends its refresh sessions.
func (h *UserAdminHandler) UpdateUser(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	self, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	role, active := u.Role, u.IsActive
	if req.Role != nil {
		role = strings.ToUpper(strings.TrimSpace(*req.Role))
		if !roles[role] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be CUSTOMER or ADMIN"})
		}
	}
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if id == self && (role != model.RoleAdmin || !active) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot demote or deactivate your own account"})
	}
	if req.Password != nil && len(*req.Password) < minPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	if role != u.Role || active != u.IsActive {
		if err := h.Users.UpdateAccess(ctx, id, role, active); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
		}
	}
	if req.Password != nil {
		if err := h.Users.UpdatePassword(ctx, id, *req.Password, h.BcryptCost); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
		}
	}
	if (u.IsActive && !active) || req.Password != nil {
		if err := h.Sessions.RevokeAllForUser(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
		}
	}

	u.Role, u.IsActive = role, active
	return c.JSON(http.StatusOK, toAccountResp(u))
}

// DeleteUser DELETE /v1/admin/users/:id
// Accounts that hold reservations cannot be deleted; deactivate them
// instead.
func (h *UserAdminHandler) DeleteUser(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	self, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if id == self {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), defaultTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrInUse):
			return c.JSON(http.StatusConflict, echo.Map{"error": "user has reservations; deactivate instead"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
