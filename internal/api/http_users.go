package api

import (
	"context"
	"errors"
	"meteoapi/internal/auth"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/converter"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query dto.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	query.Normalize(20, 100)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to load users")
		return
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users: converter.UsersToSummaries(users),
		Meta:  meta,
	})
}

func (h *HTTPHandler) CreateUser(c *gin.Context) {
	var req dto.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	username := strings.TrimSpace(req.Username)
	if err := auth.ValidateUsername(username); err != nil {
		BadRequest(c, ErrCodeInvalidArgument, err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		BadRequest(c, ErrCodeInvalidArgument, err.Error())
		return
	}
	role := sanitizeRole(req.Role)
	if role == "" {
		BadRequest(c, ErrCodeInvalidArgument, "invalid role")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password for new user")
		InternalError(c, "failed to create user")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user := &db.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		IsActive:     isActive,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, ErrCodeUserExists, "username or email already registered")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, converter.UserToSummary(user))
}

func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	requestUser := CurrentUser(c)
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	var updates entity.UserUpdates
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			BadRequest(c, ErrCodeInvalidArgument, "email must not be empty")
			return
		}
		updates.Email = &email
	}
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			BadRequest(c, ErrCodeInvalidArgument, err.Error())
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			logrus.WithError(err).Error("failed to hash password for update")
			InternalError(c, "failed to update user")
			return
		}
		updates.PasswordHash = &hash
	}
	if req.Role != nil {
		role := sanitizeRole(*req.Role)
		if role == "" {
			BadRequest(c, ErrCodeInvalidArgument, "invalid role")
			return
		}
		if requestUser != nil && requestUser.ID == id && role != db.UserRoleAdmin {
			BadRequest(c, ErrCodeCannotDeactivateSelf, "cannot remove your own admin role")
			return
		}
		updates.Role = &role
	}
	if req.IsActive != nil {
		if requestUser != nil && requestUser.ID == id && !*req.IsActive {
			BadRequest(c, ErrCodeCannotDeactivateSelf, "cannot deactivate current user")
			return
		}
		updates.IsActive = req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !updates.IsEmpty() {
		if err := h.repo.UpdateUser(ctx, id, updates); err != nil {
			h.userError(c, err, "failed to update user")
			return
		}
	}

	updated, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		h.userError(c, err, "failed to load updated user")
		return
	}

	c.JSON(http.StatusOK, converter.UserToSummary(updated))
}

// DeleteUser 停用账户，保留其站点关联
func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	requestUser := CurrentUser(c)
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if requestUser != nil && requestUser.ID == id {
		BadRequest(c, ErrCodeCannotDeactivateSelf, "cannot deactivate current user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	inactive := false
	if err := h.repo.UpdateUser(ctx, id, entity.UserUpdates{IsActive: &inactive}); err != nil {
		h.userError(c, err, "failed to deactivate user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) userError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, ErrCodeUserNotFound, "user not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		Conflict(c, ErrCodeUserExists, "email already registered")
	default:
		logrus.WithError(err).Error(message)
		InternalError(c, message)
	}
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

func sanitizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case db.UserRoleAdmin:
		return db.UserRoleAdmin
	case db.UserRoleUser:
		return db.UserRoleUser
	default:
		return ""
	}
}
