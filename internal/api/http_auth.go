package api

import (
	"context"
	"errors"
	"meteoapi/internal/auth"
	"meteoapi/internal/entity/converter"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const tokenTypeBearer = "Bearer"

func (h *HTTPHandler) Register(c *gin.Context) {
	if !h.cfg.RegistrationEnabled {
		ErrorResponse(c, http.StatusForbidden, ErrCodeRegistrationClosed, "registration disabled")
		return
	}

	var req dto.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := auth.ValidateUsername(username); err != nil {
		BadRequest(c, ErrCodeInvalidArgument, err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		BadRequest(c, ErrCodeInvalidArgument, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "failed to register user")
		return
	}

	user := &db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         db.UserRoleUser,
		IsActive:     true,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, ErrCodeUserExists, "username or email already registered")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to register user")
		return
	}

	h.respondWithTokens(c, http.StatusCreated, user)
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req dto.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		BadRequest(c, ErrCodeMissingField, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("failed to load user for login")
			InternalError(c, "failed to process login")
			return
		}
		logrus.WithField("login", login).Warn("login attempt for unknown user")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid username or password")
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		logrus.WithField("login", login).Warn("password verification failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid username or password")
		return
	}

	if !user.IsActive {
		ErrorResponse(c, http.StatusForbidden, ErrCodeUserDisabled, "user is disabled")
		return
	}

	h.respondWithTokens(c, http.StatusOK, user)
}

func (h *HTTPHandler) Refresh(c *gin.Context) {
	var req dto.AuthRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	claims, err := h.authManager.ParseRefreshToken(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeSessionExpired, "refresh token invalid or expired")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unauthorized(c, "user not found")
			return
		}
		logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user for refresh")
		InternalError(c, "failed to refresh session")
		return
	}
	if !user.IsActive {
		ErrorResponse(c, http.StatusForbidden, ErrCodeUserDisabled, "user is disabled")
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to refresh session")
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   expiresAt,
	})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load user profile")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, converter.UserToSummary(dbUser))
}

// Logout 令牌无服务端状态，由客户端丢弃
func (h *HTTPHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *HTTPHandler) respondWithTokens(c *gin.Context, status int, user *db.User) {
	pair, err := h.authManager.GenerateTokenPair(user)
	if err != nil {
		logrus.WithError(err).Error("failed to create token for user")
		InternalError(c, "failed to create session")
		return
	}

	c.JSON(status, dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresAt:    pair.AccessExpiresAt,
		User:         converter.UserToSummary(user),
	})
}
