// Package httpapi is the HTTP transport over the authentication engine. It
// binds and validates request DTOs, hands them to the engine, and maps the
// outcomes onto status codes. No business decisions are made here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/services"
)

// Engine is the slice of the authentication service the transport needs.
type Engine interface {
	Register(ctx context.Context, req *services.RegisterRequest) (*services.RegisterResult, error)
	Login(ctx context.Context, email, password, ip string) (*services.AuthResult, error)
	Refresh(ctx context.Context, token, ip string) (*services.AuthResult, error)
	Revoke(ctx context.Context, token, ip string) (bool, error)
	Promote(ctx context.Context, userID string) error
	Demote(ctx context.Context, userID string) error
}

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	Roles                 []string  `json:"roles"`
}

// Handler carries the transport dependencies.
type Handler struct {
	engine Engine
	logger logging.Logger
}

func NewHandler(engine Engine, logger logging.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{err.Error()}})
		return
	}

	res, err := h.engine.Register(c.Request.Context(), &services.RegisterRequest{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		h.internalError(c, err)
		return
	}
	if !res.Succeeded {
		c.JSON(http.StatusBadRequest, gin.H{"errors": res.Errors})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": res.UserID})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{err.Error()}})
		return
	}

	res, err := h.engine.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if !res.Succeeded {
		c.JSON(http.StatusUnauthorized, gin.H{"error": common.ErrInvalidCredentials.Error()})
		return
	}
	c.JSON(http.StatusOK, toTokenPair(res))
}

func (h *Handler) refresh(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{err.Error()}})
		return
	}

	res, err := h.engine.Refresh(c.Request.Context(), req.RefreshToken, c.ClientIP())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if !res.Succeeded {
		c.JSON(http.StatusUnauthorized, gin.H{"error": common.ErrInvalidOrExpiredToken.Error()})
		return
	}
	c.JSON(http.StatusOK, toTokenPair(res))
}

func (h *Handler) revoke(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{err.Error()}})
		return
	}

	revoked, err := h.engine.Revoke(c.Request.Context(), req.RefreshToken, c.ClientIP())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}

func (h *Handler) promote(c *gin.Context) {
	h.adminAction(c, h.engine.Promote)
}

func (h *Handler) demote(c *gin.Context) {
	h.adminAction(c, h.engine.Demote)
}

func (h *Handler) adminAction(c *gin.Context, op func(ctx context.Context, userID string) error) {
	userID := c.Param("id")
	if err := op(c.Request.Context(), userID); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": common.ErrUserNotFound.Error()})
			return
		}
		h.internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.Error(c.Request.Context(), "request failed",
		"method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrInternal.Error()})
}

func toTokenPair(res *services.AuthResult) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:           res.AccessToken,
		AccessTokenExpiresAt:  res.AccessTokenExpiresAt,
		RefreshToken:          res.RefreshToken,
		RefreshTokenExpiresAt: res.RefreshTokenExpiresAt,
		Roles:                 res.Roles,
	}
}
