package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskvault/taskvault/internal/application"
	"github.com/taskvault/taskvault/internal/domain/repository"
	"github.com/taskvault/taskvault/internal/interface/middleware"
	"github.com/taskvault/taskvault/pkg/avatar"
	"github.com/taskvault/taskvault/pkg/response"
	"github.com/taskvault/taskvault/pkg/validation"
)

type UserHandler struct {
	Svc            *application.UserService
	Tasks          *application.TaskService
	Logger         *logrus.Logger
	AvatarMaxBytes int64
}

func NewUserHandler(svc *application.UserService, tasks *application.TaskService, logger *logrus.Logger, avatarMaxBytes int64) *UserHandler {
	return &UserHandler{Svc: svc, Tasks: tasks, Logger: logger, AvatarMaxBytes: avatarMaxBytes}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Age      *int   `json:"age" binding:"omitempty,gte=0"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and immediately logs it in.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, tok, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": u, "token": tok}, "account created")
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, tok, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password answer identically.
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u, "token": tok}, "login successful")
}

// Logout revokes only the session the request authenticated with.
func (h *UserHandler) Logout(c *gin.Context) {
	u := middleware.Account(c)
	if err := h.Svc.Logout(c.Request.Context(), u.ID, middleware.SessionToken(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// LogoutAll clears every session of the account.
func (h *UserHandler) LogoutAll(c *gin.Context) {
	u := middleware.Account(c)
	if err := h.Svc.LogoutAll(c.Request.Context(), u.ID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "all sessions revoked")
}

func (h *UserHandler) GetMe(c *gin.Context) {
	response.Success(c, http.StatusOK, middleware.Account(c), "profile")
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	payload, err := validation.DecodeUpdate(body)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"payload": "invalid json"})
		return
	}
	u := middleware.Account(c)
	updated, err := h.Svc.UpdateProfile(c.Request.Context(), u.ID, payload)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated, "profile updated")
}

// DeleteMe removes the account, its sessions and tasks, and queues the
// cancellation mail.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	u := middleware.Account(c)
	deleted, err := h.Svc.DeleteAccount(c.Request.Context(), u.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if h.Tasks != nil {
		h.Tasks.PurgeOwner(c.Request.Context(), u.ID)
	}
	response.Success(c, http.StatusOK, deleted, "account deleted")
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	if file.Size > h.AvatarMaxBytes {
		response.Error[any](c, http.StatusBadRequest, "avatar exceeds maximum size", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file unreadable", nil)
		return
	}
	defer func() { _ = src.Close() }()
	data, err := io.ReadAll(io.LimitReader(src, h.AvatarMaxBytes+1))
	if err != nil || int64(len(data)) > h.AvatarMaxBytes {
		response.Error[any](c, http.StatusBadRequest, "avatar exceeds maximum size", nil)
		return
	}

	u := middleware.Account(c)
	if err := h.Svc.SetAvatar(c.Request.Context(), u.ID, file.Filename, data); err != nil {
		if errors.Is(err, avatar.ErrUnsupportedImage) {
			response.Error[any](c, http.StatusBadRequest, "please upload a valid image (jpg, jpeg or png)", nil)
			return
		}
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"uploaded": true}, "avatar stored")
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	u := middleware.Account(c)
	if err := h.Svc.DeleteAvatar(c.Request.Context(), u.ID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "avatar cleared")
}

// GetAvatar serves any account's avatar PNG. Missing account and missing
// avatar answer identically with 404.
func (h *UserHandler) GetAvatar(c *gin.Context) {
	data, err := h.Svc.GetAvatar(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "not found", nil)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// writeServiceError translates service errors into the response taxonomy.
// Anything unrecognized is an opaque storage failure.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, repository.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, repository.ErrDuplicateEmail):
		response.Error[any](c, http.StatusBadRequest, "email already in use", nil)
	case errors.Is(err, validation.ErrInvalidUpdateFields):
		response.Error[any](c, http.StatusBadRequest, "invalid update params", err.Error())
	case errors.Is(err, application.ErrValidation):
		response.Error[any](c, http.StatusBadRequest, "validation failed", err.Error())
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
