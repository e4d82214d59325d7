package handler

import (
	"net/http"
	"strings"

	"workspace/internal/auth"
	"workspace/internal/model"
	"workspace/internal/repository"
	"workspace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	users     *repository.UserRepository
	jwtSecret string
	log       *logrus.Logger
}

func NewUserHandler(users *repository.UserRepository, jwtSecret string, log *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, jwtSecret: jwtSecret, log: log}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=6"`
	Avatar   string `json:"avatar"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	const op = "handler.User.Register"

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid input").JSON(c)
		return
	}

	req.Email = strings.ToLower(req.Email)

	existing, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("directory lookup failed")
		response.NewInternalError().JSON(c)
		return
	}
	if existing != nil {
		response.NewConflictError("user already exists").JSON(c)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("hash failed")
		response.NewInternalError().JSON(c)
		return
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          req.Email,
		Name:           req.Name,
		Avatar:         req.Avatar,
		HashedPassword: string(hash),
		Verified:       true,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("user create failed")
		response.NewInternalError().JSON(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	const op = "handler.User.Login"

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.NewValidationError("invalid input").JSON(c)
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("directory lookup failed")
		response.NewInternalError().JSON(c)
		return
	}
	if user == nil {
		response.NewAuthError("invalid credentials").JSON(c)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		response.NewAuthError("invalid credentials").JSON(c)
		return
	}

	token, err := auth.GenerateToken(user.ID.String(), h.jwtSecret)
	if err != nil {
		h.log.WithField("operation", op).WithError(err).Error("token issue failed")
		response.NewInternalError().JSON(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":     user.ID,
			"email":  user.Email,
			"name":   user.Name,
			"avatar": user.Avatar,
		},
	})
}
