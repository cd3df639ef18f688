package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lucasperes/helpdesk-api/config"
	"github.com/lucasperes/helpdesk-api/models"
	"github.com/lucasperes/helpdesk-api/utils"
)

// AuthController handles registration, login, profile editing and the
// password-reset stub
type AuthController struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
}

// NewAuthController builds the controller with its injected dependencies
func NewAuthController(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AuthController {
	return &AuthController{db: db, cfg: cfg, log: log}
}

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty"`
}

// Register handles POST /clientes - creates a new user account
func (ctl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "nome, email e senha são obrigatórios")
		return
	}

	role := models.RoleUsuario
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("perfil %q inválido", req.Role))
			return
		}
		role = parsed
	}

	// Duplicate emails are checked case-insensitively among active users
	var count int64
	if err := ctl.db.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?) AND active = ?", req.Email, true).
		Count(&count).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "já existe um usuário com este email")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := ctl.db.Create(&user).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

// LoginRequest represents the request body for authentication
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /login - verifies credentials and returns the profile.
// An unknown email and a wrong password produce the same response so the
// endpoint cannot be used to enumerate accounts.
func (ctl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email e senha são obrigatórios")
		return
	}

	var user models.User
	err := ctl.db.Where("LOWER(email) = LOWER(?) AND active = ?", req.Email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusUnauthorized, "email ou senha inválidos")
		return
	}
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		respondError(c, http.StatusUnauthorized, "email ou senha inválidos")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfileRequest represents the request body for self profile edits
type UpdateProfileRequest struct {
	UserID   uint   `json:"userId" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

// UpdateProfile handles PUT /atualizar-perfil - edits the caller's own
// name, email and optionally password
func (ctl *AuthController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "userId, nome e email são obrigatórios")
		return
	}

	var user models.User
	err := ctl.db.Where("id = ? AND active = ?", req.UserID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "usuário não encontrado")
		return
	}
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	// The uniqueness check excludes the caller's own row so re-saving the
	// same email is not a conflict
	var count int64
	if err := ctl.db.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?) AND active = ? AND id <> ?", req.Email, true, user.ID).
		Count(&count).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "já existe um usuário com este email")
		return
	}

	updates := map[string]any{
		"name":  req.Name,
		"email": req.Email,
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			respondServiceError(c, ctl.cfg, err)
			return
		}
		updates["password_hash"] = hash
	}

	if err := ctl.db.Model(&user).Updates(updates).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RecoverPasswordRequest represents the password-reset request body
type RecoverPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RecoverPassword handles POST /recuperar-senha. Delivery is not
// implemented; the endpoint answers 200 for any well-formed email so it
// cannot be used to probe which accounts exist.
func (ctl *AuthController) RecoverPassword(c *gin.Context) {
	var req RecoverPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email é obrigatório")
		return
	}

	var count int64
	if err := ctl.db.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?) AND active = ?", req.Email, true).
		Count(&count).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	if count > 0 {
		ctl.log.Info().Str("email", req.Email).Msg("password recovery requested")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "se o email estiver cadastrado, as instruções de recuperação serão enviadas",
	})
}
