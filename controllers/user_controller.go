package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lucasperes/helpdesk-api/config"
	"github.com/lucasperes/helpdesk-api/models"
	"github.com/lucasperes/helpdesk-api/utils"
)

// UserController handles the public user listing and the admin user
// directory (CRUD plus soft delete)
type UserController struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
}

// NewUserController builds the controller with its injected dependencies
func NewUserController(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *UserController {
	return &UserController{db: db, cfg: cfg, log: log}
}

// ListActive handles GET /usuarios - lists active users only
func (ctl *UserController) ListActive(c *gin.Context) {
	var users []models.User
	if err := ctl.db.Where("active = ?", true).Order("name").Find(&users).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// AdminList handles GET /admin/usuarios - lists every user, inactive included
func (ctl *UserController) AdminList(c *gin.Context) {
	var users []models.User
	if err := ctl.db.Order("name").Find(&users).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// AdminCreateRequest represents the body for admin user creation
type AdminCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

// AdminCreate handles POST /admin/usuarios - creates a user with an
// explicit role
func (ctl *UserController) AdminCreate(c *gin.Context) {
	var req AdminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "nome, email, senha e perfil são obrigatórios")
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("perfil %q inválido", req.Role))
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

	c.JSON(http.StatusCreated, user)
}

// AdminUpdateRequest represents the body for admin user edits
type AdminUpdateRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// AdminUpdate handles PUT /admin/usuarios/:id - edits name, email and role
func (ctl *UserController) AdminUpdate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "nome, email e perfil são obrigatórios")
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("perfil %q inválido", req.Role))
		return
	}

	var user models.User
	dbErr := ctl.db.First(&user, id).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "usuário não encontrado")
		return
	}
	if dbErr != nil {
		respondServiceError(c, ctl.cfg, dbErr)
		return
	}

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
		"role":  role,
	}
	if err := ctl.db.Model(&user).Updates(updates).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// AdminDeactivate handles DELETE /admin/usuarios/:id - soft delete. The
// row stays in place with the active flag off so it can be reactivated.
func (ctl *UserController) AdminDeactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var user models.User
	dbErr := ctl.db.First(&user, id).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "usuário não encontrado")
		return
	}
	if dbErr != nil {
		respondServiceError(c, ctl.cfg, dbErr)
		return
	}

	if err := ctl.db.Model(&user).Update("active", false).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.log.Info().Uint("user_id", user.ID).Msg("user deactivated")
	c.JSON(http.StatusOK, gin.H{"message": "usuário desativado"})
}
