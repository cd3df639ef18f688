package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lucasperes/helpdesk-api/config"
	"github.com/lucasperes/helpdesk-api/models"
)

// AdminController carries the administration operations that span entity
// types; currently just reactivation of soft-deleted rows.
type AdminController struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
}

// NewAdminController builds the controller with its injected dependencies
func NewAdminController(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AdminController {
	return &AdminController{db: db, cfg: cfg, log: log}
}

// Reactivate handles PUT /admin/reativar/:tipo/:id - flips the active
// flag back on for a soft-deleted user or sector
func (ctl *AdminController) Reactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var model any
	switch c.Param("tipo") {
	case "usuario":
		model = &models.User{}
	case "setor":
		model = &models.Sector{}
	default:
		respondError(c, http.StatusBadRequest, "tipo deve ser 'usuario' ou 'setor'")
		return
	}

	dbErr := ctl.db.First(model, id).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "registro não encontrado")
		return
	}
	if dbErr != nil {
		respondServiceError(c, ctl.cfg, dbErr)
		return
	}

	if err := ctl.db.Model(model).Update("active", true).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.log.Info().Str("tipo", c.Param("tipo")).Uint64("id", id).Msg("record reactivated")
	c.JSON(http.StatusOK, gin.H{"message": "registro reativado"})
}
