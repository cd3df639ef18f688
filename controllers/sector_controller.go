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

// SectorController handles the public sector listing and the admin sector
// directory
type SectorController struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
}

// NewSectorController builds the controller with its injected dependencies
func NewSectorController(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *SectorController {
	return &SectorController{db: db, cfg: cfg, log: log}
}

// ListActive handles GET /setores - lists active sectors only
func (ctl *SectorController) ListActive(c *gin.Context) {
	var sectors []models.Sector
	if err := ctl.db.Where("active = ?", true).Order("name").Find(&sectors).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	c.JSON(http.StatusOK, sectors)
}

// AdminList handles GET /admin/setores - lists every sector, inactive included
func (ctl *SectorController) AdminList(c *gin.Context) {
	var sectors []models.Sector
	if err := ctl.db.Order("name").Find(&sectors).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	c.JSON(http.StatusOK, sectors)
}

// CreateSectorRequest represents the body for sector creation
type CreateSectorRequest struct {
	Name string `json:"name" binding:"required"`
}

// AdminCreate handles POST /admin/setores. The duplicate check covers
// inactive rows too: a deactivated sector with the same name should be
// reactivated, not recreated.
func (ctl *SectorController) AdminCreate(c *gin.Context) {
	var req CreateSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "nome é obrigatório")
		return
	}

	var count int64
	if err := ctl.db.Model(&models.Sector{}).
		Where("LOWER(name) = LOWER(?)", req.Name).
		Count(&count).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "já existe um setor com este nome; reative-o em vez de criar outro")
		return
	}

	sector := models.Sector{Name: req.Name, Active: true}
	if err := ctl.db.Create(&sector).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	c.JSON(http.StatusCreated, sector)
}

// AdminDeactivate handles DELETE /admin/setores/:id - soft delete
func (ctl *SectorController) AdminDeactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var sector models.Sector
	dbErr := ctl.db.First(&sector, id).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "setor não encontrado")
		return
	}
	if dbErr != nil {
		respondServiceError(c, ctl.cfg, dbErr)
		return
	}

	if err := ctl.db.Model(&sector).Update("active", false).Error; err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.log.Info().Uint("sector_id", sector.ID).Msg("sector deactivated")
	c.JSON(http.StatusOK, gin.H{"message": "setor desativado"})
}
