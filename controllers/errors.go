package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucasperes/helpdesk-api/config"
	"github.com/lucasperes/helpdesk-api/services"
	"github.com/lucasperes/helpdesk-api/utils"
)

// respondError writes the uniform failure body
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError maps a service-layer error to its HTTP status.
// Internal errors hide their detail in production.
func respondServiceError(c *gin.Context, cfg *config.Config, err error) {
	var uploadErr *utils.FileUploadError

	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPermission):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.As(err, &uploadErr):
		respondError(c, http.StatusBadRequest, uploadErr.Message)
	default:
		if cfg != nil && !cfg.IsProduction() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "erro interno do servidor",
				"detail": err.Error(),
			})
			return
		}
		respondError(c, http.StatusInternalServerError, "erro interno do servidor")
	}
}
