package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// ImageController serves locally stored attachment blobs
type ImageController struct {
	dir string
}

// NewImageController builds the controller for the given upload directory
func NewImageController(dir string) *ImageController {
	return &ImageController{dir: dir}
}

// Serve handles GET /uploads/:file - returns the raw blob
func (ctl *ImageController) Serve(c *gin.Context) {
	filename := c.Param("file")

	// No path separators or traversal; stored names never contain them
	if filename == "" || strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		respondError(c, http.StatusNotFound, "imagem não encontrada")
		return
	}

	path := filepath.Join(ctl.dir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "imagem não encontrada")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
