package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalImageService(t *testing.T) {
	dir := t.TempDir()
	svc := NewLocalImageService(dir, zerolog.Nop())

	t.Run("upload stores under generated name", func(t *testing.T) {
		fh := makeFileHeader(t, "captura.png", "image/png", []byte("png"))

		key, err := svc.UploadImage(fh)
		require.NoError(t, err)
		assert.NotEqual(t, "captura.png", key)

		content, err := os.ReadFile(filepath.Join(dir, key))
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), content)

		url, err := svc.ImageURL(key)
		require.NoError(t, err)
		assert.Equal(t, "/uploads/"+key, url)
	})

	t.Run("upload rejects non-image", func(t *testing.T) {
		fh := makeFileHeader(t, "planilha.xlsx", "application/vnd.ms-excel", []byte("x"))
		_, err := svc.UploadImage(fh)
		assert.Error(t, err)
	})

	t.Run("delete removes the blob and tolerates absence", func(t *testing.T) {
		fh := makeFileHeader(t, "a.png", "image/png", []byte("x"))
		key, err := svc.UploadImage(fh)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteImage(key))
		_, statErr := os.Stat(filepath.Join(dir, key))
		assert.True(t, os.IsNotExist(statErr))

		// second delete of the same key is not an error
		assert.NoError(t, svc.DeleteImage(key))
		assert.NoError(t, svc.DeleteImage(""))
	})
}
