package testutil

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucasperes/helpdesk-api/models"
	"github.com/lucasperes/helpdesk-api/utils"
)

// OpenTestDB returns an in-memory sqlite database migrated for every model
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Sector{}, &models.Ticket{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user with a real password hash for "senha123"
func CreateUser(t *testing.T, db *gorm.DB, name, email string, role models.Role, active bool) models.User {
	t.Helper()

	hash, err := utils.HashPassword("senha123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       active,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateSector inserts a sector row
func CreateSector(t *testing.T, db *gorm.DB, name string, active bool) models.Sector {
	t.Helper()

	sector := models.Sector{Name: name, Active: active}
	if err := db.Create(&sector).Error; err != nil {
		t.Fatalf("Failed to create sector: %v", err)
	}
	return sector
}

// FormFile describes one file part for MultipartBody
type FormFile struct {
	Field       string
	Name        string
	ContentType string
	Content     []byte
}

// MultipartBody builds a multipart request body from text fields and files,
// returning the body and its Content-Type header value
func MultipartBody(t *testing.T, fields map[string]string, files []FormFile) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write form field %q: %v", key, err)
		}
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		header.Set("Content-Type", f.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("Failed to create form file %q: %v", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			t.Fatalf("Failed to write form file %q: %v", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	return body, writer.FormDataContentType()
}
