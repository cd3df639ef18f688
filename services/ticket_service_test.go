package services

import (
	"bytes"
	"mime"
	"mime/multipart"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lucasperes/helpdesk-api/models"
	"github.com/lucasperes/helpdesk-api/tests/testutil"
)

func newTestService(t *testing.T) (*TicketService, *gorm.DB, *MockImageService) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	images := NewMockImageService()
	return NewTicketService(db, images, zerolog.Nop()), db, images
}

// makeFileHeader builds a real multipart.FileHeader by writing and
// re-parsing a form, since the struct cannot be assembled directly
func makeFileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body, formContentType := testutil.MultipartBody(t, nil, []testutil.FormFile{
		{Field: "images", Name: name, ContentType: contentType, Content: content},
	})

	_, params, err := mime.ParseMediaType(formContentType)
	require.NoError(t, err)
	reader := multipart.NewReader(bytes.NewReader(body.Bytes()), params["boundary"])
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	require.Len(t, form.File["images"], 1)
	return form.File["images"][0]
}

func seedTicket(t *testing.T, db *gorm.DB, clientID uint, status models.TicketStatus, closedAt *time.Time) models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		Title:       "Impressora parada",
		Description: "A impressora do segundo andar não responde",
		Status:      status,
		Priority:    models.PriorityMedia,
		OpenedAt:    time.Now(),
		ClosedAt:    closedAt,
		ClientID:    clientID,
		ClientName:  "Fulano",
	}
	require.NoError(t, db.Create(&ticket).Error)
	return ticket
}

func updateInput(ticketID, actingUserID uint, sectorID uint) UpdateTicketInput {
	sid := sectorID
	return UpdateTicketInput{
		TicketID:     ticketID,
		ActingUserID: actingUserID,
		Title:        "Impressora parada",
		Description:  "A impressora do segundo andar não responde",
		Priority:     models.PriorityAlta,
		SectorID:     &sid,
	}
}

func TestUpdateClosureTimestamp(t *testing.T) {
	svc, db, _ := newTestService(t)
	admin := testutil.CreateUser(t, db, "Admin", "admin@empresa.com", models.RoleAdmin, true)
	sector := testutil.CreateSector(t, db, "TI", true)

	t.Run("closing stamps closed_at", func(t *testing.T) {
		ticket := seedTicket(t, db, admin.ID, models.StatusAberto, nil)

		input := updateInput(ticket.ID, admin.ID, sector.ID)
		status := models.StatusFechado
		input.Status = &status

		updated, err := svc.Update(input)
		require.NoError(t, err)
		require.NotNil(t, updated.ClosedAt)
		assert.Equal(t, models.StatusFechado, updated.Status)
	})

	t.Run("re-closing keeps the original timestamp", func(t *testing.T) {
		ticket := seedTicket(t, db, admin.ID, models.StatusAberto, nil)

		input := updateInput(ticket.ID, admin.ID, sector.ID)
		status := models.StatusFechado
		input.Status = &status

		first, err := svc.Update(input)
		require.NoError(t, err)
		require.NotNil(t, first.ClosedAt)

		second, err := svc.Update(input)
		require.NoError(t, err)
		require.NotNil(t, second.ClosedAt)
		assert.True(t, first.ClosedAt.Equal(*second.ClosedAt), "closed_at must not move on idempotent re-save")
	})

	t.Run("reopening clears closed_at", func(t *testing.T) {
		closed := time.Now().Add(-time.Hour)
		ticket := seedTicket(t, db, admin.ID, models.StatusFechado, &closed)

		input := updateInput(ticket.ID, admin.ID, sector.ID)
		status := models.StatusAberto
		input.Status = &status

		updated, err := svc.Update(input)
		require.NoError(t, err)
		assert.Nil(t, updated.ClosedAt)
		assert.Equal(t, models.StatusAberto, updated.Status)
	})

	t.Run("absent status retains current status and timestamp", func(t *testing.T) {
		closed := time.Now().Add(-time.Hour)
		ticket := seedTicket(t, db, admin.ID, models.StatusFechado, &closed)

		updated, err := svc.Update(updateInput(ticket.ID, admin.ID, sector.ID))
		require.NoError(t, err)
		assert.Equal(t, models.StatusFechado, updated.Status)
		require.NotNil(t, updated.ClosedAt)
		assert.True(t, closed.Equal(*updated.ClosedAt))
	})

	t.Run("unrelated edit on open ticket leaves closed_at null", func(t *testing.T) {
		ticket := seedTicket(t, db, admin.ID, models.StatusEmAndamento, nil)

		updated, err := svc.Update(updateInput(ticket.ID, admin.ID, sector.ID))
		require.NoError(t, err)
		assert.Nil(t, updated.ClosedAt)
	})
}

func TestUpdatePermissions(t *testing.T) {
	svc, db, _ := newTestService(t)
	owner := testutil.CreateUser(t, db, "Dono", "dono@empresa.com", models.RoleUsuario, true)
	other := testutil.CreateUser(t, db, "Outro", "outro@empresa.com", models.RoleUsuario, true)
	tech := testutil.CreateUser(t, db, "Técnica Ana", "ana@empresa.com", models.RoleTecnico, true)
	sector := testutil.CreateSector(t, db, "Suporte", true)

	t.Run("foreign user is rejected and row unchanged", func(t *testing.T) {
		ticket := seedTicket(t, db, owner.ID, models.StatusAberto, nil)

		input := updateInput(ticket.ID, other.ID, sector.ID)
		input.Title = "Tentativa de alteração"

		_, err := svc.Update(input)
		require.ErrorIs(t, err, ErrPermission)

		var reloaded models.Ticket
		require.NoError(t, db.First(&reloaded, ticket.ID).Error)
		assert.Equal(t, ticket.Title, reloaded.Title)
		assert.Nil(t, reloaded.SectorID)
	})

	t.Run("owner may edit but never assigns a technician", func(t *testing.T) {
		ticket := seedTicket(t, db, owner.ID, models.StatusAberto, nil)

		input := updateInput(ticket.ID, owner.ID, sector.ID)
		name := "Intruso"
		input.Technician = &name

		updated, err := svc.Update(input)
		require.NoError(t, err)
		assert.Nil(t, updated.Technician, "ordinary users cannot set the technician field")
	})

	t.Run("staff edit without technician auto-assigns the actor", func(t *testing.T) {
		ticket := seedTicket(t, db, owner.ID, models.StatusAberto, nil)

		updated, err := svc.Update(updateInput(ticket.ID, tech.ID, sector.ID))
		require.NoError(t, err)
		require.NotNil(t, updated.Technician)
		assert.Equal(t, tech.Name, *updated.Technician)
	})

	t.Run("staff edit with explicit technician keeps it", func(t *testing.T) {
		ticket := seedTicket(t, db, owner.ID, models.StatusAberto, nil)

		input := updateInput(ticket.ID, tech.ID, sector.ID)
		assigned := "Carlos"
		input.Technician = &assigned

		updated, err := svc.Update(input)
		require.NoError(t, err)
		require.NotNil(t, updated.Technician)
		assert.Equal(t, "Carlos", *updated.Technician)
	})

	t.Run("missing ticket yields not found", func(t *testing.T) {
		_, err := svc.Update(updateInput(99999, tech.ID, sector.ID))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing acting user yields not found", func(t *testing.T) {
		ticket := seedTicket(t, db, owner.ID, models.StatusAberto, nil)
		_, err := svc.Update(updateInput(ticket.ID, 99999, sector.ID))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing required fields yield validation error", func(t *testing.T) {
		ticket := seedTicket(t, db, owner.ID, models.StatusAberto, nil)
		input := updateInput(ticket.ID, owner.ID, sector.ID)
		input.Description = ""
		_, err := svc.Update(input)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestListClamping(t *testing.T) {
	svc, db, _ := newTestService(t)
	user := testutil.CreateUser(t, db, "Cliente", "cliente@empresa.com", models.RoleUsuario, true)

	for i := 0; i < 120; i++ {
		seedTicket(t, db, user.ID, models.StatusAberto, nil)
	}

	t.Run("limit above maximum returns at most 100", func(t *testing.T) {
		tickets, err := svc.List(TicketFilter{Limit: 500})
		require.NoError(t, err)
		assert.Len(t, tickets, 100)
	})

	t.Run("negative offset starts at zero", func(t *testing.T) {
		tickets, err := svc.List(TicketFilter{Limit: 10, Offset: -5})
		require.NoError(t, err)
		assert.Len(t, tickets, 10)
	})

	t.Run("default limit is 50", func(t *testing.T) {
		tickets, err := svc.List(TicketFilter{})
		require.NoError(t, err)
		assert.Len(t, tickets, 50)
	})
}

func TestListOrderAndFilters(t *testing.T) {
	svc, db, _ := newTestService(t)
	user := testutil.CreateUser(t, db, "Cliente", "cliente@empresa.com", models.RoleUsuario, true)

	old := models.Ticket{
		Title: "Antigo", Description: "d", Status: models.StatusFechado,
		Priority: models.PriorityBaixa, OpenedAt: time.Now().Add(-48 * time.Hour),
		ClientID: user.ID, ClientName: user.Name,
	}
	recent := models.Ticket{
		Title: "Recente", Description: "d", Status: models.StatusAberto,
		Priority: models.PriorityAlta, OpenedAt: time.Now(),
		ClientID: user.ID, ClientName: user.Name,
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)

	tickets, err := svc.List(TicketFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "Recente", tickets[0].Title, "listing is opened-at descending")

	tickets, err = svc.List(TicketFilter{Status: models.StatusFechado})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Antigo", tickets[0].Title)

	tickets, err = svc.List(TicketFilter{Priority: models.PriorityAlta})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Recente", tickets[0].Title)
}

func TestAttachImages(t *testing.T) {
	svc, db, images := newTestService(t)
	user := testutil.CreateUser(t, db, "Cliente", "cliente@empresa.com", models.RoleUsuario, true)

	t.Run("attach then detach round trip", func(t *testing.T) {
		ticket := seedTicket(t, db, user.ID, models.StatusAberto, nil)

		file := makeFileHeader(t, "foto.png", "image/png", []byte("fake png bytes"))
		result, err := svc.AttachImages(ticket.ID, []*multipart.FileHeader{file}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, 0, result.Removed)
		require.Len(t, result.Images, 1)
		assert.True(t, images.ImageExists(result.Images[0]))

		detach, err := svc.AttachImages(ticket.ID, nil, []string{result.Images[0]})
		require.NoError(t, err)
		assert.Equal(t, 0, detach.Added)
		assert.Equal(t, 1, detach.Removed)
		assert.Empty(t, detach.Images)
		assert.False(t, images.ImageExists(result.Images[0]))

		// empty list is stored as NULL
		var reloaded models.Ticket
		require.NoError(t, db.First(&reloaded, ticket.ID).Error)
		assert.Nil(t, reloaded.Images)
	})

	t.Run("blob deletion failure still detaches the filename", func(t *testing.T) {
		ticket := seedTicket(t, db, user.ID, models.StatusAberto, nil)
		require.NoError(t, db.Model(&ticket).Update("images", models.ImageList{"a.png", "b.png"}).Error)

		images.FailDeletes = true
		defer func() { images.FailDeletes = false }()

		result, err := svc.AttachImages(ticket.ID, nil, []string{"a.png"})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Removed)
		assert.Equal(t, []string{"b.png"}, result.Images)
	})

	t.Run("kept images precede newly added ones", func(t *testing.T) {
		ticket := seedTicket(t, db, user.ID, models.StatusAberto, nil)
		require.NoError(t, db.Model(&ticket).Update("images", models.ImageList{"antiga.png"}).Error)

		file := makeFileHeader(t, "nova.png", "image/png", []byte("x"))
		result, err := svc.AttachImages(ticket.ID, []*multipart.FileHeader{file}, nil)
		require.NoError(t, err)
		require.Len(t, result.Images, 2)
		assert.Equal(t, "antiga.png", result.Images[0])
	})

	t.Run("unknown ticket yields not found", func(t *testing.T) {
		_, err := svc.AttachImages(99999, nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateAndDelete(t *testing.T) {
	svc, db, images := newTestService(t)
	user := testutil.CreateUser(t, db, "Cliente", "cliente@empresa.com", models.RoleUsuario, true)

	file := makeFileHeader(t, "tela.jpg", "image/jpeg", []byte("jpeg bytes"))
	ticket, err := svc.Create(CreateTicketInput{
		Title:       "Sem acesso ao sistema",
		Description: "Senha expirada",
		Priority:    models.PriorityAlta,
		ClientID:    user.ID,
		ClientName:  user.Name,
		Files:       []*multipart.FileHeader{file},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAberto, ticket.Status)
	assert.Nil(t, ticket.ClosedAt)
	assert.False(t, ticket.OpenedAt.IsZero())
	require.Len(t, ticket.Images, 1)
	assert.Equal(t, 1, images.Count())

	require.NoError(t, svc.Delete(ticket.ID))
	assert.Equal(t, 0, images.Count(), "blobs are cleaned up on hard delete")

	_, err = svc.Get(ticket.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
