package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lucasperes/helpdesk-api/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// TicketService owns the ticket lifecycle: creation, filtered listing, the
// update permission rule with its closure-timestamp derivation, and
// attachment management.
type TicketService struct {
	db     *gorm.DB
	images ImageService
	log    zerolog.Logger
}

// NewTicketService builds a ticket service around the given database
// handle and image backend
func NewTicketService(db *gorm.DB, images ImageService, log zerolog.Logger) *TicketService {
	return &TicketService{db: db, images: images, log: log}
}

// TicketFilter narrows a ticket listing. Zero values mean "no filter";
// enum fields are already validated at the boundary.
type TicketFilter struct {
	Status   models.TicketStatus
	Priority models.TicketPriority
	ClientID uint
	SectorID uint
	Limit    int
	Offset   int
}

// CreateTicketInput carries the validated fields for a new ticket
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    models.TicketPriority
	ClientID    uint
	ClientName  string
	SectorID    *uint
	Files       []*multipart.FileHeader
}

// UpdateTicketInput carries an update request. Status nil retains the
// current status; Technician is only honored for Tecnico/Admin actors.
type UpdateTicketInput struct {
	TicketID     uint
	ActingUserID uint
	Title        string
	Description  string
	Priority     models.TicketPriority
	SectorID     *uint
	Status       *models.TicketStatus
	Technician   *string
}

// AttachResult reports the outcome of an attach/detach operation
type AttachResult struct {
	Added   int      `json:"added"`
	Removed int      `json:"removed"`
	Images  []string `json:"images"`
}

// Create opens a new ticket. Uploaded files were validated by the upload
// layer; each one is stored and its generated name recorded on the row.
func (s *TicketService) Create(input CreateTicketInput) (*models.Ticket, error) {
	if input.Title == "" || input.Description == "" || input.Priority == "" || input.ClientName == "" || input.ClientID == 0 {
		return nil, fmt.Errorf("%w: título, descrição, cliente e prioridade são obrigatórios", ErrValidation)
	}

	var images models.ImageList
	for _, fh := range input.Files {
		key, err := s.images.UploadImage(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, key)
	}

	ticket := models.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.StatusAberto,
		Priority:    input.Priority,
		OpenedAt:    time.Now(),
		ClientID:    input.ClientID,
		ClientName:  input.ClientName,
		SectorID:    input.SectorID,
		Images:      images,
	}
	if err := s.db.Create(&ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return s.Get(ticket.ID)
}

// Get loads one ticket with its client and sector
func (s *TicketService) Get(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Preload("Client").Preload("Sector").First(&ticket, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	return &ticket, nil
}

// List returns tickets matching the filter, most recently opened first.
// Limit is clamped to [1,100] with a default of 50; negative offsets are
// treated as zero.
func (s *TicketService) List(f TicketFilter) ([]models.Ticket, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := s.db.Preload("Client").Preload("Sector")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.SectorID != 0 {
		q = q.Where("sector_id = ?", f.SectorID)
	}

	var tickets []models.Ticket
	if err := q.Order("opened_at DESC").Limit(limit).Offset(offset).Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Update applies the edit permission rule and the closure-timestamp
// derivation, then persists every editable field in a single statement.
//
// Tecnico and Admin may edit any ticket and are auto-assigned as
// technician when the request names none. An ordinary user may only edit
// a ticket they own and can never set the technician field.
func (s *TicketService) Update(input UpdateTicketInput) (*models.Ticket, error) {
	if input.Title == "" || input.Description == "" || input.Priority == "" || input.SectorID == nil {
		return nil, fmt.Errorf("%w: título, descrição, prioridade e setor são obrigatórios", ErrValidation)
	}

	var ticket models.Ticket
	if err := s.db.First(&ticket, input.TicketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, input.TicketID)
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	var actor models.User
	if err := s.db.First(&actor, input.ActingUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: usuário %d", ErrNotFound, input.ActingUserID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	technician := input.Technician
	if actor.Role.CanManageTickets() {
		// Auto-assignment on touch: a staff edit without an explicit
		// technician claims the ticket for the actor
		if technician == nil || *technician == "" {
			name := actor.Name
			technician = &name
		}
	} else {
		if ticket.ClientID != actor.ID {
			return nil, fmt.Errorf("%w: usuário %d não pode alterar o ticket %d", ErrPermission, actor.ID, ticket.ID)
		}
		// Ordinary users never assign technicians, whatever they sent
		technician = nil
	}

	prevStatus := ticket.Status
	nextStatus := prevStatus
	if input.Status != nil {
		nextStatus = *input.Status
	}

	closedAt := ticket.ClosedAt
	switch {
	case nextStatus == models.StatusFechado && prevStatus != models.StatusFechado:
		now := time.Now()
		closedAt = &now
	case nextStatus != models.StatusFechado && prevStatus == models.StatusFechado:
		closedAt = nil
	}

	updates := map[string]any{
		"title":       input.Title,
		"description": input.Description,
		"priority":    input.Priority,
		"sector_id":   input.SectorID,
		"status":      nextStatus,
		"technician":  technician,
		"closed_at":   closedAt,
	}
	if err := s.db.Model(&models.Ticket{}).Where("id = ?", ticket.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	return s.Get(ticket.ID)
}

// Delete removes a ticket row for good and cleans up its blobs best-effort
func (s *TicketService) Delete(id uint) error {
	ticket, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Ticket{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	for _, key := range ticket.Images {
		if err := s.images.DeleteImage(key); err != nil {
			s.log.Warn().Err(err).Str("image", key).Uint("ticket_id", id).Msg("failed to delete attachment blob")
		}
	}
	return nil
}

// AttachImages detaches the named filenames and stores the new files,
// persisting the resulting list on the ticket. Blob deletion is best
// effort: a failure is logged and the filename is still detached.
func (s *TicketService) AttachImages(ticketID uint, newFiles []*multipart.FileHeader, remove []string) (*AttachResult, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, ticketID)
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	removeSet := make(map[string]bool, len(remove))
	for _, name := range remove {
		removeSet[name] = true
	}

	var kept models.ImageList
	removed := 0
	for _, key := range ticket.Images {
		if removeSet[key] {
			removed++
			if err := s.images.DeleteImage(key); err != nil {
				s.log.Warn().Err(err).Str("image", key).Uint("ticket_id", ticketID).Msg("failed to delete attachment blob")
			}
			continue
		}
		kept = append(kept, key)
	}

	added := 0
	for _, fh := range newFiles {
		key, err := s.images.UploadImage(fh)
		if err != nil {
			return nil, err
		}
		kept = append(kept, key)
		added++
	}

	if err := s.db.Model(&models.Ticket{}).Where("id = ?", ticketID).Update("images", kept).Error; err != nil {
		return nil, fmt.Errorf("failed to update ticket images: %w", err)
	}

	result := &AttachResult{Added: added, Removed: removed, Images: kept}
	if result.Images == nil {
		result.Images = []string{}
	}
	return result, nil
}
