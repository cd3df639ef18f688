package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lucasperes/helpdesk-api/config"
	"github.com/lucasperes/helpdesk-api/models"
	"github.com/lucasperes/helpdesk-api/services"
	"github.com/lucasperes/helpdesk-api/utils"
)

// TicketController handles the ticket HTTP surface; the lifecycle rules
// live in services.TicketService
type TicketController struct {
	tickets *services.TicketService
	images  services.ImageService
	cfg     *config.Config
	log     zerolog.Logger
}

// NewTicketController builds the controller with its injected dependencies
func NewTicketController(tickets *services.TicketService, images services.ImageService, cfg *config.Config, log zerolog.Logger) *TicketController {
	return &TicketController{tickets: tickets, images: images, cfg: cfg, log: log}
}

// Metadata handles GET /ticket-metadata - the enum values clients build
// their forms from
func (ctl *TicketController) Metadata(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":   models.TicketStatuses(),
		"priorities": models.TicketPriorities(),
		"roles":      models.Roles(),
	})
}

// List handles GET /tickets - filtered, paginated listing, most recently
// opened first. Unknown enum filter values are rejected rather than
// silently ignored; a bad filter usually means a client bug.
func (ctl *TicketController) List(c *gin.Context) {
	var filter services.TicketFilter

	if v := c.Query("status"); v != "" {
		status, err := models.ParseTicketStatus(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("status %q inválido", v))
			return
		}
		filter.Status = status
	}
	if v := c.Query("priority"); v != "" {
		priority, err := models.ParseTicketPriority(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("prioridade %q inválida", v))
			return
		}
		filter.Priority = priority
	}
	if v := c.Query("userId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "userId inválido")
			return
		}
		filter.ClientID = uint(id)
	}
	if v := c.Query("sectorId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "sectorId inválido")
			return
		}
		filter.SectorID = uint(id)
	}

	// Pagination is clamped, never rejected: out-of-range values from
	// older clients fall back to sane bounds
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	tickets, err := ctl.tickets.List(filter)
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	for i := range tickets {
		ctl.decorate(&tickets[i])
	}
	c.JSON(http.StatusOK, tickets)
}

// Create handles POST /tickets - multipart form with up to 5 images
func (ctl *TicketController) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "requisição multipart inválida")
		return
	}

	priorityValue := c.PostForm("priority")
	priority, err := models.ParseTicketPriority(priorityValue)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("prioridade %q inválida", priorityValue))
		return
	}

	clientID, err := strconv.ParseUint(c.PostForm("clientId"), 10, 32)
	if err != nil || clientID == 0 {
		respondError(c, http.StatusBadRequest, "clientId inválido")
		return
	}

	var sectorID *uint
	if v := c.PostForm("sectorId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "sectorId inválido")
			return
		}
		sid := uint(id)
		sectorID = &sid
	}

	files := form.File["images"]
	if len(files) > utils.MaxFilesPerRequest {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("no máximo %d imagens por solicitação", utils.MaxFilesPerRequest))
		return
	}
	// Reject bad uploads before anything touches storage
	for _, fh := range files {
		if err := utils.ValidateImageFile(fh); err != nil {
			respondServiceError(c, ctl.cfg, err)
			return
		}
	}

	ticket, err := ctl.tickets.Create(services.CreateTicketInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Priority:    priority,
		ClientID:    uint(clientID),
		ClientName:  c.PostForm("clientName"),
		SectorID:    sectorID,
		Files:       files,
	})
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.decorate(ticket)
	ctl.log.Info().Uint("ticket_id", ticket.ID).Int("images", len(ticket.Images)).Msg("ticket created")
	c.JSON(http.StatusCreated, ticket)
}

// Get handles GET /tickets/:id
func (ctl *TicketController) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	ticket, err := ctl.tickets.Get(uint(id))
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.decorate(ticket)
	c.JSON(http.StatusOK, ticket)
}

// UpdateTicketRequest represents the JSON body for ticket updates
type UpdateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	SectorID    *uint   `json:"sectorId"`
	Status      *string `json:"status"`
	Technician  *string `json:"technician"`
	UserID      uint    `json:"userId"`
}

// Update handles PUT /tickets/:id - the permission rule and closure-date
// handling live in the service
func (ctl *TicketController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if req.UserID == 0 {
		respondError(c, http.StatusBadRequest, "userId é obrigatório")
		return
	}

	var priority models.TicketPriority
	if req.Priority != "" {
		priority, err = models.ParseTicketPriority(req.Priority)
		if err != nil {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("prioridade %q inválida", req.Priority))
			return
		}
	}

	var status *models.TicketStatus
	if req.Status != nil {
		parsed, err := models.ParseTicketStatus(*req.Status)
		if err != nil {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("status %q inválido", *req.Status))
			return
		}
		status = &parsed
	}

	ticket, err := ctl.tickets.Update(services.UpdateTicketInput{
		TicketID:     uint(id),
		ActingUserID: req.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     priority,
		SectorID:     req.SectorID,
		Status:       status,
		Technician:   req.Technician,
	})
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.decorate(ticket)
	c.JSON(http.StatusOK, ticket)
}

// Delete handles DELETE /tickets/:id - hard delete
func (ctl *TicketController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	if err := ctl.tickets.Delete(uint(id)); err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	ctl.log.Info().Uint64("ticket_id", id).Msg("ticket deleted")
	c.JSON(http.StatusOK, gin.H{"message": "ticket removido"})
}

// AttachImages handles PUT /tickets/:id/imagens - multipart form with new
// files under "images" and filenames to detach under "remove"
func (ctl *TicketController) AttachImages(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "id inválido")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "requisição multipart inválida")
		return
	}

	files := form.File["images"]
	if len(files) > utils.MaxFilesPerRequest {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("no máximo %d imagens por solicitação", utils.MaxFilesPerRequest))
		return
	}
	for _, fh := range files {
		if err := utils.ValidateImageFile(fh); err != nil {
			respondServiceError(c, ctl.cfg, err)
			return
		}
	}

	result, err := ctl.tickets.AttachImages(uint(id), files, form.Value["remove"])
	if err != nil {
		respondServiceError(c, ctl.cfg, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// decorate fills the computed image fields from the stored filename list
func (ctl *TicketController) decorate(t *models.Ticket) {
	t.ImagePaths = make([]string, 0, len(t.Images))
	for _, key := range t.Images {
		url, err := ctl.images.ImageURL(key)
		if err != nil {
			ctl.log.Warn().Err(err).Str("image", key).Msg("failed to resolve image URL")
			continue
		}
		t.ImagePaths = append(t.ImagePaths, url)
	}
	if len(t.ImagePaths) > 0 {
		first := t.ImagePaths[0]
		t.ImageURL = &first
	}
}
