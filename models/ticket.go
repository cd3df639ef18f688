package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TicketStatus is the lifecycle state of a support request
type TicketStatus string

const (
	StatusAberto      TicketStatus = "Aberto"
	StatusEmAndamento TicketStatus = "Em Andamento"
	StatusFechado     TicketStatus = "Fechado"
)

// TicketStatuses lists every valid status, in lifecycle order
func TicketStatuses() []TicketStatus {
	return []TicketStatus{StatusAberto, StatusEmAndamento, StatusFechado}
}

// ParseTicketStatus validates a status value at the request boundary
func ParseTicketStatus(s string) (TicketStatus, error) {
	switch TicketStatus(s) {
	case StatusAberto, StatusEmAndamento, StatusFechado:
		return TicketStatus(s), nil
	}
	return "", fmt.Errorf("invalid ticket status %q", s)
}

// TicketPriority is the urgency assigned to a ticket
type TicketPriority string

const (
	PriorityBaixa TicketPriority = "Baixa"
	PriorityMedia TicketPriority = "Média"
	PriorityAlta  TicketPriority = "Alta"
)

// TicketPriorities lists every valid priority, lowest first
func TicketPriorities() []TicketPriority {
	return []TicketPriority{PriorityBaixa, PriorityMedia, PriorityAlta}
}

// ParseTicketPriority validates a priority value at the request boundary
func ParseTicketPriority(s string) (TicketPriority, error) {
	switch TicketPriority(s) {
	case PriorityBaixa, PriorityMedia, PriorityAlta:
		return TicketPriority(s), nil
	}
	return "", fmt.Errorf("invalid ticket priority %q", s)
}

// ImageList is an ordered list of attachment filenames. The database
// column is a single comma-joined TEXT value (NULL when empty); the
// join/split encoding stays here so the rest of the application only ever
// sees a slice of filenames.
type ImageList []string

// Value implements driver.Valuer, storing NULL for an empty list
func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner
func (l *ImageList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ImageList", src)
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, ",")
	return nil
}

// Ticket represents a support request opened by a user.
//
// ClosedAt is derived from status transitions only: it is stamped when an
// update moves the status into Fechado and cleared when an update moves it
// out, never recomputed on unrelated edits. Tickets are the one entity
// without soft delete; removal is a hard delete.
type Ticket struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Status      TicketStatus   `gorm:"type:varchar(20);not null;default:'Aberto'" json:"status"`
	Priority    TicketPriority `gorm:"type:varchar(20);not null" json:"priority"`
	OpenedAt    time.Time      `gorm:"not null;index" json:"opened_at"`
	ClosedAt    *time.Time     `json:"closed_at"`
	ClientID    uint           `gorm:"not null;index" json:"client_id"`
	ClientName  string         `gorm:"not null" json:"client_name"`
	Client      *User          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	SectorID    *uint          `gorm:"index" json:"sector_id"`
	Sector      *Sector        `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
	Technician  *string        `json:"technician"`
	Images      ImageList      `gorm:"type:text" json:"-"`
	ImagePaths  []string       `gorm:"-" json:"images"`          // public paths, filled before responding
	ImageURL    *string        `gorm:"-" json:"image,omitempty"` // first image, convenience for list views
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for the Ticket model
func (Ticket) TableName() string {
	return "tickets"
}
