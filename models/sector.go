package models

import "time"

// Sector is an organizational department a ticket can be routed to.
//
// Name uniqueness is case-insensitive and covers inactive rows too: a
// "deleted" sector blocks re-creation under the same name so it can be
// reactivated instead, keeping the tickets that reference it coherent.
type Sector struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Sector model
func (Sector) TableName() string {
	return "sectors"
}
