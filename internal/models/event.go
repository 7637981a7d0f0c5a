package models

import "time"

type Event struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrganizerID  uint      `gorm:"not null;index" json:"organizer_id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `gorm:"not null" json:"date"`
	Price        float64   `gorm:"not null" json:"price"`
	ImageURL     string    `json:"image_url"`
	TotalTickets int       `gorm:"not null" json:"total_tickets"`
	TicketsSold  int       `gorm:"not null;default:0" json:"tickets_sold"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Organizer *User `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
}

// Remaining is the sellable capacity left: TotalTickets - TicketsSold.
func (e *Event) Remaining() int {
	return e.TotalTickets - e.TicketsSold
}
