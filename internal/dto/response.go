package dto

import (
	"time"

	"github.com/eventify/eventify-api/internal/models"
	"github.com/google/uuid"
)

type TokenResponse struct {
	Token string `json:"token"`
}

type EventResponse struct {
	ID           uint      `json:"id"`
	OrganizerID  uint      `json:"organizer_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	TotalTickets int       `json:"total_tickets"`
	TicketsSold  int       `json:"tickets_sold"`
	Remaining    int       `json:"remaining"`
	CreatedAt    time.Time `json:"created_at"`
}

type TicketResponse struct {
	ID         uuid.UUID      `json:"id"`
	EventID    uint           `json:"event_id"`
	UserID     uint           `json:"user_id"`
	Quantity   int            `json:"quantity"`
	TotalPrice float64        `json:"total_price"`
	CreatedAt  time.Time      `json:"created_at"`
	Event      *EventResponse `json:"event,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:           e.ID,
		OrganizerID:  e.OrganizerID,
		Title:        e.Title,
		Description:  e.Description,
		Date:         e.Date,
		Price:        e.Price,
		ImageURL:     e.ImageURL,
		TotalTickets: e.TotalTickets,
		TicketsSold:  e.TicketsSold,
		Remaining:    e.Remaining(),
		CreatedAt:    e.CreatedAt,
	}
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:         t.ID,
		EventID:    t.EventID,
		UserID:     t.UserID,
		Quantity:   t.Quantity,
		TotalPrice: t.TotalPrice,
		CreatedAt:  t.CreatedAt,
	}
	if t.Event != nil {
		event := ToEventResponse(t.Event)
		resp.Event = &event
	}
	return resp
}
