package dto

import "time"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	TotalTickets int       `json:"total_tickets"`
}

type PurchaseTicketRequest struct {
	EventID  uint `json:"event_id"`
	Quantity int  `json:"quantity"`
}
