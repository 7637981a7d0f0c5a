package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eventify/eventify-api/internal/models"
	"github.com/eventify/eventify-api/internal/repository"
	"github.com/eventify/eventify-api/pkg/cache"
	"github.com/eventify/eventify-api/pkg/rabbitmq"
	"gorm.io/gorm"
)

type EventInput struct {
	Title        string
	Description  string
	Date         time.Time
	Price        float64
	ImageURL     string
	TotalTickets int
}

type EventStats struct {
	EventID      uint    `json:"event_id"`
	Title        string  `json:"title"`
	TotalTickets int     `json:"total_tickets"`
	TicketsSold  int     `json:"tickets_sold"`
	Remaining    int     `json:"remaining"`
	Revenue      float64 `json:"revenue"`
}

type EventService interface {
	CreateEvent(ctx context.Context, organizerID uint, in EventInput) (*models.Event, error)
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListOrganizerEvents(ctx context.Context, organizerID uint) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id, organizerID uint, in EventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id, organizerID uint) error
	EventStats(ctx context.Context, id, organizerID uint) (*EventStats, error)
}

type eventService struct {
	events    repository.EventRepository
	tickets   repository.TicketRepository
	publisher *rabbitmq.Publisher
	stock     *cache.StockCache
}

func NewEventService(events repository.EventRepository, tickets repository.TicketRepository, publisher *rabbitmq.Publisher, stock *cache.StockCache) EventService {
	return &eventService{events: events, tickets: tickets, publisher: publisher, stock: stock}
}

func validateEventInput(in EventInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.TotalTickets <= 0 {
		return fmt.Errorf("%w: total_tickets must be positive", ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID uint, in EventInput) (*models.Event, error) {
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	event := &models.Event{
		OrganizerID:  organizerID,
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		Price:        in.Price,
		ImageURL:     in.ImageURL,
		TotalTickets: in.TotalTickets,
		TicketsSold:  0,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.primeStock(ctx, event)
	if s.publisher != nil {
		_ = s.publisher.Publish(rabbitmq.KeyEventCreated, event)
	}

	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.events.FindAll(ctx)
}

func (s *eventService) ListOrganizerEvents(ctx context.Context, organizerID uint) ([]models.Event, error) {
	return s.events.FindByOrganizer(ctx, organizerID)
}

func (s *eventService) UpdateEvent(ctx context.Context, id, organizerID uint, in EventInput) (*models.Event, error) {
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	var updated *models.Event
	err := s.events.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.events.FindByIDTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.OrganizerID != organizerID {
			return ErrPermissionDenied
		}

		fields := map[string]any{
			"title":         in.Title,
			"description":   in.Description,
			"date":          in.Date,
			"price":         in.Price,
			"image_url":     in.ImageURL,
			"total_tickets": in.TotalTickets,
		}
		// Conditional update: refused when capacity would drop below sold
		ok, err := s.events.UpdateFields(ctx, tx, id, fields, in.TotalTickets)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: total_tickets cannot be below tickets already sold", ErrValidation)
		}

		updated, err = s.events.FindByIDTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.primeStock(ctx, updated)
	if s.publisher != nil {
		_ = s.publisher.Publish(rabbitmq.KeyEventUpdated, updated)
	}

	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id, organizerID uint) error {
	err := s.events.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.events.FindByIDTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.OrganizerID != organizerID {
			return ErrPermissionDenied
		}

		// Tickets cascade with their event
		if err := s.tickets.DeleteByEvent(ctx, tx, id); err != nil {
			return err
		}
		return s.events.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	if s.stock != nil {
		if cerr := s.stock.Forget(ctx, id); cerr != nil {
			log.Printf("[StockCache] forget event %d: %v", id, cerr)
		}
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(rabbitmq.KeyEventDeleted, map[string]uint{"id": id})
	}

	return nil
}

func (s *eventService) EventStats(ctx context.Context, id, organizerID uint) (*EventStats, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID {
		return nil, ErrPermissionDenied
	}

	revenue, err := s.tickets.RevenueByEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	return &EventStats{
		EventID:      event.ID,
		Title:        event.Title,
		TotalTickets: event.TotalTickets,
		TicketsSold:  event.TicketsSold,
		Remaining:    event.Remaining(),
		Revenue:      revenue,
	}, nil
}

func (s *eventService) primeStock(ctx context.Context, event *models.Event) {
	if s.stock == nil || event == nil {
		return
	}
	if err := s.stock.Prime(ctx, event.ID, event.Remaining()); err != nil {
		log.Printf("[StockCache] prime event %d: %v", event.ID, err)
	}
}
