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
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketService is the inventory reservation service: it turns purchase
// intents into all-or-nothing admission decisions against an event's
// remaining capacity.
type TicketService interface {
	Purchase(ctx context.Context, eventID, userID uint, quantity int) (*models.Ticket, error)
	Cancel(ctx context.Context, ticketID uuid.UUID, userID uint) (*models.Ticket, error)
	GetTicket(ctx context.Context, ticketID uuid.UUID, userID uint) (*models.Ticket, error)
	ListUserTickets(ctx context.Context, userID uint) ([]models.Ticket, error)
}

type ticketService struct {
	tickets         repository.TicketRepository
	events          repository.EventRepository
	publisher       *rabbitmq.Publisher
	stock           *cache.StockCache
	purchaseTimeout time.Duration
}

func NewTicketService(tickets repository.TicketRepository, events repository.EventRepository, publisher *rabbitmq.Publisher, stock *cache.StockCache, purchaseTimeout time.Duration) TicketService {
	return &ticketService{
		tickets:         tickets,
		events:          events,
		publisher:       publisher,
		stock:           stock,
		purchaseTimeout: purchaseTimeout,
	}
}

// Purchase admits or rejects quantity units against the event's capacity.
// The capacity check, the sold-counter increment and the ticket insert
// commit as one transaction: concurrent purchases for the same event
// serialize on the event row, purchases for different events do not touch.
// A request gets its full quantity or nothing.
func (s *ticketService) Purchase(ctx context.Context, eventID, userID uint, quantity int) (*models.Ticket, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	// Fast advisory gate: a cached sold-out answer saves a round trip to the
	// store on hot events. The store below remains the authority.
	gateAcquired := false
	if s.stock != nil {
		switch res, err := s.stock.TryAcquire(ctx, eventID, quantity); {
		case err != nil:
			log.Printf("[StockCache] acquire event %d: %v", eventID, err)
		case res == cache.AcquireInsufficient:
			return nil, ErrCapacityExceeded
		case res == cache.AcquireOK:
			gateAcquired = true
		}
	}

	if s.purchaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.purchaseTimeout)
		defer cancel()
	}

	var ticket *models.Ticket
	err := s.tickets.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load the event for the price snapshot
		event, err := s.events.FindByIDTx(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		// 2. Capacity check + counter increment in a single conditional update
		ok, err := s.events.TryReserve(ctx, tx, eventID, quantity)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCapacityExceeded
		}

		// 3. Persist the purchase record in the same unit of work
		t := &models.Ticket{
			EventID:    eventID,
			UserID:     userID,
			Quantity:   quantity,
			TotalPrice: float64(quantity) * event.Price,
		}
		if err := s.tickets.Create(ctx, tx, t); err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		if gateAcquired {
			s.refundStock(eventID, quantity)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrBusy
		}
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(rabbitmq.KeyTicketPurchased, ticket)
	}

	return ticket, nil
}

// Cancel deletes the ticket and returns its quantity to the event's
// inventory in one transaction, mirroring the purchase path.
func (s *ticketService) Cancel(ctx context.Context, ticketID uuid.UUID, userID uint) (*models.Ticket, error) {
	var cancelled *models.Ticket
	err := s.tickets.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := s.tickets.FindByIDTx(ctx, tx, ticketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if ticket.UserID != userID {
			return ErrPermissionDenied
		}

		if err := s.tickets.Delete(ctx, tx, ticketID); err != nil {
			return err
		}
		if err := s.events.Release(ctx, tx, ticket.EventID, ticket.Quantity); err != nil {
			return err
		}
		cancelled = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.stock != nil {
		if cerr := s.stock.Refund(ctx, cancelled.EventID, cancelled.Quantity); cerr != nil {
			log.Printf("[StockCache] refund event %d: %v", cancelled.EventID, cerr)
		}
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(rabbitmq.KeyTicketCancelled, cancelled)
	}

	return cancelled, nil
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID uuid.UUID, userID uint) (*models.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return ticket, nil
}

func (s *ticketService) ListUserTickets(ctx context.Context, userID uint) ([]models.Ticket, error) {
	return s.tickets.FindByUser(ctx, userID)
}

// refundStock runs on its own context: the purchase context may already be
// dead when the rollback path needs to repair the gate.
func (s *ticketService) refundStock(eventID uint, quantity int) {
	if s.stock == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.stock.Refund(ctx, eventID, quantity); err != nil {
		log.Printf("[StockCache] refund event %d: %v", eventID, err)
	}
}
