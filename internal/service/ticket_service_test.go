package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eventify/eventify-api/internal/models"
	"github.com/eventify/eventify-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPurchase_Success(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)
	svc := newTicketServiceForTest(db)

	ticket, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 2)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ticket.ID)
	assert.Equal(t, event.ID, ticket.EventID)
	assert.Equal(t, buyer.ID, ticket.UserID)
	assert.Equal(t, 2, ticket.Quantity)
	assert.Equal(t, 50.0, ticket.TotalPrice)

	assert.Equal(t, 2, reloadEvent(t, db, event.ID).TicketsSold)
}

func TestPurchase_PriceSnapshot(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 20.0)
	svc := newTicketServiceForTest(db)

	ticket, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 1)
	require.NoError(t, err)

	// Later price changes must not alter sold tickets
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).Update("price", 99.0).Error)

	var reloaded models.Ticket
	require.NoError(t, db.First(&reloaded, "id = ?", ticket.ID).Error)
	assert.Equal(t, 20.0, reloaded.TotalPrice)
}

func TestPurchase_InvalidQuantity(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)
	svc := newTicketServiceForTest(db)

	for _, qty := range []int{0, -1} {
		_, err := svc.Purchase(context.Background(), event.ID, buyer.ID, qty)
		assert.ErrorIs(t, err, ErrValidation)
	}

	assert.Equal(t, 0, reloadEvent(t, db, event.ID).TicketsSold)
}

func TestPurchase_EventNotFound(t *testing.T) {
	db := newTestDB(t)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	svc := newTicketServiceForTest(db)

	_, err := svc.Purchase(context.Background(), 999, buyer.ID, 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

// Scenario: capacity 5 at price 20. First buyer takes 3 (totalPrice 60),
// second buyer asks for 3 more and is fully rejected, sold stays at 3.
func TestPurchase_CapacityExceeded(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	u1 := createTestUser(t, db, "u1@example.com", models.RoleBuyer)
	u2 := createTestUser(t, db, "u2@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 5, 20.0)
	svc := newTicketServiceForTest(db)

	ticket, err := svc.Purchase(context.Background(), event.ID, u1.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 60.0, ticket.TotalPrice)
	assert.Equal(t, 3, reloadEvent(t, db, event.ID).TicketsSold)

	_, err = svc.Purchase(context.Background(), event.ID, u2.ID, 3)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 3, reloadEvent(t, db, event.ID).TicketsSold)

	// No partial split: u2 got nothing
	var count int64
	db.Model(&models.Ticket{}).Where("user_id = ?", u2.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

// Boundary: buying exactly the remaining capacity succeeds and fills the
// event; one more unit is then rejected.
func TestPurchase_ExactRemaining(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 4, 10.0)
	svc := newTicketServiceForTest(db)

	_, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, reloadEvent(t, db, event.ID).TicketsSold)

	_, err = svc.Purchase(context.Background(), event.ID, buyer.ID, 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 4, reloadEvent(t, db, event.ID).TicketsSold)
}

// 20 buyers race for 10 tickets: exactly 10 succeed, 10 are rejected, and
// the final counter lands exactly on capacity.
func TestPurchase_NoOversellUnderConcurrency(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 15.0)
	svc := newTicketServiceForTest(db)

	attempts := 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 10, succeeded, "exactly capacity purchases should succeed")
	assert.Equal(t, 10, rejected, "the rest should be rejected")
	assert.Equal(t, 10, reloadEvent(t, db, event.ID).TicketsSold)

	var ticketCount int64
	db.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&ticketCount)
	assert.Equal(t, int64(10), ticketCount)
}

// failingTicketRepo simulates a storage failure between the reservation and
// the ticket insert.
type failingTicketRepo struct {
	repository.TicketRepository
}

func (f *failingTicketRepo) Create(ctx context.Context, tx *gorm.DB, ticket *models.Ticket) error {
	return errors.New("storage unavailable")
}

// Atomicity: a failure after a successful reserve must roll the counter
// back — no increment without a ticket, no ticket without an increment.
func TestPurchase_RollbackOnInsertFailure(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)

	eventRepo := repository.NewEventRepository(db)
	ticketRepo := &failingTicketRepo{TicketRepository: repository.NewTicketRepository(db)}
	svc := NewTicketService(ticketRepo, eventRepo, nil, nil, 5*time.Second)

	_, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCapacityExceeded)

	assert.Equal(t, 0, reloadEvent(t, db, event.ID).TicketsSold, "counter must roll back with the failed insert")

	var count int64
	db.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPurchase_ExpiredContext(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)
	svc := newTicketServiceForTest(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Purchase(ctx, event.ID, buyer.ID, 1)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 0, reloadEvent(t, db, event.ID).TicketsSold)
}

// Round-trip: purchase then cancel restores the counter and removes the
// ticket record.
func TestCancel_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)
	svc := newTicketServiceForTest(db)

	ticket, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, reloadEvent(t, db, event.ID).TicketsSold)

	cancelled, err := svc.Cancel(context.Background(), ticket.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, cancelled.ID)

	assert.Equal(t, 0, reloadEvent(t, db, event.ID).TicketsSold)

	_, err = svc.GetTicket(context.Background(), ticket.ID, buyer.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestCancel_WrongOwner(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	other := createTestUser(t, db, "other@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)
	svc := newTicketServiceForTest(db)

	ticket, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 2)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), ticket.ID, other.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// State unchanged: ticket still there, counter untouched
	assert.Equal(t, 2, reloadEvent(t, db, event.ID).TicketsSold)
	_, err = svc.GetTicket(context.Background(), ticket.ID, buyer.ID)
	assert.NoError(t, err)
}

func TestCancel_NotFound(t *testing.T) {
	db := newTestDB(t)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	svc := newTicketServiceForTest(db)

	_, err := svc.Cancel(context.Background(), uuid.New(), buyer.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestGetTicket_OwnerScoped(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	other := createTestUser(t, db, "other@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)
	svc := newTicketServiceForTest(db)

	ticket, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 1)
	require.NoError(t, err)

	got, err := svc.GetTicket(context.Background(), ticket.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = svc.GetTicket(context.Background(), ticket.ID, other.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListUserTickets(t *testing.T) {
	db := newTestDB(t)
	organizer := createTestUser(t, db, "org@example.com", models.RoleOrganizer)
	buyer := createTestUser(t, db, "buyer@example.com", models.RoleBuyer)
	other := createTestUser(t, db, "other@example.com", models.RoleBuyer)
	event := createTestEvent(t, db, organizer.ID, 10, 25.0)
	svc := newTicketServiceForTest(db)

	_, err := svc.Purchase(context.Background(), event.ID, buyer.ID, 1)
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), event.ID, buyer.ID, 2)
	require.NoError(t, err)
	_, err = svc.Purchase(context.Background(), event.ID, other.ID, 1)
	require.NoError(t, err)

	tickets, err := svc.ListUserTickets(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
	for _, ticket := range tickets {
		assert.Equal(t, buyer.ID, ticket.UserID)
	}
}
