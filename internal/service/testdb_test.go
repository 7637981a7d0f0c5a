package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eventify/eventify-api/internal/models"
	"github.com/eventify/eventify-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory database per test. A single pooled
// connection serializes access, so concurrent goroutines contend on the pool
// instead of tripping sqlite write locks.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", n)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Event{}, &models.Ticket{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestEvent(t *testing.T, db *gorm.DB, organizerID uint, totalTickets int, price float64) *models.Event {
	t.Helper()
	event := &models.Event{
		OrganizerID:  organizerID,
		Title:        "Summer Music Festival",
		Description:  "Open air festival",
		Date:         time.Now().Add(30 * 24 * time.Hour),
		Price:        price,
		TotalTickets: totalTickets,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func newTicketServiceForTest(db *gorm.DB) TicketService {
	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	return NewTicketService(ticketRepo, eventRepo, nil, nil, 5*time.Second)
}

func newEventServiceForTest(db *gorm.DB) EventService {
	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	return NewEventService(eventRepo, ticketRepo, nil, nil)
}

// reloadEvent asserts the counter invariant on every read-back.
func reloadEvent(t *testing.T, db *gorm.DB, id uint) *models.Event {
	t.Helper()
	var event models.Event
	require.NoError(t, db.First(&event, id).Error)
	require.GreaterOrEqual(t, event.TicketsSold, 0)
	require.LessOrEqual(t, event.TicketsSold, event.TotalTickets)
	return &event
}
