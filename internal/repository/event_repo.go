package repository

import (
	"context"

	"github.com/eventify/eventify-api/internal/models"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]models.Event, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]any, newTotal int) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	TryReserve(ctx context.Context, tx *gorm.DB, id uint, quantity int) (bool, error)
	Release(ctx context.Context, tx *gorm.DB, id uint, quantity int) error
	GetDB() *gorm.DB
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindByOrganizer(ctx context.Context, organizerID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateFields applies the given column updates only while tickets_sold fits
// under the new capacity. The predicate rides on the UPDATE itself, so a
// concurrent reservation cannot slip between check and write. Returns false
// when no row matched (capacity floor violated).
func (r *eventRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id uint, fields map[string]any, newTotal int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND tickets_sold <= ?", id, newTotal).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *eventRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return tx.WithContext(ctx).Delete(&models.Event{}, id).Error
}

// TryReserve admits quantity against remaining capacity. The capacity check
// and the counter increment are a single conditional UPDATE, serialized by
// the store on the event row. Returns false on insufficient capacity.
func (r *eventRepository) TryReserve(ctx context.Context, tx *gorm.DB, id uint, quantity int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND tickets_sold + ? <= total_tickets", id, quantity).
		Update("tickets_sold", gorm.Expr("tickets_sold + ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Release returns quantity units to the event, flooring the counter at zero.
func (r *eventRepository) Release(ctx context.Context, tx *gorm.DB, id uint, quantity int) error {
	res := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND tickets_sold >= ?", id, quantity).
		Update("tickets_sold", gorm.Expr("tickets_sold - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.WithContext(ctx).
			Model(&models.Event{}).
			Where("id = ?", id).
			Update("tickets_sold", 0).Error
	}
	return nil
}
