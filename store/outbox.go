package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
)

type OutboxStore struct {
	base
	topic string
}

// AddTx records an event inside uow; it becomes visible to the relay only if
// uow commits.
func (s *OutboxStore) AddTx(uow *UnitOfWork, eventType, key string, payload any) (*models.OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "encode event")
	}
	rec := models.OutboxEvent{
		EventID:      uuid.NewString(),
		Type:         eventType,
		Topic:        s.topic,
		PartitionKey: key,
		Payload:      string(data),
	}
	if err := uow.DB().Create(&rec).Error; err != nil {
		return nil, apperr.FromDB(err, "outbox event")
	}
	return &rec, nil
}

// FetchPending returns up to limit unsent events in insertion order.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	db, cancel := s.with(ctx)
	defer cancel()
	var out []models.OutboxEvent
	if err := db.Where("sent_at IS NULL").Order("id").Limit(limit).Find(&out).Error; err != nil {
		return nil, apperr.FromDB(err, "outbox event")
	}
	return out, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	db, cancel := s.with(ctx)
	defer cancel()
	err := db.Model(&models.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("sent_at", time.Now().UTC()).Error
	return apperr.FromDB(err, "outbox event")
}
