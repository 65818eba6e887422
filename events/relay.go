package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/junaidrashid-git/storefront-api/logging"
	"github.com/junaidrashid-git/storefront-api/models"
)

// Outbox is the slice of the outbox store the relay needs.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkSent(ctx context.Context, ids []uint) error
}

// Relay moves committed outbox events to a Publisher. Delivery is at least
// once: a crash between Publish and MarkSent republishes the batch.
type Relay struct {
	outbox   Outbox
	pub      Publisher
	interval time.Duration
	batch    int
}

func NewRelay(outbox Outbox, pub Publisher, interval time.Duration, batch int) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{outbox: outbox, pub: pub, interval: interval, batch: batch}
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				logging.Log(logging.Fields{Step: "outbox_relay", Status: "error", Error: err.Error()})
			}
		}
	}
}

// Flush publishes pending events until none are left and returns how many
// were sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	sent := 0
	for {
		pending, err := r.outbox.FetchPending(ctx, r.batch)
		if err != nil {
			return sent, fmt.Errorf("fetch pending: %w", err)
		}
		if len(pending) == 0 {
			return sent, nil
		}

		msgs := make([]Message, 0, len(pending))
		ids := make([]uint, 0, len(pending))
		for _, ev := range pending {
			value, err := json.Marshal(Envelope{
				EventID:   ev.EventID,
				Type:      ev.Type,
				CreatedAt: ev.CreatedAt.UTC(),
				Payload:   json.RawMessage(ev.Payload),
			})
			if err != nil {
				return sent, fmt.Errorf("encode event %s: %w", ev.EventID, err)
			}
			msgs = append(msgs, Message{
				Topic:   ev.Topic,
				Key:     ev.PartitionKey,
				Value:   value,
				Headers: map[string]string{"event_id": ev.EventID, "type": ev.Type},
			})
			ids = append(ids, ev.ID)
		}

		if err := r.pub.Publish(ctx, msgs...); err != nil {
			return sent, fmt.Errorf("publish: %w", err)
		}
		if err := r.outbox.MarkSent(ctx, ids); err != nil {
			return sent, fmt.Errorf("mark sent: %w", err)
		}
		sent += len(pending)
		if len(pending) < r.batch {
			return sent, nil
		}
	}
}
