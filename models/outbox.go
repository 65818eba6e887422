package models

import "time"

// OutboxEvent is written in the same transaction as the change it describes
// and later published by the relay.
type OutboxEvent struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EventID      string     `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	Type         string     `gorm:"size:64;not null" json:"type"`
	Topic        string     `gorm:"size:128;not null" json:"topic"`
	PartitionKey string     `gorm:"size:128" json:"partition_key"`
	Payload      string     `gorm:"type:text;not null" json:"payload"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `gorm:"index" json:"sent_at"`
}

// All returns every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
	}
}
