package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// Envelope is the message value published for every outbox event.
type Envelope struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

type OrderPlacedItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlaced struct {
	OrderID   uint              `json:"order_id"`
	Reference string            `json:"reference"`
	UserID    uint              `json:"user_id"`
	Total     decimal.Decimal   `json:"total"`
	Items     []OrderPlacedItem `json:"items"`
}

type OrderStatusChanged struct {
	OrderID   uint   `json:"order_id"`
	Reference string `json:"reference"`
	UserID    uint   `json:"user_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Restocked bool   `json:"restocked,omitempty"`
}
