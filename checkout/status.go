package checkout

import (
	"context"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logging"
	"github.com/junaidrashid-git/storefront-api/models"
)

// UpdateStatus moves an order along the status graph. Cancelling puts the
// ordered quantities back into stock in the same unit of work. Setting the
// current status again is accepted and changes nothing.
func (e *Engine) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	start := time.Now()
	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, apperr.Validation("status must be one of pending, processing, shipped, delivered, cancelled")
	}

	uow, err := e.Tx.Begin(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	order, err := e.Orders.LockTx(uow, orderID)
	if err != nil {
		return nil, err
	}
	prev := order.Status
	if prev == next {
		return order, nil
	}
	if !prev.CanTransitionTo(next) {
		return nil, apperr.New(apperr.KindValidation, "cannot move order from %s to %s", prev, next)
	}

	restock := next == models.OrderStatusCancelled
	if restock {
		for _, it := range order.Items {
			if err := e.Stock.ReleaseStock(uow, it.ProductID, it.Quantity); err != nil {
				return nil, err
			}
		}
	}
	if err := e.Orders.SetStatusTx(uow, order, next); err != nil {
		return nil, err
	}
	order.Status = next

	ev := events.OrderStatusChanged{
		OrderID:   order.ID,
		Reference: order.Reference,
		UserID:    order.UserID,
		From:      string(prev),
		To:        string(next),
		Restocked: restock,
	}
	if _, err := e.Events.AddTx(uow, events.TypeOrderStatusChanged, order.Reference, ev); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	logging.Log(logging.Fields{
		UserID:     order.UserID,
		OrderID:    order.ID,
		Step:       "order_status",
		Status:     string(next),
		DurationMS: logging.Since(start),
		Message:    string(prev) + " -> " + string(next),
	})
	if e.Notifier != nil {
		e.Notifier.Notify(events.TypeOrderStatusChanged, order)
	}
	return order, nil
}
