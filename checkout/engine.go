// Package checkout turns a user's cart into an order in one unit of work and
// drives admin status changes on the orders it created.
package checkout

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logging"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/store"
	"github.com/shopspring/decimal"
)

type Beginner interface {
	Begin(ctx context.Context) (*store.UnitOfWork, error)
}

type Carts interface {
	ItemsTx(uow *store.UnitOfWork, userID uint) ([]models.CartItem, error)
	ClearTx(uow *store.UnitOfWork, userID uint, itemIDs []uint) error
}

type StockReserver interface {
	ReserveStock(uow *store.UnitOfWork, productID uint, qty int) (store.Reservation, error)
	ReleaseStock(uow *store.UnitOfWork, productID uint, qty int) error
}

type Orders interface {
	CreateTx(uow *store.UnitOfWork, order *models.Order) error
	FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Order, error)
	LockTx(uow *store.UnitOfWork, orderID uint) (*models.Order, error)
	SetStatusTx(uow *store.UnitOfWork, order *models.Order, status models.OrderStatus) error
}

type EventWriter interface {
	AddTx(uow *store.UnitOfWork, eventType, key string, payload any) (*models.OutboxEvent, error)
}

// Notifier is told about committed orders, e.g. to push them to admin dashboards.
type Notifier interface {
	Notify(eventType string, order *models.Order)
}

type Observer interface {
	ObserveCheckout(outcome string, d time.Duration)
}

type Deps struct {
	Tx       Beginner
	Carts    Carts
	Stock    StockReserver
	Orders   Orders
	Events   EventWriter
	Notifier Notifier // optional
	Observer Observer // optional
}

type Engine struct {
	Deps
	now func() time.Time
}

func NewEngine(d Deps) *Engine {
	return &Engine{Deps: d, now: time.Now}
}

// Result is what a checkout hands back to the client.
type Result struct {
	Order    *models.Order
	Replayed bool // an earlier checkout with the same key was returned
}

const maxIdempotencyKey = 128

// Checkout converts the user's cart into a pending order. Stock reservation,
// order creation, cart clearing and the order.placed event are committed
// together or not at all. A non-empty idempotencyKey makes retries return the
// order placed by the first attempt.
func (e *Engine) Checkout(ctx context.Context, userID uint, idempotencyKey string) (*Result, error) {
	start := time.Now()
	res, err := e.checkout(ctx, userID, strings.TrimSpace(idempotencyKey))
	e.record(userID, res, err, start)
	return res, err
}

func (e *Engine) checkout(ctx context.Context, userID uint, key string) (*Result, error) {
	if userID == 0 {
		return nil, apperr.Unauthenticated("authentication required")
	}
	if len(key) > maxIdempotencyKey {
		return nil, apperr.Validation("Idempotency-Key is too long")
	}
	if key != "" {
		prior, err := e.Orders.FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return &Result{Order: prior, Replayed: true}, nil
		}
	}

	// A client disconnect must not abort the unit of work halfway; the
	// transactor still bounds it with the store timeout.
	order, err := e.placeOrder(context.WithoutCancel(ctx), userID, key)
	if key != "" && apperr.KindOf(err) == apperr.KindConflict {
		// Lost a race with a concurrent request carrying the same key.
		prior, ferr := e.Orders.FindByIdempotencyKey(ctx, userID, key)
		if ferr == nil && prior != nil {
			return &Result{Order: prior, Replayed: true}, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if e.Notifier != nil {
		e.Notifier.Notify(events.TypeOrderPlaced, order)
	}
	return &Result{Order: order}, nil
}

func (e *Engine) placeOrder(ctx context.Context, userID uint, key string) (*models.Order, error) {
	uow, err := e.Tx.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	items, err := e.Carts.ItemsTx(uow, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.KindEmptyCart, "cart is empty")
	}

	// Reserve in product order so concurrent checkouts lock rows consistently.
	sorted := append([]models.CartItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	order := &models.Order{
		Reference: e.reference(),
		UserID:    userID,
		Status:    models.OrderStatusPending,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}
	itemIDs := make([]uint, 0, len(sorted))
	for _, it := range sorted {
		r, err := e.Stock.ReserveStock(uow, it.ProductID, it.Quantity)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.New(apperr.KindConflict, "product %d in cart is no longer available", it.ProductID)
			}
			return nil, err
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: r.ProductID,
			Title:     r.Title,
			Quantity:  r.Quantity,
			Price:     r.UnitPrice,
		})
		itemIDs = append(itemIDs, it.ID)
	}
	order.TotalPrice = models.SumItems(order.Items)

	if err := e.Orders.CreateTx(uow, order); err != nil {
		return nil, err
	}
	if err := e.Carts.ClearTx(uow, userID, itemIDs); err != nil {
		return nil, err
	}
	if _, err := e.Events.AddTx(uow, events.TypeOrderPlaced, order.Reference, placedEvent(order)); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

func (e *Engine) reference() string {
	return e.now().UTC().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

func (e *Engine) record(userID uint, res *Result, err error, start time.Time) {
	outcome := "ok"
	f := logging.Fields{UserID: userID, Step: "checkout", DurationMS: logging.Since(start)}
	switch {
	case err != nil:
		outcome = string(apperr.KindOf(err))
		f.Status = "error"
		f.Error = err.Error()
	case res.Replayed:
		outcome = "replayed"
		f.Status = "replayed"
		f.OrderID = res.Order.ID
	default:
		f.Status = "ok"
		f.OrderID = res.Order.ID
		f.Message = res.Order.TotalPrice.StringFixed(2)
	}
	logging.Log(f)
	if e.Observer != nil {
		e.Observer.ObserveCheckout(outcome, time.Since(start))
	}
}

func placedEvent(o *models.Order) events.OrderPlaced {
	ev := events.OrderPlaced{
		OrderID:   o.ID,
		Reference: o.Reference,
		UserID:    o.UserID,
		Total:     o.TotalPrice,
		Items:     make([]events.OrderPlacedItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, events.OrderPlacedItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return ev
}

// Total is a convenience for handlers that only need the amount.
func (r *Result) Total() decimal.Decimal {
	return r.Order.TotalPrice
}
