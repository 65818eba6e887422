package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"gorm.io/gorm"
)

var errUnitClosed = errors.New("unit of work already closed")

// Transactor opens units of work.
type Transactor struct {
	db        *gorm.DB
	timeout   time.Duration
	isolation sql.IsolationLevel
}

// NewTransactor maps isolation ("", "serializable", "repeatable_read") to a
// database/sql level; "" keeps the driver default.
func NewTransactor(db *gorm.DB, timeout time.Duration, isolation string) *Transactor {
	t := &Transactor{db: db, timeout: timeout, isolation: sql.LevelDefault}
	switch isolation {
	case "serializable":
		t.isolation = sql.LevelSerializable
	case "repeatable_read":
		t.isolation = sql.LevelRepeatableRead
	}
	return t
}

// UnitOfWork is one explicit database transaction. Every write made through
// DB() commits or rolls back together.
type UnitOfWork struct {
	tx     *gorm.DB
	cancel context.CancelFunc
	done   bool
}

// Begin starts a transaction bounded by the store timeout.
func (t *Transactor) Begin(ctx context.Context) (*UnitOfWork, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	var opts []*sql.TxOptions
	if t.isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: t.isolation})
	}
	tx := t.db.WithContext(ctx).Begin(opts...)
	if tx.Error != nil {
		cancel()
		return nil, apperr.FromDB(tx.Error, "transaction")
	}
	return &UnitOfWork{tx: tx, cancel: cancel}, nil
}

func (u *UnitOfWork) DB() *gorm.DB {
	return u.tx
}

func (u *UnitOfWork) Commit() error {
	if u.done {
		return errUnitClosed
	}
	u.done = true
	defer u.cancel()
	if err := u.tx.Commit().Error; err != nil {
		u.tx.Rollback()
		return apperr.FromDB(err, "transaction")
	}
	return nil
}

// Rollback is a no-op after Commit, so it can be deferred.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.cancel()
	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperr.FromDB(err, "transaction")
	}
	return nil
}
