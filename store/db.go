// Package store holds the gorm-backed persistence for users, catalog, carts,
// orders and the event outbox.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTimeout = 5 * time.Second

// Open connects to postgres, or to sqlite when dsn starts with "sqlite://".
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		// sqlite allows one writer; a single connection keeps transactions serialized.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

type Options struct {
	Timeout   time.Duration // bound on each store call
	Isolation string        // checkout isolation, see NewTransactor
	Topic     string        // outbox topic
}

type Store struct {
	DB      *gorm.DB
	Tx      *Transactor
	Users   *UserStore
	Catalog *CatalogStore
	Carts   *CartStore
	Orders  *OrderStore
	Outbox  *OutboxStore
}

func New(db *gorm.DB, opts Options) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	b := base{db: db, timeout: opts.Timeout}
	return &Store{
		DB:      db,
		Tx:      NewTransactor(db, opts.Timeout, opts.Isolation),
		Users:   &UserStore{base: b},
		Catalog: &CatalogStore{base: b},
		Carts:   &CartStore{base: b},
		Orders:  &OrderStore{base: b},
		Outbox:  &OutboxStore{base: b, topic: opts.Topic},
	}
}

// Ping checks the connection within the store timeout.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.Users.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

type base struct {
	db      *gorm.DB
	timeout time.Duration
}

// with returns a session bound to ctx plus the store timeout.
func (b base) with(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
