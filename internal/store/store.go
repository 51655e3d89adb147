// Package store persists the inventory tables and derives computed state
// (stock status, budget summaries, threshold notifications) on top of gorm.
//
// Every mutating call holds a single store-wide mutex and runs in one
// database transaction, so compound operations such as a stock movement
// with its stock adjustment and notification are applied all together or
// not at all.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockroom/internal/config"
	"stockroom/internal/logger"
	"stockroom/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

func invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

type Options struct {
	AdminRecipient         string
	ManagerRecipient       string
	StrictOrderTransitions bool
	Now                    func() time.Time
}

type Store struct {
	db   *gorm.DB
	lg   *zap.SugaredLogger
	opts Options
	mu   sync.Mutex
}

func New(db *gorm.DB, lg *zap.SugaredLogger, opts Options) *Store {
	if opts.AdminRecipient == "" {
		opts.AdminRecipient = "admin"
	}
	if opts.ManagerRecipient == "" {
		opts.ManagerRecipient = "manager"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{db: db, lg: lg, opts: opts}
}

// Open connects to postgres when cfg.URL is a postgres DSN and to a sqlite
// file otherwise, then migrates the schema.
func Open(cfg config.Database, lg *zap.SugaredLogger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.NewGormLogger(lg)}
	var (
		db  *gorm.DB
		err error
	)
	lower := strings.ToLower(cfg.URL)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.Contains(lower, "host=") {
		db, err = gorm.Open(postgres.Open(cfg.URL), gcfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.File+"?_busy_timeout=5000&_foreign_keys=on"), gcfg)
		if err == nil {
			if sqlDB, derr := db.DB(); derr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Session{}, &models.Material{}, &models.StockMovement{},
		&models.Supplier{}, &models.Order{}, &models.OrderLine{}, &models.Request{},
		&models.Budget{}, &models.Notification{}, &models.AuditLog{},
		&models.Location{}, &models.StockCount{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) now() time.Time { return s.opts.Now() }

func (s *Store) read(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

// write serializes fn against every other writer and runs it in a single
// transaction. Reads inside fn must go through tx.
func (s *Store) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Transaction(fn)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

const keyAttempts = 8

// newKey builds prefix + timestamp + 4 random hex characters, drawing a
// new suffix while the key is already taken in column.
func (s *Store) newKey(tx *gorm.DB, model any, column, prefix string) (string, error) {
	stamp := s.now().Format("20060102150405")
	for i := 0; i < keyAttempts; i++ {
		key := prefix + stamp + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
		taken, err := exists(tx, model, column, key)
		if err != nil {
			return "", err
		}
		if !taken {
			return key, nil
		}
	}
	return "", fmt.Errorf("generate %s key: %w", prefix, ErrDuplicateKey)
}

func exists(tx *gorm.DB, model any, column string, value any) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func formatQty(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}
