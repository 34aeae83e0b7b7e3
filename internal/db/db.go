package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/planora/planora/internal/config"
	"github.com/planora/planora/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned by the caller
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would violate a uniqueness or state rule
	ErrConflict = errors.New("conflict")
	// ErrInvalid is returned for input the store refuses to persist
	ErrInvalid = errors.New("invalid input")
)

// Store wraps a gorm connection. Every query it issues is scoped to a single owner.
type Store struct {
	db *gorm.DB
}

// New wraps an existing gorm connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open sets up the database connection described by cfg and runs migrations
func Open(cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(cfg.Path)
	case "postgres":
		return OpenPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenSQLite opens (creating if needed) a sqlite database file
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	gdb, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite allows a single writer; one connection keeps transactions serialized
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return migrated(gdb)
}

// OpenPostgres connects through lib/pq using the given DSN
func OpenPostgres(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return migrated(gdb)
}

func migrated(gdb *gorm.DB) (*Store, error) {
	s := New(gdb)
	if err := s.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// runMigrations creates/updates the database schema
func (s *Store) runMigrations() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Project{},
		&models.Task{},
		&models.Tag{},
		&models.Note{},
		&models.FocusSession{},
	)
}

// Transaction runs fn inside a single database transaction. The transaction commits
// only if fn returns nil; any error or panic rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Gorm exposes the underlying connection for callers that need raw access
func (s *Store) Gorm() *gorm.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notFound maps gorm's record-not-found error to ErrNotFound
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s #%d: %w", what, id, ErrNotFound)
	}
	return err
}
