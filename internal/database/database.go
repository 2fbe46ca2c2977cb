package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"github.com/trainlog/trainlog/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned by the caller.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("record already exists")
)

// DB is the persistence interface used by the services.
type DB interface {
	UserDB
	TrainingDB
	GoalDB
	SummaryDB

	Ping(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// UserDB defines user persistence.
type UserDB interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id string) error
}

// TrainingDB defines training session persistence. Every method is scoped to a single owner.
type TrainingDB interface {
	CreateTraining(ctx context.Context, training *Training) error
	GetTraining(ctx context.Context, userID, id string) (*Training, error)
	ListTrainings(ctx context.Context, userID string, filter TrainingFilter) ([]Training, error)
	UpdateTraining(ctx context.Context, training *Training) error
	DeleteTraining(ctx context.Context, userID, id string) error
}

// GoalDB defines season goal persistence.
type GoalDB interface {
	CreateGoal(ctx context.Context, goal *SeasonGoal) error
	GetGoal(ctx context.Context, userID, id string) (*SeasonGoal, error)
	ListGoals(ctx context.Context, userID string) ([]SeasonGoal, error)
	UpdateGoal(ctx context.Context, goal *SeasonGoal) error
	DeleteGoal(ctx context.Context, userID, id string) error
}

// SummaryDB defines persistence of generated training summaries.
type SummaryDB interface {
	CreateSummary(ctx context.Context, summary *TrainingSummary) error
	ListSummaries(ctx context.Context, userID string, limit int) ([]TrainingSummary, error)
}

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(cfg *config.DatabaseConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DatabaseDriverPostgres:
		dialector = postgres.Open(cfg.URL)
	case config.DatabaseDriverSQLite, "":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&Training{},
		&SeasonGoal{},
		&TrainingSummary{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Debug("database ready", "driver", cfg.Driver)
	return &Client{db: db}, nil
}

// Ping checks that the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translateError maps gorm errors to the package sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"),
		strings.Contains(err.Error(), "SQLSTATE 23505"):
		return ErrConflict
	default:
		return err
	}
}
