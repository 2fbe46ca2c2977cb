package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummarySource tells how a summary was requested.
type SummarySource string

const (
	SummarySourceOnDemand  SummarySource = "on_demand"
	SummarySourceScheduled SummarySource = "scheduled"
)

// TrainingSummary is a generated coach summary of a user's recent sessions.
type TrainingSummary struct {
	ID            string    `gorm:"primaryKey;size:36"`
	UserID        string    `gorm:"size:36;index;not null"`
	PeriodStart   time.Time `gorm:"not null"`
	PeriodEnd     time.Time `gorm:"not null"`
	TrainingCount int
	Model         string        `gorm:"size:64"`
	Content       string        `gorm:"type:text;not null"`
	Source        SummarySource `gorm:"size:16;not null"`
	CreatedAt     time.Time     `gorm:"index"`
}

func (s *TrainingSummary) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (c *Client) CreateSummary(ctx context.Context, summary *TrainingSummary) error {
	if err := c.db.WithContext(ctx).Create(summary).Error; err != nil {
		log.Error("failed to create training summary", "error", err)
		return translateError(err)
	}
	return nil
}

// ListSummaries returns the newest summaries of a user. A limit <= 0 returns all of them.
func (c *Client) ListSummaries(ctx context.Context, userID string, limit int) ([]TrainingSummary, error) {
	query := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var summaries []TrainingSummary
	if err := query.Find(&summaries).Error; err != nil {
		log.Error("failed to list training summaries", "error", err)
		return nil, err
	}
	return summaries, nil
}
