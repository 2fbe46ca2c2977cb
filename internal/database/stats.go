package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Stats holds row counts and totals across the whole database.
type Stats struct {
	Users          int64
	Admins         int64
	Trainings      int64
	Goals          int64
	Summaries      int64
	TotalMinutes   int64
	LastTrainingAt *time.Time
}

// GetStats collects database wide statistics.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	db := c.db.WithContext(ctx)
	var stats Stats

	if err := db.Model(&User{}).Count(&stats.Users).Error; err != nil {
		log.Error("failed to count users", "error", err)
		return nil, err
	}
	if err := db.Model(&User{}).Where("role = ?", RoleAdmin).Count(&stats.Admins).Error; err != nil {
		log.Error("failed to count admins", "error", err)
		return nil, err
	}
	if err := db.Model(&Training{}).Count(&stats.Trainings).Error; err != nil {
		log.Error("failed to count trainings", "error", err)
		return nil, err
	}
	if err := db.Model(&SeasonGoal{}).Count(&stats.Goals).Error; err != nil {
		log.Error("failed to count season goals", "error", err)
		return nil, err
	}
	if err := db.Model(&TrainingSummary{}).Count(&stats.Summaries).Error; err != nil {
		log.Error("failed to count summaries", "error", err)
		return nil, err
	}
	if err := db.Model(&Training{}).Select("COALESCE(SUM(duration_minutes), 0)").Scan(&stats.TotalMinutes).Error; err != nil {
		log.Error("failed to sum training minutes", "error", err)
		return nil, err
	}

	if stats.Trainings > 0 {
		var last Training
		if err := db.Order("date DESC").Select("date").First(&last).Error; err != nil {
			log.Error("failed to get last training", "error", err)
			return nil, err
		}
		lastDate := last.Date
		stats.LastTrainingAt = &lastDate
	}

	return &stats, nil
}
