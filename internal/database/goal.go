package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalCategory groups season goals by discipline family.
type GoalCategory string

const (
	GoalCategorySprint   GoalCategory = "sprint"
	GoalCategoryStrength GoalCategory = "strength"
	GoalCategoryJump     GoalCategory = "jump"
)

// Valid reports whether g is a known category.
func (g GoalCategory) Valid() bool {
	return g == GoalCategorySprint || g == GoalCategoryStrength || g == GoalCategoryJump
}

// SeasonGoal is a target a user wants to reach this season, e.g. 100m in 11.5s.
type SeasonGoal struct {
	ID          string       `gorm:"primaryKey;size:36"`
	UserID      string       `gorm:"size:36;index;not null"`
	Discipline  string       `gorm:"not null"`
	TargetValue float64      `gorm:"not null"`
	Unit        string       `gorm:"size:16;not null"`
	Category    GoalCategory `gorm:"size:16;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (g *SeasonGoal) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (c *Client) CreateGoal(ctx context.Context, goal *SeasonGoal) error {
	if err := c.db.WithContext(ctx).Create(goal).Error; err != nil {
		log.Error("failed to create season goal", "error", err)
		return translateError(err)
	}
	return nil
}

func (c *Client) GetGoal(ctx context.Context, userID, id string) (*SeasonGoal, error) {
	var goal SeasonGoal
	if err := c.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&goal).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get season goal", "error", err)
		}
		return nil, translateError(err)
	}
	return &goal, nil
}

func (c *Client) ListGoals(ctx context.Context, userID string) ([]SeasonGoal, error) {
	var goals []SeasonGoal
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("category ASC, created_at ASC").Find(&goals).Error; err != nil {
		log.Error("failed to list season goals", "error", err)
		return nil, err
	}
	return goals, nil
}

func (c *Client) UpdateGoal(ctx context.Context, goal *SeasonGoal) error {
	result := c.db.WithContext(ctx).
		Model(&SeasonGoal{}).
		Where("id = ? AND user_id = ?", goal.ID, goal.UserID).
		Select("discipline", "target_value", "unit", "category", "updated_at").
		Updates(goal)
	if result.Error != nil {
		log.Error("failed to update season goal", "error", result.Error)
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) DeleteGoal(ctx context.Context, userID, id string) error {
	result := c.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&SeasonGoal{})
	if result.Error != nil {
		log.Error("failed to delete season goal", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
