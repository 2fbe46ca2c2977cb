package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feeling is the subjective rating of a session.
type Feeling string

const (
	FeelingGreat    Feeling = "great"
	FeelingGood     Feeling = "good"
	FeelingAverage  Feeling = "average"
	FeelingBad      Feeling = "bad"
	FeelingTerrible Feeling = "terrible"
)

// Valid reports whether f is a known feeling.
func (f Feeling) Valid() bool {
	switch f {
	case FeelingGreat, FeelingGood, FeelingAverage, FeelingBad, FeelingTerrible:
		return true
	}
	return false
}

// Score maps a feeling to 1 (terrible) .. 5 (great). Unknown values count as average.
func (f Feeling) Score() int {
	switch f {
	case FeelingGreat:
		return 5
	case FeelingGood:
		return 4
	case FeelingBad:
		return 2
	case FeelingTerrible:
		return 1
	default:
		return 3
	}
}

// Known training types. The type column is free text, these are the ones clients offer.
const (
	TrainingTypeStrength = "strength"
	TrainingTypeCardio   = "cardio"
	TrainingTypeMobility = "mobility"
	TrainingTypeOther    = "other"
)

// SprintEntry is a set of sprints over one distance.
type SprintEntry struct {
	Distance float64  `json:"distance"`
	Count    int      `json:"count"`
	BestTime *float64 `json:"bestTime,omitempty"`
}

// GymEntry is one strength exercise.
type GymEntry struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     *int    `json:"reps,omitempty"`
	Sets     *int    `json:"sets,omitempty"`
}

// JumpEntry is one jump attempt.
type JumpEntry struct {
	Type   string  `json:"type"`
	Result float64 `json:"result"`
}

// Training is a single training session owned by a user.
type Training struct {
	ID              string    `gorm:"primaryKey;size:36"`
	UserID          string    `gorm:"size:36;index;not null"`
	Date            time.Time `gorm:"index;not null"`
	Type            string    `gorm:"not null"`
	DurationMinutes int       `gorm:"not null"`
	Feeling         Feeling   `gorm:"size:16;not null"`
	Notes           string
	Sprints         []SprintEntry `gorm:"serializer:json;type:text"`
	Gym             []GymEntry    `gorm:"serializer:json;type:text"`
	Jumps           []JumpEntry   `gorm:"serializer:json;type:text"`
	TotalDistance   *float64
	TotalLoad       *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BeforeCreate assigns a UUID and normalizes empty sub-entry lists.
func (t *Training) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.normalize()
	return nil
}

func (t *Training) normalize() {
	if t.Sprints == nil {
		t.Sprints = []SprintEntry{}
	}
	if t.Gym == nil {
		t.Gym = []GymEntry{}
	}
	if t.Jumps == nil {
		t.Jumps = []JumpEntry{}
	}
}

// TrainingFilter narrows a training listing. Both bounds are inclusive.
type TrainingFilter struct {
	From *time.Time
	To   *time.Time
	// Ascending orders by date oldest first instead of newest first.
	Ascending bool
}

func (c *Client) CreateTraining(ctx context.Context, training *Training) error {
	training.Date = training.Date.UTC()
	if err := c.db.WithContext(ctx).Create(training).Error; err != nil {
		log.Error("failed to create training", "error", err)
		return translateError(err)
	}
	return nil
}

func (c *Client) GetTraining(ctx context.Context, userID, id string) (*Training, error) {
	var training Training
	if err := c.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&training).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get training", "error", err)
		}
		return nil, translateError(err)
	}
	training.normalize()
	return &training, nil
}

// ListTrainings returns the user's sessions ordered by date, newest first unless the filter asks otherwise.
func (c *Client) ListTrainings(ctx context.Context, userID string, filter TrainingFilter) ([]Training, error) {
	query := c.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.From != nil {
		query = query.Where("date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("date <= ?", filter.To.UTC())
	}
	if filter.Ascending {
		query = query.Order("date ASC")
	} else {
		query = query.Order("date DESC")
	}

	var trainings []Training
	if err := query.Find(&trainings).Error; err != nil {
		log.Error("failed to list trainings", "error", err)
		return nil, err
	}
	for i := range trainings {
		trainings[i].normalize()
	}
	return trainings, nil
}

// UpdateTraining persists all mutable fields. The row must belong to training.UserID.
func (c *Client) UpdateTraining(ctx context.Context, training *Training) error {
	training.normalize()
	training.Date = training.Date.UTC()
	result := c.db.WithContext(ctx).
		Model(&Training{}).
		Where("id = ? AND user_id = ?", training.ID, training.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(training)
	if result.Error != nil {
		log.Error("failed to update training", "error", result.Error)
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) DeleteTraining(ctx context.Context, userID, id string) error {
	result := c.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Training{})
	if result.Error != nil {
		log.Error("failed to delete training", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
