package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/gravatar"
)

// ToUser converts a database user to its public projection.
func ToUser(u *database.User, avatars *gravatar.Resolver) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		AvatarURL: avatars.URL(u.Email),
		CreatedAt: u.CreatedAt,
	}
}

// ToUsers converts a list of database users.
func ToUsers(users []database.User, avatars *gravatar.Resolver) []User {
	return lo.Map(users, func(u database.User, _ int) User {
		return ToUser(&u, avatars)
	})
}

// ToProfile converts a database user including the profile fields.
func ToProfile(u *database.User, avatars *gravatar.Resolver) Profile {
	return Profile{
		User:      ToUser(u, avatars),
		Weight:    u.Weight,
		Height:    u.Height,
		BirthDate: u.BirthDate,
		Theme:     u.Theme,
	}
}

func ToTraining(t *database.Training) Training {
	return Training{
		ID:              t.ID,
		UserID:          t.UserID,
		Date:            t.Date,
		Type:            t.Type,
		DurationMinutes: t.DurationMinutes,
		Feeling:         t.Feeling,
		Notes:           t.Notes,
		Sprints:         lo.Ternary(t.Sprints == nil, []database.SprintEntry{}, t.Sprints),
		Gym:             lo.Ternary(t.Gym == nil, []database.GymEntry{}, t.Gym),
		Jumps:           lo.Ternary(t.Jumps == nil, []database.JumpEntry{}, t.Jumps),
		TotalDistance:   t.TotalDistance,
		TotalLoad:       t.TotalLoad,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func ToTrainings(trainings []database.Training) []Training {
	return lo.Map(trainings, func(t database.Training, _ int) Training {
		return ToTraining(&t)
	})
}

func ToGoal(g *database.SeasonGoal) Goal {
	return Goal{
		ID:          g.ID,
		Discipline:  g.Discipline,
		TargetValue: g.TargetValue,
		Unit:        g.Unit,
		Category:    g.Category,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func ToGoals(goals []database.SeasonGoal) []Goal {
	return lo.Map(goals, func(g database.SeasonGoal, _ int) Goal {
		return ToGoal(&g)
	})
}

func ToSummaries(summaries []database.TrainingSummary) []Summary {
	return lo.Map(summaries, func(s database.TrainingSummary, _ int) Summary {
		return Summary{
			ID:            s.ID,
			PeriodStart:   s.PeriodStart,
			PeriodEnd:     s.PeriodEnd,
			TrainingCount: s.TrainingCount,
			Model:         s.Model,
			Content:       s.Content,
			Source:        s.Source,
			CreatedAt:     s.CreatedAt,
		}
	})
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NewTraining validates a create request and builds the record for userID.
func (r TrainingRequest) NewTraining(userID string) (*database.Training, error) {
	var missing []string
	if r.Date == nil {
		missing = append(missing, "date")
	}
	if r.Type == nil || strings.TrimSpace(*r.Type) == "" {
		missing = append(missing, "type")
	}
	if r.DurationMinutes == nil {
		missing = append(missing, "durationMinutes")
	}
	if r.Feeling == nil {
		missing = append(missing, "feeling")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	t := &database.Training{UserID: userID}
	if err := r.Apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply copies the present fields onto t.
func (r TrainingRequest) Apply(t *database.Training) error {
	if r.Date != nil {
		date, err := ParseDate(*r.Date)
		if err != nil {
			return err
		}
		t.Date = date
	}
	if r.Type != nil {
		kind := strings.TrimSpace(*r.Type)
		if kind == "" {
			return errors.New("type must not be empty")
		}
		t.Type = kind
	}
	if r.DurationMinutes != nil {
		if *r.DurationMinutes < 0 {
			return errors.New("durationMinutes must not be negative")
		}
		t.DurationMinutes = *r.DurationMinutes
	}
	if r.Feeling != nil {
		feeling := database.Feeling(*r.Feeling)
		if !feeling.Valid() {
			return errors.New("feeling must be one of great, good, average, bad, terrible")
		}
		t.Feeling = feeling
	}
	if r.Notes != nil {
		t.Notes = *r.Notes
	}
	if r.Sprints != nil {
		t.Sprints = *r.Sprints
	}
	if r.Gym != nil {
		t.Gym = *r.Gym
	}
	if r.Jumps != nil {
		t.Jumps = *r.Jumps
	}
	if r.TotalDistance != nil {
		if *r.TotalDistance < 0 {
			return errors.New("totalDistance must not be negative")
		}
		t.TotalDistance = r.TotalDistance
	}
	if r.TotalLoad != nil {
		if *r.TotalLoad < 0 {
			return errors.New("totalLoad must not be negative")
		}
		t.TotalLoad = r.TotalLoad
	}
	return nil
}

// NewGoal validates a create request and builds the goal for userID.
func (r GoalRequest) NewGoal(userID string) (*database.SeasonGoal, error) {
	if r.Discipline == nil || r.TargetValue == nil || r.Unit == nil || r.Category == nil {
		return nil, errors.New("discipline, targetValue, unit and category are required")
	}
	g := &database.SeasonGoal{UserID: userID}
	if err := r.Apply(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Apply copies the present fields onto g.
func (r GoalRequest) Apply(g *database.SeasonGoal) error {
	if r.Discipline != nil {
		discipline := strings.TrimSpace(*r.Discipline)
		if discipline == "" {
			return errors.New("discipline must not be empty")
		}
		g.Discipline = discipline
	}
	if r.TargetValue != nil {
		if *r.TargetValue <= 0 {
			return errors.New("targetValue must be greater than zero")
		}
		g.TargetValue = *r.TargetValue
	}
	if r.Unit != nil {
		unit := strings.TrimSpace(*r.Unit)
		if unit == "" {
			return errors.New("unit must not be empty")
		}
		g.Unit = unit
	}
	if r.Category != nil {
		category := database.GoalCategory(*r.Category)
		if !category.Valid() {
			return errors.New("category must be one of sprint, strength, jump")
		}
		g.Category = category
	}
	return nil
}
