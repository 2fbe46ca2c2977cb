package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/trainlog/trainlog/internal/cache"
	"github.com/trainlog/trainlog/internal/database"
)

// WindowDays is how far back a summary looks.
const WindowDays = 30

var (
	// ErrNotConfigured is returned when no API key is configured.
	ErrNotConfigured = errors.New("AI service not configured (missing API key)")
	// ErrGeneration is returned when the model call fails.
	ErrGeneration = errors.New("failed to generate analysis")
)

// Store is the persistence needed by the service.
type Store interface {
	ListTrainings(ctx context.Context, userID string, filter database.TrainingFilter) ([]database.Training, error)
	CreateSummary(ctx context.Context, summary *database.TrainingSummary) error
	ListSummaries(ctx context.Context, userID string, limit int) ([]database.TrainingSummary, error)
}

// Result is a generated (or cached) summary.
type Result struct {
	Text          string    `json:"analysis"`
	TrainingCount int       `json:"trainingCount"`
	PeriodStart   time.Time `json:"periodStart"`
	PeriodEnd     time.Time `json:"periodEnd"`
	Model         string    `json:"model,omitempty"`
	Cached        bool      `json:"cached"`
	SummaryID     string    `json:"summaryId,omitempty"`
}

// Service produces training summaries for the last WindowDays days.
type Service struct {
	store     Store
	generator Generator
	cache     *cache.PrefixedCache[Result]
	cacheTTL  time.Duration
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables result caching for ttl.
func WithCache(c *cache.PrefixedCache[Result], ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a summary service. generator may be nil if no API key is configured.
func NewService(store Store, generator Generator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		generator: generator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a generator is available.
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Analyze summarizes the user's sessions of the last WindowDays days and stores the result.
func (s *Service) Analyze(ctx context.Context, userID string, source database.SummarySource) (*Result, error) {
	if s.generator == nil {
		return nil, ErrNotConfigured
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -WindowDays)

	trainings, err := s.store.ListTrainings(ctx, userID, database.TrainingFilter{From: &start, Ascending: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load trainings: %w", err)
	}

	result := &Result{
		TrainingCount: len(trainings),
		PeriodStart:   start,
		PeriodEnd:     end,
	}
	if len(trainings) == 0 {
		result.Text = NoTrainingsMessage
		return result, nil
	}

	key := fingerprint(userID, s.generator.Model(), trainings)
	// scheduled runs always produce their own stored summary
	if s.cache != nil && source != database.SummarySourceScheduled {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			log.Debug("using cached training summary", "user_id", userID)
			cached.Cached = true
			return &cached, nil
		}
		if !cache.IsMiss(err) {
			log.Warn("failed to read summary cache", "error", err)
		}
	}

	text, err := s.generator.Generate(ctx, BuildPrompt(trainings, WindowDays))
	if err != nil {
		log.Error("failed to generate training summary", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	result.Text = text
	result.Model = s.generator.Model()

	summary := &database.TrainingSummary{
		UserID:        userID,
		PeriodStart:   start,
		PeriodEnd:     end,
		TrainingCount: len(trainings),
		Model:         result.Model,
		Content:       text,
		Source:        source,
	}
	if err := s.store.CreateSummary(ctx, summary); err != nil {
		// the caller still gets the text
		log.Warn("failed to store training summary", "user_id", userID, "error", err)
	} else {
		result.SummaryID = summary.ID
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, *result, s.cacheTTL); err != nil {
			log.Warn("failed to cache training summary", "error", err)
		}
	}

	return result, nil
}

// ListSummaries returns the stored summaries of a user, newest first.
func (s *Service) ListSummaries(ctx context.Context, userID string, limit int) ([]database.TrainingSummary, error) {
	return s.store.ListSummaries(ctx, userID, limit)
}

// fingerprint identifies the exact set of sessions a summary was generated from.
func fingerprint(userID, model string, trainings []database.Training) string {
	latest := lo.MaxBy(trainings, func(a, b database.Training) bool {
		return a.UpdatedAt.After(b.UpdatedAt)
	})
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s|%s|%d|%d|", userID, model, len(trainings), latest.UpdatedAt.UnixNano())
	for _, t := range trainings {
		_, _ = fmt.Fprintf(h, "%s,", t.ID)
	}
	return userID + ":" + hex.EncodeToString(h.Sum(nil))
}
