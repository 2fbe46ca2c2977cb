package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/trainlog/trainlog/internal/cache"
	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/database/mock"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Model() string { return "test-model" }

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type ServiceTestSuite struct {
	suite.Suite
	db        *mock.MockDB
	generator *fakeGenerator
	now       time.Time
	ctx       context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	s.db = mock.NewMockDB()
	s.generator = &fakeGenerator{reply: "**Great month.**"}
	s.now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s.ctx = context.Background()
}

func (s *ServiceTestSuite) service(opts ...Option) *Service {
	opts = append(opts, WithClock(func() time.Time { return s.now }))
	return NewService(s.db, s.generator, opts...)
}

func (s *ServiceTestSuite) addTraining(userID string, daysAgo int, kind string, feeling database.Feeling, notes string) {
	s.db.AddTraining(database.Training{
		UserID:          userID,
		Date:            s.now.AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour),
		Type:            kind,
		DurationMinutes: 30 + daysAgo,
		Feeling:         feeling,
		Notes:           notes,
	})
}

func (s *ServiceTestSuite) TestAnalyze_NotConfigured() {
	svc := NewService(s.db, nil)
	s.False(svc.Enabled())

	_, err := svc.Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.ErrorIs(err, ErrNotConfigured)
}

func (s *ServiceTestSuite) TestAnalyze_NoTrainings() {
	s.addTraining("user", 45, "cardio", database.FeelingGood, "too old")
	s.addTraining("someone-else", 1, "cardio", database.FeelingGood, "")

	result, err := s.service().Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.Require().NoError(err)
	s.Equal(NoTrainingsMessage, result.Text)
	s.Zero(result.TrainingCount)
	s.Zero(s.generator.calls())
	s.Empty(s.db.Summaries())
}

func (s *ServiceTestSuite) TestAnalyze_PromptInAscendingOrder() {
	s.addTraining("user", 2, "strength", database.FeelingGreat, "squats  5x5")
	s.addTraining("user", 10, "cardio", database.FeelingBad, "")
	s.addTraining("user", 31, "other", database.FeelingGood, "outside window")

	result, err := s.service().Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.Require().NoError(err)
	s.Equal("**Great month.**", result.Text)
	s.Equal(2, result.TrainingCount)
	s.Equal("test-model", result.Model)
	s.False(result.Cached)

	s.Require().Equal(1, s.generator.calls())
	prompt := s.generator.prompts[0]
	older := "- 2026-10-09: cardio, 40 min, feeling: bad"
	newer := "- 2026-10-17: strength, 32 min, feeling: great, squats 5x5"
	s.Contains(prompt, older+"\n"+newer)
	s.NotContains(prompt, "outside window")
	s.Contains(prompt, "at most 3 paragraphs")

	summaries := s.db.Summaries()
	s.Require().Len(summaries, 1)
	s.Equal(result.SummaryID, summaries[0].ID)
	s.Equal(database.SummarySourceOnDemand, summaries[0].Source)
	s.Equal(2, summaries[0].TrainingCount)
}

func (s *ServiceTestSuite) TestAnalyze_GenerationError() {
	s.addTraining("user", 1, "cardio", database.FeelingGood, "")
	s.generator.err = errors.New("quota exceeded")

	_, err := s.service().Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.ErrorIs(err, ErrGeneration)
	s.Empty(s.db.Summaries())
}

func (s *ServiceTestSuite) TestAnalyze_StoreFailureStillReturnsText() {
	s.addTraining("user", 1, "cardio", database.FeelingGood, "")
	s.db.CreateSummaryError = errors.New("disk full")

	result, err := s.service().Analyze(s.ctx, "user", database.SummarySourceScheduled)
	s.Require().NoError(err)
	s.Equal("**Great month.**", result.Text)
	s.Empty(result.SummaryID)
}

func (s *ServiceTestSuite) TestAnalyze_CacheReusedUntilTrainingsChange() {
	s.addTraining("user", 1, "cardio", database.FeelingGood, "")
	c := cache.NewPrefixedCache[Result](cache.New(nil), config.CacheTypeMemory, "analysis-")
	svc := s.service(WithCache(c, time.Hour))

	first, err := svc.Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.Require().NoError(err)
	s.False(first.Cached)

	second, err := svc.Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.Require().NoError(err)
	s.True(second.Cached)
	s.Equal(first.Text, second.Text)
	s.Equal(1, s.generator.calls())

	s.addTraining("user", 3, "strength", database.FeelingAverage, "")
	third, err := svc.Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.Require().NoError(err)
	s.False(third.Cached)
	s.Equal(2, s.generator.calls())
}

func (s *ServiceTestSuite) TestAnalyze_ScheduledBypassesCacheRead() {
	s.addTraining("user", 1, "cardio", database.FeelingGood, "")
	c := cache.NewPrefixedCache[Result](cache.New(nil), config.CacheTypeMemory, "analysis-")
	svc := s.service(WithCache(c, time.Hour))

	_, err := svc.Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.Require().NoError(err)

	scheduled, err := svc.Analyze(s.ctx, "user", database.SummarySourceScheduled)
	s.Require().NoError(err)
	s.False(scheduled.Cached)
	s.NotEmpty(scheduled.SummaryID)
	s.Equal(2, s.generator.calls())

	summaries := s.db.Summaries()
	s.Require().Len(summaries, 2)
	s.ElementsMatch(
		[]database.SummarySource{database.SummarySourceOnDemand, database.SummarySourceScheduled},
		[]database.SummarySource{summaries[0].Source, summaries[1].Source},
	)

	again, err := svc.Analyze(s.ctx, "user", database.SummarySourceOnDemand)
	s.Require().NoError(err)
	s.True(again.Cached)
}

func (s *ServiceTestSuite) TestWithCache_ZeroTTLDisables() {
	s.addTraining("user", 1, "cardio", database.FeelingGood, "")
	c := cache.NewPrefixedCache[Result](cache.New(nil), config.CacheTypeMemory, "analysis-")
	svc := s.service(WithCache(c, 0))

	for i := 0; i < 2; i++ {
		_, err := svc.Analyze(s.ctx, "user", database.SummarySourceOnDemand)
		s.Require().NoError(err)
	}
	s.Equal(2, s.generator.calls())
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func TestFormatTraining(t *testing.T) {
	line := FormatTraining(database.Training{
		Date:            time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Type:            "mobility",
		DurationMinutes: 20,
		Feeling:         database.FeelingAverage,
		Notes:           "hips\nand ankles",
	})
	if line != "- 2026-01-05: mobility, 20 min, feeling: average, hips and ankles" {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.HasSuffix(FormatTraining(database.Training{Type: "x", Feeling: database.FeelingGood, Notes: "  "}), "feeling: good") {
		t.Fatalf("blank notes must not add a trailing separator")
	}
}
