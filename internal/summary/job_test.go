package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/trainlog/trainlog/internal/analysis"
	"github.com/trainlog/trainlog/internal/cache"
	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/database/mock"
	"github.com/trainlog/trainlog/internal/notify/email"
)

type stubGenerator struct {
	err error
}

func (g *stubGenerator) Generate(context.Context, string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "Keep it up.", nil
}

func (g *stubGenerator) Model() string { return "stub" }

type recordingEmail struct {
	mu   sync.Mutex
	sent []email.SummaryNotification
	err  error
}

func (r *recordingEmail) Enabled() bool { return true }

func (r *recordingEmail) SendSummary(n email.SummaryNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

type recordingPush struct {
	mu    sync.Mutex
	names []string
}

func (r *recordingPush) SendSummary(_ context.Context, userName string, _ int, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, userName)
	return nil
}

type JobTestSuite struct {
	suite.Suite
	db        *mock.MockDB
	generator *stubGenerator
	email     *recordingEmail
	push      *recordingPush
	ctx       context.Context
}

func (s *JobTestSuite) SetupTest() {
	s.db = mock.NewMockDB()
	s.generator = &stubGenerator{}
	s.email = &recordingEmail{}
	s.push = &recordingPush{}
	s.ctx = context.Background()
}

func (s *JobTestSuite) job() *Job {
	svc := analysis.NewService(s.db, s.generator)
	return NewJob(s.db, svc, "https://train.example.com", WithEmail(s.email), WithPush(s.push))
}

func (s *JobTestSuite) addActiveUser(name string) *database.User {
	u := s.db.AddUser(database.User{Email: name + "@example.com", Name: name})
	s.db.AddTraining(database.Training{
		UserID:          u.ID,
		Date:            time.Now().AddDate(0, 0, -1).UTC(),
		Type:            "cardio",
		DurationMinutes: 40,
		Feeling:         database.FeelingGood,
	})
	return u
}

func (s *JobTestSuite) TestRun_GeneratesAndNotifies() {
	s.addActiveUser("ana")
	s.addActiveUser("ben")
	s.db.AddUser(database.User{Email: "idle@example.com", Name: "idle"})

	report, err := s.job().Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(Report{Users: 3, Generated: 2, Skipped: 1}, report)

	s.Len(s.email.sent, 2)
	s.ElementsMatch([]string{"ana", "ben"}, s.push.names)
	for _, n := range s.email.sent {
		s.Equal("Keep it up.", n.Content)
		s.Equal(1, n.TrainingCount)
		s.Equal("https://train.example.com", n.AppURL)
	}

	summaries := s.db.Summaries()
	s.Len(summaries, 2)
	for _, sum := range summaries {
		s.Equal(database.SummarySourceScheduled, sum.Source)
	}
}

func (s *JobTestSuite) TestRun_StoresScheduledSummaryDespiteCachedResult() {
	u := s.addActiveUser("ana")
	c := cache.NewPrefixedCache[analysis.Result](cache.New(nil), config.CacheTypeMemory, "summary-")
	svc := analysis.NewService(s.db, s.generator, analysis.WithCache(c, time.Hour))

	_, err := svc.Analyze(s.ctx, u.ID, database.SummarySourceOnDemand)
	s.Require().NoError(err)

	job := NewJob(s.db, svc, "https://train.example.com", WithEmail(s.email), WithPush(s.push))
	report, err := job.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Generated)

	sources := make([]database.SummarySource, 0, 2)
	for _, sum := range s.db.Summaries() {
		sources = append(sources, sum.Source)
	}
	s.ElementsMatch([]database.SummarySource{database.SummarySourceOnDemand, database.SummarySourceScheduled}, sources)
	s.Len(s.email.sent, 1)
}

func (s *JobTestSuite) TestRun_GenerationFailureIsReported() {
	s.addActiveUser("ana")
	s.generator.err = errors.New("quota exceeded")

	report, err := s.job().Run(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, analysis.ErrGeneration)
	s.Equal(1, report.Failed)
	s.Empty(s.email.sent)
}

func (s *JobTestSuite) TestRun_NotifierFailureStillCountsSummary() {
	s.addActiveUser("ana")
	s.email.err = errors.New("smtp down")

	report, err := s.job().Run(s.ctx)
	s.Require().Error(err)
	s.Equal(1, report.Failed)
	s.Len(s.db.Summaries(), 1)
	s.Equal([]string{"ana"}, s.push.names)
}

func (s *JobTestSuite) TestRun_ListUsersError() {
	s.db.ListUsersError = errors.New("db gone")

	_, err := s.job().Run(s.ctx)
	s.Error(err)
}

func (s *JobTestSuite) TestRunForUser_NoSessions() {
	u := s.db.AddUser(database.User{Email: "idle@example.com"})

	generated, err := s.job().RunForUser(s.ctx, *u)
	s.Require().NoError(err)
	s.False(generated)
	s.Empty(s.push.names)
}

func TestJobTestSuite(t *testing.T) {
	suite.Run(t, new(JobTestSuite))
}
