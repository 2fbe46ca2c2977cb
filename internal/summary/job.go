// Package summary generates and delivers periodic training summaries.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/trainlog/trainlog/internal/analysis"
	"github.com/trainlog/trainlog/internal/database"
	"github.com/trainlog/trainlog/internal/notify/email"
	"golang.org/x/sync/errgroup"
)

// JobID is the scheduler id of the monthly summary job.
const JobID = "monthly_summary"

const maxConcurrent = 4

// Analyzer produces a summary for one user.
type Analyzer interface {
	Analyze(ctx context.Context, userID string, source database.SummarySource) (*analysis.Result, error)
}

// Users lists the accounts a run iterates over.
type Users interface {
	ListUsers(ctx context.Context) ([]database.User, error)
}

// EmailSender delivers summaries by email.
type EmailSender interface {
	Enabled() bool
	SendSummary(notification email.SummaryNotification) error
}

// PushSender delivers summaries to a push topic.
type PushSender interface {
	SendSummary(ctx context.Context, userName string, trainingCount int, content, clickURL string) error
}

// Report is the outcome of a run.
type Report struct {
	Users     int
	Generated int
	Skipped   int
	Failed    int
}

// Job generates summaries for every user and hands them to the notifiers.
type Job struct {
	users    Users
	analyzer Analyzer
	email    EmailSender
	push     PushSender
	appURL   string
}

// Option configures a Job.
type Option func(*Job)

// WithEmail enables email delivery.
func WithEmail(s EmailSender) Option {
	return func(j *Job) { j.email = s }
}

// WithPush enables push delivery.
func WithPush(s PushSender) Option {
	return func(j *Job) { j.push = s }
}

// NewJob creates a summary job. appURL is linked from notifications.
func NewJob(users Users, analyzer Analyzer, appURL string, opts ...Option) *Job {
	j := &Job{
		users:    users,
		analyzer: analyzer,
		appURL:   appURL,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run summarizes every user. Users without sessions in the window are skipped.
// Per-user failures are logged and joined into the returned error.
func (j *Job) Run(ctx context.Context) (Report, error) {
	users, err := j.users.ListUsers(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list users: %w", err)
	}

	var (
		mu     sync.Mutex
		report = Report{Users: len(users)}
		errs   []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for _, u := range users {
		g.Go(func() error {
			generated, err := j.RunForUser(gctx, u)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				errs = append(errs, fmt.Errorf("user %s: %w", u.ID, err))
			case generated:
				report.Generated++
			default:
				report.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("Training summary run finished",
		"users", report.Users, "generated", report.Generated,
		"skipped", report.Skipped, "failed", report.Failed)

	return report, errors.Join(errs...)
}

// Execute adapts Run to the scheduler's job signature.
func (j *Job) Execute(ctx context.Context) error {
	_, err := j.Run(ctx)
	return err
}

// RunForUser generates and delivers the summary of a single user. It reports
// false when the user had no sessions to summarize.
func (j *Job) RunForUser(ctx context.Context, user database.User) (bool, error) {
	result, err := j.analyzer.Analyze(ctx, user.ID, database.SummarySourceScheduled)
	if err != nil {
		return false, err
	}
	if result.TrainingCount == 0 {
		log.Debug("No sessions to summarize", "user_id", user.ID)
		return false, nil
	}

	var errs []error
	if j.email != nil && j.email.Enabled() {
		err := j.email.SendSummary(email.SummaryNotification{
			UserEmail:     user.Email,
			UserName:      user.Name,
			PeriodStart:   result.PeriodStart,
			PeriodEnd:     result.PeriodEnd,
			TrainingCount: result.TrainingCount,
			Content:       result.Text,
			AppURL:        j.appURL,
		})
		if err != nil {
			log.Error("Failed to send summary email", "user_id", user.ID, "error", err)
			errs = append(errs, err)
		}
	}
	if j.push != nil {
		if err := j.push.SendSummary(ctx, user.Name, result.TrainingCount, result.Text, j.appURL); err != nil {
			log.Error("Failed to send ntfy summary", "user_id", user.ID, "error", err)
			errs = append(errs, err)
		}
	}

	return true, errors.Join(errs...)
}
