package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trainlog/trainlog/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	users     map[string]*database.User
	trainings map[string]*database.Training
	goals     map[string]*database.SeasonGoal
	summaries map[string]*database.TrainingSummary

	// Error simulation
	CreateUserError     error
	GetUserByIDError    error
	ListUsersError      error
	ListTrainingsError  error
	CreateTrainingError error
	CreateSummaryError  error
	PingError           error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:     make(map[string]*database.User),
		trainings: make(map[string]*database.Training),
		goals:     make(map[string]*database.SeasonGoal),
		summaries: make(map[string]*database.TrainingSummary),
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[string]*database.User)
	m.trainings = make(map[string]*database.Training)
	m.goals = make(map[string]*database.SeasonGoal)
	m.summaries = make(map[string]*database.TrainingSummary)

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.ListUsersError = nil
	m.ListTrainingsError = nil
	m.CreateTrainingError = nil
	m.CreateSummaryError = nil
	m.PingError = nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, user *database.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = database.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email || (user.Username != nil && u.Username != nil && *u.Username == *user.Username) {
			return database.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = database.RoleUser
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id string) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = database.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username != nil && *u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) ListUsers(ctx context.Context) ([]database.User, error) {
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (m *MockDB) UpdateUser(ctx context.Context, user *database.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return database.ErrNotFound
	}
	user.Email = database.NormalizeEmail(user.Email)
	for id, u := range m.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email || (user.Username != nil && u.Username != nil && *u.Username == *user.Username) {
			return database.ErrConflict
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockDB) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.users, id)
	for tid, t := range m.trainings {
		if t.UserID == id {
			delete(m.trainings, tid)
		}
	}
	for gid, g := range m.goals {
		if g.UserID == id {
			delete(m.goals, gid)
		}
	}
	for sid, s := range m.summaries {
		if s.UserID == id {
			delete(m.summaries, sid)
		}
	}
	return nil
}

// Training operations

func (m *MockDB) CreateTraining(ctx context.Context, training *database.Training) error {
	if m.CreateTrainingError != nil {
		return m.CreateTrainingError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	now := time.Now()
	training.CreatedAt, training.UpdatedAt = now, now

	stored := *training
	m.trainings[training.ID] = &stored
	return nil
}

func (m *MockDB) GetTraining(ctx context.Context, userID, id string) (*database.Training, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trainings[id]
	if !ok || t.UserID != userID {
		return nil, database.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *MockDB) ListTrainings(ctx context.Context, userID string, filter database.TrainingFilter) ([]database.Training, error) {
	if m.ListTrainingsError != nil {
		return nil, m.ListTrainingsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var trainings []database.Training
	for _, t := range m.trainings {
		if t.UserID != userID {
			continue
		}
		if filter.From != nil && t.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.Date.After(*filter.To) {
			continue
		}
		trainings = append(trainings, *t)
	}
	sort.Slice(trainings, func(i, j int) bool {
		if filter.Ascending {
			return trainings[i].Date.Before(trainings[j].Date)
		}
		return trainings[i].Date.After(trainings[j].Date)
	})
	return trainings, nil
}

func (m *MockDB) UpdateTraining(ctx context.Context, training *database.Training) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.trainings[training.ID]
	if !ok || existing.UserID != training.UserID {
		return database.ErrNotFound
	}
	training.CreatedAt = existing.CreatedAt
	training.UpdatedAt = time.Now()
	stored := *training
	m.trainings[training.ID] = &stored
	return nil
}

func (m *MockDB) DeleteTraining(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trainings[id]
	if !ok || t.UserID != userID {
		return database.ErrNotFound
	}
	delete(m.trainings, id)
	return nil
}

// Goal operations

func (m *MockDB) CreateGoal(ctx context.Context, goal *database.SeasonGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now()
	goal.CreatedAt, goal.UpdatedAt = now, now
	stored := *goal
	m.goals[goal.ID] = &stored
	return nil
}

func (m *MockDB) GetGoal(ctx context.Context, userID, id string) (*database.SeasonGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return nil, database.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (m *MockDB) ListGoals(ctx context.Context, userID string) ([]database.SeasonGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var goals []database.SeasonGoal
	for _, g := range m.goals {
		if g.UserID == userID {
			goals = append(goals, *g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].CreatedAt.Before(goals[j].CreatedAt) })
	return goals, nil
}

func (m *MockDB) UpdateGoal(ctx context.Context, goal *database.SeasonGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return database.ErrNotFound
	}
	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = time.Now()
	stored := *goal
	m.goals[goal.ID] = &stored
	return nil
}

func (m *MockDB) DeleteGoal(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return database.ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

// Summary operations

func (m *MockDB) CreateSummary(ctx context.Context, summary *database.TrainingSummary) error {
	if m.CreateSummaryError != nil {
		return m.CreateSummaryError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	summary.CreatedAt = time.Now()
	stored := *summary
	m.summaries[summary.ID] = &stored
	return nil
}

func (m *MockDB) ListSummaries(ctx context.Context, userID string, limit int) ([]database.TrainingSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var summaries []database.TrainingSummary
	for _, s := range m.summaries {
		if s.UserID == userID {
			summaries = append(summaries, *s)
		}
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].CreatedAt.After(summaries[j].CreatedAt) })
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Misc

func (m *MockDB) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &database.Stats{
		Users:     int64(len(m.users)),
		Trainings: int64(len(m.trainings)),
		Goals:     int64(len(m.goals)),
		Summaries: int64(len(m.summaries)),
	}
	for _, u := range m.users {
		if u.IsAdmin() {
			stats.Admins++
		}
	}
	for _, t := range m.trainings {
		stats.TotalMinutes += int64(t.DurationMinutes)
		if stats.LastTrainingAt == nil || t.Date.After(*stats.LastTrainingAt) {
			d := t.Date
			stats.LastTrainingAt = &d
		}
	}
	return stats, nil
}

func (m *MockDB) Close() error {
	return nil
}

// Test helpers

// AddUser stores a user directly, bypassing conflict checks.
func (m *MockDB) AddUser(user database.User) *database.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = database.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.ID] = &user
	out := user
	return &out
}

// AddTraining stores a training directly.
func (m *MockDB) AddTraining(training database.Training) *database.Training {
	m.mu.Lock()
	defer m.mu.Unlock()

	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	if training.UpdatedAt.IsZero() {
		training.UpdatedAt = time.Now()
	}
	m.trainings[training.ID] = &training
	out := training
	return &out
}

// Summaries returns every stored summary.
func (m *MockDB) Summaries() []database.TrainingSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]database.TrainingSummary, 0, len(m.summaries))
	for _, s := range m.summaries {
		out = append(out, *s)
	}
	return out
}
