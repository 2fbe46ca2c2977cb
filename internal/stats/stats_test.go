package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trainlog/trainlog/internal/database"
)

func ptr[T any](v T) *T { return &v }

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestSessionVolume(t *testing.T) {
	tests := []struct {
		name     string
		training database.Training
		expected float64
	}{
		{name: "distance wins", training: database.Training{DurationMinutes: 60, TotalDistance: ptr(1200.0)}, expected: 1200},
		{name: "no distance", training: database.Training{DurationMinutes: 45}, expected: 4.5},
		{name: "zero distance falls back", training: database.Training{DurationMinutes: 30, TotalDistance: ptr(0.0)}, expected: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SessionVolume(tt.training), 0.0001)
		})
	}
}

func TestVolume(t *testing.T) {
	now := time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)
	trainings := []database.Training{
		{Date: day(19), DurationMinutes: 60, Feeling: database.FeelingGreat},
		{Date: day(19), DurationMinutes: 30, TotalDistance: ptr(800.0), Feeling: database.FeelingBad},
		{Date: day(10), DurationMinutes: 50, Feeling: database.FeelingGood},
		{Date: day(1), DurationMinutes: 90, Feeling: database.FeelingGood},
	}

	series := Volume(trainings, DefaultVolumeDays, now, time.UTC)
	require.Len(t, series, 14)
	assert.Equal(t, "2026-10-06", series[0].Date)
	assert.Equal(t, "2026-10-19", series[13].Date)

	last := series[13]
	assert.InDelta(t, 806.0, last.Volume, 0.0001)
	assert.Equal(t, 2, last.Sessions)
	require.NotNil(t, last.Feeling)
	assert.InDelta(t, 3.5, *last.Feeling, 0.0001)

	tenth := series[4]
	assert.Equal(t, "2026-10-10", tenth.Date)
	assert.InDelta(t, 5.0, tenth.Volume, 0.0001)

	empty := series[0]
	assert.Zero(t, empty.Volume)
	assert.Nil(t, empty.Feeling)

	total := 0
	for _, p := range series {
		total += p.Sessions
	}
	assert.Equal(t, 3, total, "sessions outside the window are ignored")
}

func TestVolume_TimeZone(t *testing.T) {
	prague, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)

	// 23:30 UTC on the 18th is already the 19th in Prague
	trainings := []database.Training{{Date: time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC), DurationMinutes: 10}}
	series := Volume(trainings, 1, time.Date(2026, 10, 19, 8, 0, 0, 0, prague), prague)
	require.Len(t, series, 1)
	assert.Equal(t, "2026-10-19", series[0].Date)
	assert.Equal(t, 1, series[0].Sessions)
}

func TestWeek(t *testing.T) {
	// Monday 2026-10-19
	now := time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC)
	trainings := []database.Training{
		{Date: day(18), DurationMinutes: 100, TotalDistance: ptr(5000.0)},
		{Date: day(19), DurationMinutes: 40, TotalDistance: ptr(1200.0)},
		{Date: day(21), DurationMinutes: 60},
		{Date: day(25), DurationMinutes: 30, TotalDistance: ptr(300.5)},
		{Date: day(26), DurationMinutes: 30},
	}

	week := Week(trainings, now, time.UTC)
	assert.Equal(t, "2026-10-19", week.WeekStart)
	assert.Equal(t, 3, week.SessionCount)
	assert.Equal(t, 130, week.TotalDuration)
	assert.InDelta(t, 1500.5, week.TotalDistance, 0.0001)
}

func TestWeekStart_Sunday(t *testing.T) {
	sunday := time.Date(2026, 10, 25, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, day(19), WeekStart(sunday, nil))
}
