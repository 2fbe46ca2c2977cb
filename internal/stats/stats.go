// Package stats derives chart series and weekly totals from training sessions.
package stats

import (
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/trainlog/trainlog/internal/database"
)

const (
	DefaultVolumeDays = 14
	MaxVolumeDays     = 366
)

// DayVolume is one point of the volume chart.
type DayVolume struct {
	Date     string   `json:"date"`
	Volume   float64  `json:"volume"`
	Feeling  *float64 `json:"feeling"`
	Sessions int      `json:"sessions"`
}

// WeekSummary holds the totals of the current week.
type WeekSummary struct {
	WeekStart     string  `json:"weekStart"`
	TotalDistance float64 `json:"totalDistance"`
	TotalDuration int     `json:"totalDuration"`
	SessionCount  int     `json:"sessionCount"`
}

// SessionVolume is the load of a single session: its distance when recorded, otherwise a tenth of its duration.
func SessionVolume(t database.Training) float64 {
	if t.TotalDistance != nil && *t.TotalDistance > 0 {
		return *t.TotalDistance
	}
	return float64(t.DurationMinutes) / 10
}

// Window returns the first instant of the oldest day in a days long window ending today.
func Window(now time.Time, days int, loc *time.Location) time.Time {
	today := startOfDay(now, loc)
	return today.AddDate(0, 0, -(days - 1))
}

// Volume builds one entry per calendar day, oldest first, for the days ending today.
func Volume(trainings []database.Training, days int, now time.Time, loc *time.Location) []DayVolume {
	if loc == nil {
		loc = time.UTC
	}
	byDay := lo.GroupBy(trainings, func(t database.Training) string {
		return t.Date.In(loc).Format(time.DateOnly)
	})

	start := Window(now, days, loc)
	out := make([]DayVolume, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(time.DateOnly)
		sessions := byDay[key]

		point := DayVolume{
			Date:     key,
			Volume:   round1(lo.SumBy(sessions, SessionVolume)),
			Sessions: len(sessions),
		}
		if len(sessions) > 0 {
			feeling := round1(lo.MeanBy(sessions, func(t database.Training) float64 {
				return float64(t.Feeling.Score())
			}))
			point.Feeling = &feeling
		}
		out = append(out, point)
	}
	return out
}

// Week sums the sessions of the Monday based week containing now.
func Week(trainings []database.Training, now time.Time, loc *time.Location) WeekSummary {
	if loc == nil {
		loc = time.UTC
	}
	start := startOfWeek(now, loc)
	end := start.AddDate(0, 0, 7)

	inWeek := lo.Filter(trainings, func(t database.Training, _ int) bool {
		d := t.Date.In(loc)
		return !d.Before(start) && d.Before(end)
	})

	return WeekSummary{
		WeekStart: start.Format(time.DateOnly),
		TotalDistance: round1(lo.SumBy(inWeek, func(t database.Training) float64 {
			return lo.FromPtr(t.TotalDistance)
		})),
		TotalDuration: lo.SumBy(inWeek, func(t database.Training) int { return t.DurationMinutes }),
		SessionCount:  len(inWeek),
	}
}

// WeekStart returns the Monday 00:00 of the week containing now.
func WeekStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return startOfWeek(now, loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func startOfWeek(t time.Time, loc *time.Location) time.Time {
	day := startOfDay(t, loc)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
