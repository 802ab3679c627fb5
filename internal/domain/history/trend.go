package history

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
)

// Delta is the change of each score against the previous session.
type Delta struct {
	Overall  int `json:"overall"`
	Density  int `json:"density"`
	Hairline int `json:"hairline"`
	Crown    int `json:"crown"`
}

// Point is one session on the chart.
type Point struct {
	SessionID uuid.UUID `json:"session_id"`
	Date      time.Time `json:"date"`
	Overall   int       `json:"overall"`
	Density   int       `json:"density"`
	Hairline  int       `json:"hairline"`
	Crown     int       `json:"crown"`
}

// Stats summarizes the overall score across sessions.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// Slope is the least-squares change of overall score per session.
	Slope float64 `json:"slope"`
}

// Chronological returns sessions sorted by created_at ascending.
func Chronological(sessions []analysis.Session) []analysis.Session {
	out := make([]analysis.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Series builds the chart series in ascending order.
func Series(sessions []analysis.Session) []Point {
	ordered := Chronological(sessions)
	points := make([]Point, 0, len(ordered))
	for _, s := range ordered {
		points = append(points, Point{
			SessionID: s.ID,
			Date:      s.CreatedAt,
			Overall:   s.OverallScore,
			Density:   s.DensityScore,
			Hairline:  s.HairlineScore,
			Crown:     s.CrownScore,
		})
	}
	return points
}

// Diff returns cur minus prev for every score.
func Diff(cur, prev *analysis.Session) Delta {
	return Delta{
		Overall:  cur.OverallScore - prev.OverallScore,
		Density:  cur.DensityScore - prev.DensityScore,
		Hairline: cur.HairlineScore - prev.HairlineScore,
		Crown:    cur.CrownScore - prev.CrownScore,
	}
}

// Deltas maps each session to its change against the chronologically
// preceding one. The first session has no entry.
func Deltas(sessions []analysis.Session) map[uuid.UUID]Delta {
	ordered := Chronological(sessions)
	out := make(map[uuid.UUID]Delta, len(ordered))
	for i := 1; i < len(ordered); i++ {
		out[ordered[i].ID] = Diff(&ordered[i], &ordered[i-1])
	}
	return out
}

// WeekStart returns the Monday 00:00 UTC that begins the week of t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Streak counts consecutive weeks with at least one session, starting at the
// week of now and stopping at the first empty week.
func Streak(sessions []analysis.Session, now time.Time) int {
	weeks := make(map[time.Time]bool, len(sessions))
	for _, s := range sessions {
		weeks[WeekStart(s.CreatedAt)] = true
	}

	streak := 0
	for week := WeekStart(now); weeks[week]; week = week.AddDate(0, 0, -7) {
		streak++
	}
	return streak
}

// Summarize computes overall-score statistics. It returns a zero Stats for no sessions.
func Summarize(sessions []analysis.Session) Stats {
	ordered := Chronological(sessions)
	if len(ordered) == 0 {
		return Stats{}
	}

	data := make(stats.Float64Data, 0, len(ordered))
	series := make(stats.Series, 0, len(ordered))
	for i, s := range ordered {
		data = append(data, float64(s.OverallScore))
		series = append(series, stats.Coordinate{X: float64(i), Y: float64(s.OverallScore)})
	}

	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviation(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	out := Stats{Count: len(data), Mean: round2(mean), StdDev: round2(stdDev), Median: median, Min: min, Max: max}
	if len(series) > 1 {
		if fit, err := stats.LinearRegression(series); err == nil && len(fit) > 1 {
			last := len(fit) - 1
			out.Slope = round2((fit[last].Y - fit[0].Y) / (fit[last].X - fit[0].X))
		}
	}
	return out
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
