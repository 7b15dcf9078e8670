package noaa

import (
	"math"
	"time"

	"github.com/ngmaloney/tidecast/internal/models"
)

// Match pairs a published extremum with the nearest predicted extremum of
// the same kind. Predicted is nil when none lies within the match window.
type Match struct {
	Published models.Event
	Predicted *models.Event
	TimeDiff  time.Duration // predicted minus published
	LevelDiff float64       // predicted minus published
}

// MatchWindow bounds how far apart a published and a predicted extremum can
// be and still pair.
const MatchWindow = 3 * time.Hour

// Compare pairs every published extremum with its nearest prediction.
// Both slices must be sorted by time.
func Compare(published, predicted []models.Event) []Match {
	matches := make([]Match, 0, len(published))
	for _, pub := range published {
		m := Match{Published: pub}
		best := MatchWindow + 1
		for i := range predicted {
			pr := &predicted[i]
			if pr.Type != pub.Type {
				continue
			}
			d := pr.Time.Sub(pub.Time)
			if d > MatchWindow {
				break
			}
			if abs(d) < best {
				best = abs(d)
				m.Predicted = pr
				m.TimeDiff = d
			}
		}
		if m.Predicted != nil && m.Predicted.Level != nil && pub.Level != nil {
			m.LevelDiff = *m.Predicted.Level - *pub.Level
		}
		matches = append(matches, m)
	}
	return matches
}

// Summary holds the worst and mean absolute differences over matched pairs.
type Summary struct {
	Matched      int
	Unmatched    int
	MaxTimeDiff  time.Duration
	MeanTimeDiff time.Duration
	MaxLevelDiff float64
}

// Summarize reduces a comparison to its error bounds.
func Summarize(matches []Match) Summary {
	var (
		s     Summary
		total time.Duration
	)
	for _, m := range matches {
		if m.Predicted == nil {
			s.Unmatched++
			continue
		}
		s.Matched++
		total += abs(m.TimeDiff)
		s.MaxTimeDiff = max(s.MaxTimeDiff, abs(m.TimeDiff))
		s.MaxLevelDiff = math.Max(s.MaxLevelDiff, math.Abs(m.LevelDiff))
	}
	if s.Matched > 0 {
		s.MeanTimeDiff = total / time.Duration(s.Matched)
	}
	return s
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
