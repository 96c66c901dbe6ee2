package stats

import (
	"time"

	"github.com/verte-zerg/morsehero/internal/engine"
	"github.com/verte-zerg/morsehero/internal/model"
)

// FromSession converts an engine session and its answers into rows for the
// history store. Latency is only counted for correct answers.
func FromSession(s engine.Session, answers []engine.Answer, endedAt time.Time) (model.SessionStats, []model.CharStats) {
	stats := model.SessionStats{
		StartedAt:  s.StartedAt,
		EndedAt:    endedAt,
		WPM:        s.WPM,
		Hints:      s.Hints,
		Score:      s.Score,
		Total:      s.TotalAnswered,
		DurationMs: endedAt.Sub(s.StartedAt).Milliseconds(),
	}

	byChar := map[rune]*model.CharStats{}
	order := make([]rune, 0, len(answers))
	for _, a := range answers {
		entry, ok := byChar[a.Target]
		if !ok {
			entry = &model.CharStats{Char: string(a.Target)}
			byChar[a.Target] = entry
			order = append(order, a.Target)
		}
		if a.Outcome == engine.Correct {
			entry.Correct++
			entry.LatencySumMs += a.Latency.Milliseconds()
			entry.LatencyCount++
		} else {
			entry.Incorrect++
		}
	}
	chars := make([]model.CharStats, 0, len(order))
	for _, r := range order {
		chars = append(chars, *byChar[r])
	}
	return stats, chars
}
