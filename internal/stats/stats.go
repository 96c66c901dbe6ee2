// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/verte-zerg/morsehero/internal/catalog"
	"github.com/verte-zerg/morsehero/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and answers per minute for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (accuracy, perMinute float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return accuracy, 0
	}
	minutes := float64(durationMs) / 60000.0
	perMinute = den / minutes
	return accuracy, perMinute
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate, aggs []model.CharAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalRate float64
	answered, correct := 0, 0
	bestAcc := 0.0
	for _, s := range sessions {
		acc, rate := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalAcc += acc
		totalRate += rate
		answered += s.Correct + s.Incorrect
		correct += s.Correct
		if acc > bestAcc {
			bestAcc = acc
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Answered: %d (%d correct)", answered, correct),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", bestAcc*100),
		fmt.Sprintf("Avg Answers/min: %.2f", totalRate/count),
	}
	if top := TopCharsByFrequency(aggs, 5); len(top) > 0 {
		lines = append(lines, fmt.Sprintf("Most heard: %s", strings.Join(top, " ")))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrend prints the moving-average accuracy sparkline.
func RenderTrend(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, _ := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		accs[i] = acc * 100
	}
	accs = MovingAverage(accs, window)
	if width > 0 && len(accs) > width {
		accs = accs[len(accs)-width:]
	}
	if _, err := fmt.Fprintf(w, "Accuracy trend (window %d)\n", window); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "[%s] %.1f%%\n\n", Sparkline(accs), accs[len(accs)-1])
	return err
}

// CharRow is one line of the per-character table.
type CharRow struct {
	Char      string
	Pattern   string
	Accuracy  float64
	Latency   float64
	Correct   int
	Incorrect int
}

// CharRows converts aggregates into rows sorted by lowest accuracy.
func CharRows(aggs []model.CharAggregate) []CharRow {
	rows := make([]CharRow, 0, len(aggs))
	for _, agg := range aggs {
		total := agg.Correct + agg.Incorrect
		acc := 0.0
		if total > 0 {
			acc = float64(agg.Correct) / float64(total)
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		pattern := ""
		if r := []rune(agg.Char); len(r) > 0 {
			pattern = catalog.Lookup(r[0]).Glyphs()
		}
		rows = append(rows, CharRow{
			Char:      agg.Char,
			Pattern:   pattern,
			Accuracy:  acc,
			Latency:   lat,
			Correct:   agg.Correct,
			Incorrect: agg.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Accuracy == rows[j].Accuracy {
			return rows[i].Char < rows[j].Char
		}
		return rows[i].Accuracy < rows[j].Accuracy
	})
	return rows
}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate, maxWidth int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character (Windowed)"); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if maxWidth > 0 {
		t.SetAllowedRowLength(maxWidth)
	}
	t.AppendHeader(table.Row{"Char", "Morse", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"})
	for _, r := range CharRows(aggs) {
		t.AppendRow(table.Row{
			r.Char,
			r.Pattern,
			fmt.Sprintf("%.2f%%", r.Accuracy*100),
			fmt.Sprintf("%.1f", r.Latency),
			r.Correct,
			r.Incorrect,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()
	_, err := fmt.Fprintln(w, "")
	return err
}
