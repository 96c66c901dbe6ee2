package stats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/verte-zerg/morsehero/internal/model"
)

// TopCharsByFrequency returns the n characters heard most often.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Char < sorted[j].Char
		}
		return ti > tj
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return lo.Map(sorted[:n], func(agg model.CharAggregate, _ int) string {
		return agg.Char
	})
}
