package stats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/verte-zerg/morsehero/internal/catalog"
	"github.com/verte-zerg/morsehero/internal/model"
)

// SelectWeakChars selects up to top characters with the lowest accuracy.
// Characters never missed are not weak and are skipped.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	candidates := lo.Filter(aggs, func(agg model.CharAggregate, _ int) bool {
		r := []rune(agg.Char)
		return agg.Incorrect > 0 && len(r) == 1 && catalog.Supported(r[0])
	})
	if len(candidates) == 0 {
		return weakSet
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, c := range candidates[:top] {
		weakSet[catalog.Normalize([]rune(c.Char)[0])] = struct{}{}
	}
	return weakSet
}

func accuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
