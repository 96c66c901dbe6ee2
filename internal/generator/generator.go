// Package generator draws round targets and answer options.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces randomized targets and option sets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator reading from src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Target selects a character uniformly from the alphabet.
func (g *Generator) Target(alphabet []rune) rune {
	return alphabet[g.rnd.Intn(len(alphabet))]
}

// TargetWeighted selects a character with a bias toward weak characters.
// Weak characters weigh 1+factor, every other character weighs 1.
func (g *Generator) TargetWeighted(alphabet []rune, weakSet map[rune]struct{}, factor float64) rune {
	weights := make([]float64, len(alphabet))
	total := 0.0
	for i, ch := range alphabet {
		w := 1.0
		if _, ok := weakSet[ch]; ok {
			w += factor
		}
		weights[i] = w
		total += w
	}

	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return alphabet[i]
		}
	}
	return alphabet[len(alphabet)-1]
}

// Options returns count distinct characters from the alphabet, one of which
// is target, in random order. Distractors are drawn without replacement with
// a partial Fisher-Yates shuffle, so the cost is bounded by count.
func (g *Generator) Options(alphabet []rune, target rune, count int) []rune {
	pool := make([]rune, 0, len(alphabet))
	for _, ch := range alphabet {
		if ch != target {
			pool = append(pool, ch)
		}
	}
	picks := count - 1
	if picks > len(pool) {
		picks = len(pool)
	}
	for i := 0; i < picks; i++ {
		j := i + g.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	options := make([]rune, 0, picks+1)
	options = append(options, target)
	options = append(options, pool[:picks]...)
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
