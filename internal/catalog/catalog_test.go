package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlphabetHasFortyOneCharacters(t *testing.T) {
	alphabet := Alphabet()
	require.Len(t, alphabet, 41)

	seen := map[rune]struct{}{}
	for _, r := range alphabet {
		_, dup := seen[r]
		require.False(t, dup, "duplicate %q", r)
		seen[r] = struct{}{}
	}
}

func TestLookupSupportedCharacters(t *testing.T) {
	seen := map[string]rune{}
	for _, r := range Alphabet() {
		p := Lookup(r)
		require.NotEmpty(t, p, "empty pattern for %q", r)
		prev, dup := seen[p.String()]
		require.False(t, dup, "%q and %q share pattern %s", prev, r, p)
		seen[p.String()] = r
	}
}

func TestLookupUnknownIsEmpty(t *testing.T) {
	for _, r := range []rune{'!', '@', ' ', 'é', 0, 'ı', 'ſ', 'ǆ'} {
		require.Empty(t, Lookup(r), "expected empty pattern for %q", r)
		require.False(t, Supported(r))
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	require.Equal(t, Lookup('Q'), Lookup('q'))
	require.True(t, Supported('q'))
	require.Equal(t, 'I', Normalize('i'))
	require.Equal(t, 'ı', Normalize('ı'))
}

func TestPatternRendering(t *testing.T) {
	p := Lookup('C')
	require.Equal(t, "-.-.", p.String())
	require.Equal(t, "−·−·", p.Glyphs())
	require.Equal(t, ".-.-.-", Lookup('.').String())
}

func TestLookupReturnsCopy(t *testing.T) {
	p := Lookup('E')
	p[0] = Dash
	require.Equal(t, ".", Lookup('E').String())
}

func TestPatternUnits(t *testing.T) {
	// A: dot(1) gap(1) dash(3)
	require.Equal(t, 5, Lookup('A').Units())
	require.Equal(t, 0, Pattern{}.Units())
}

func TestGroupsCoverAlphabet(t *testing.T) {
	total := 0
	for _, g := range Groups() {
		for _, r := range g.Chars {
			require.True(t, Supported(r))
		}
		total += len(g.Chars)
	}
	require.Equal(t, len(Alphabet()), total)
}
