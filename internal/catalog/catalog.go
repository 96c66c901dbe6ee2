// Package catalog holds the supported alphabet and its Morse patterns.
package catalog

import "strings"

// Mark is a single element of a Morse pattern.
type Mark uint8

const (
	// Dot is a short mark, one unit long.
	Dot Mark = iota + 1
	// Dash is a long mark, three units long.
	Dash
)

// Pattern is the ordered dot/dash sequence for one character.
type Pattern []Mark

// Group is a named slice of the alphabet, as listed on the chart.
type Group struct {
	Name  string
	Chars []rune
}

const (
	letters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numbers  = "0123456789"
	specials = ".,?/="
)

var codes = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'.': ".-.-.-", ',': "--..--", '?': "..--..", '/': "-..-.", '=': "-...-",
}

var patterns map[rune]Pattern

func init() {
	patterns = make(map[rune]Pattern, len(codes))
	for ch, code := range codes {
		patterns[ch] = parse(code)
	}
}

func parse(code string) Pattern {
	p := make(Pattern, 0, len(code))
	for _, c := range code {
		switch c {
		case '.':
			p = append(p, Dot)
		case '-':
			p = append(p, Dash)
		}
	}
	return p
}

// Alphabet returns the supported characters: letters, digits, punctuation.
func Alphabet() []rune {
	return []rune(letters + numbers + specials)
}

// Groups returns the chart sections in display order.
func Groups() []Group {
	return []Group{
		{Name: "Letters", Chars: []rune(letters)},
		{Name: "Numbers", Chars: []rune(numbers)},
		{Name: "Special Characters", Chars: []rune(".=,?/")},
	}
}

// Normalize maps a key to its catalog form. Only ASCII letters are
// upper-cased; other runes pass through untouched.
func Normalize(r rune) rune {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	return r
}

// Supported reports whether r (case-insensitive) is in the alphabet.
func Supported(r rune) bool {
	_, ok := patterns[Normalize(r)]
	return ok
}

// Lookup returns the pattern for r, or an empty pattern when r is unknown.
func Lookup(r rune) Pattern {
	p, ok := patterns[Normalize(r)]
	if !ok {
		return Pattern{}
	}
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

// Units returns the keyed length of the pattern in Morse units,
// counting the one-unit gaps between marks.
func (p Pattern) Units() int {
	if len(p) == 0 {
		return 0
	}
	n := len(p) - 1
	for _, m := range p {
		if m == Dash {
			n += 3
		} else {
			n++
		}
	}
	return n
}

// String renders the pattern as ASCII dots and dashes.
func (p Pattern) String() string {
	return p.render('.', '-')
}

// Glyphs renders the pattern with the chart symbols.
func (p Pattern) Glyphs() string {
	return p.render('·', '−')
}

func (p Pattern) render(dot, dash rune) string {
	var b strings.Builder
	for _, m := range p {
		if m == Dash {
			b.WriteRune(dash)
		} else {
			b.WriteRune(dot)
		}
	}
	return b.String()
}
