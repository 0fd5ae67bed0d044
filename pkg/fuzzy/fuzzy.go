// Package fuzzy ranks how well a query matches a string.
//
// Rankings are ordered: an exact case-sensitive match beats a case-insensitive
// one, which beats a prefix, a word prefix, a substring, an acronym and finally
// an in-order character match. Values between Matches and Acronym grade
// in-order matches by how tightly the query's characters cluster.
package fuzzy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ranking is a match quality score. Higher is better.
type Ranking float64

const (
	NoMatch            Ranking = 0
	Matches            Ranking = 1
	Acronym            Ranking = 2
	Contains           Ranking = 3
	WordStartsWith     Ranking = 4
	StartsWith         Ranking = 5
	Equal              Ranking = 6
	CaseSensitiveEqual Ranking = 7
)

// String returns a short name for the ranking tier.
func (r Ranking) String() string {
	switch {
	case r >= CaseSensitiveEqual:
		return "case-sensitive-equal"
	case r >= Equal:
		return "equal"
	case r >= StartsWith:
		return "starts-with"
	case r >= WordStartsWith:
		return "word-starts-with"
	case r >= Contains:
		return "contains"
	case r >= Acronym:
		return "acronym"
	case r >= Matches:
		return "matches"
	default:
		return "no-match"
	}
}

var tiers = []Ranking{Matches, Acronym, Contains, WordStartsWith, StartsWith, Equal, CaseSensitiveEqual}

// ParseRanking parses a tier name as returned by Ranking.String. An empty
// name is Matches.
func ParseRanking(name string) (Ranking, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Matches, true
	}
	for _, r := range tiers {
		if r.String() == name {
			return r, true
		}
	}
	return NoMatch, false
}

// Match is the outcome of ranking one value against a query.
type Match struct {
	Rank   Ranking
	Passed bool
}

// Ranker ranks values against queries with a pass threshold.
type Ranker struct {
	threshold      Ranking
	keepDiacritics bool
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithThreshold sets the minimum ranking that counts as a pass.
func WithThreshold(r Ranking) Option {
	return func(rk *Ranker) {
		rk.threshold = r
	}
}

// WithDiacritics keeps accents significant ("é" no longer matches "e").
func WithDiacritics() Option {
	return func(rk *Ranker) {
		rk.keepDiacritics = true
	}
}

// New creates a Ranker. The default threshold is Matches.
func New(opts ...Option) *Ranker {
	r := &Ranker{threshold: Matches}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RankItem ranks value against query and reports whether it passes.
func (r *Ranker) RankItem(value, query string) Match {
	rank := r.Rank(value, query)
	return Match{Rank: rank, Passed: rank >= r.threshold}
}

// Rank returns the ranking of value against query.
func (r *Ranker) Rank(value, query string) Ranking {
	if !r.keepDiacritics {
		value = foldDiacritics(value)
		query = foldDiacritics(query)
	}

	if utf8.RuneCountInString(query) > utf8.RuneCountInString(value) {
		return NoMatch
	}
	if value == query {
		return CaseSensitiveEqual
	}

	value = strings.ToLower(value)
	query = strings.ToLower(query)

	switch {
	case value == query:
		return Equal
	case strings.HasPrefix(value, query):
		return StartsWith
	case strings.Contains(value, " "+query):
		return WordStartsWith
	case strings.Contains(value, query):
		return Contains
	case utf8.RuneCountInString(query) == 1:
		return NoMatch
	case strings.Contains(acronym(value), query):
		return Acronym
	}
	return closeness(value, query)
}

// acronym takes the first rune of every space or hyphen separated word.
func acronym(s string) string {
	var b strings.Builder
	for _, word := range strings.Split(s, " ") {
		for _, part := range strings.Split(word, "-") {
			if r, size := utf8.DecodeRuneInString(part); size > 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// closeness grades an in-order character match between Matches and Acronym.
// Every query rune must appear in value after the previous one.
func closeness(value, query string) Ranking {
	v := []rune(value)
	q := []rune(query)

	pos := 0
	find := func(c rune) int {
		for j := pos; j < len(v); j++ {
			if v[j] == c {
				return j + 1
			}
		}
		return -1
	}

	first := find(q[0])
	if first < 0 {
		return NoMatch
	}
	pos = first
	for i := 1; i < len(q); i++ {
		pos = find(q[i])
		if pos < 0 {
			return NoMatch
		}
	}

	spread := pos - first
	if spread < 1 {
		spread = 1
	}
	return Matches + Ranking(1/float64(spread))
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
