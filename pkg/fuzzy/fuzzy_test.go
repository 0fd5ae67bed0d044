package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name  string
		value string
		query string
		want  Ranking
	}{
		{name: "case sensitive equal", value: "Globex", query: "Globex", want: CaseSensitiveEqual},
		{name: "equal ignoring case", value: "Globex", query: "globex", want: Equal},
		{name: "prefix", value: "Globex", query: "glob", want: StartsWith},
		{name: "word prefix", value: "Acme Industries", query: "ind", want: WordStartsWith},
		{name: "substring", value: "Globex", query: "obe", want: Contains},
		{name: "acronym", value: "network scan settings", query: "nss", want: Acronym},
		{name: "hyphen acronym", value: "db-dump-export", query: "dde", want: Acronym},
		{name: "query longer than value", value: "Acme", query: "Acme Corp", want: NoMatch},
		{name: "single rune miss", value: "Acme", query: "z", want: NoMatch},
		{name: "no match", value: "Acme", query: "glob", want: NoMatch},
		{name: "diacritics folded", value: "Société Générale", query: "societe", want: StartsWith},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New().Rank(tt.value, tt.query))
		})
	}
}

func TestRankCloseness(t *testing.T) {
	r := New()
	tight := r.Rank("abcxyz", "acx")
	loose := r.Rank("a_______c______x", "acx")

	assert.Greater(t, float64(tight), float64(Matches))
	assert.Less(t, float64(tight), float64(Acronym))
	assert.Greater(t, float64(tight), float64(loose))
	assert.Equal(t, NoMatch, r.Rank("abc", "cba"))
}

func TestRankItemThreshold(t *testing.T) {
	strict := New(WithThreshold(Contains))

	assert.True(t, strict.RankItem("Globex", "lob").Passed)
	assert.False(t, strict.RankItem("network scan settings", "nss").Passed)
	assert.True(t, New().RankItem("network scan settings", "nss").Passed)
}

func TestWithDiacritics(t *testing.T) {
	r := New(WithDiacritics())
	assert.Equal(t, NoMatch, r.Rank("café", "cafe"))
	assert.Equal(t, Equal, New().Rank("café", "CAFE"))
}

func TestRankingString(t *testing.T) {
	assert.Equal(t, "starts-with", StartsWith.String())
	assert.Equal(t, "matches", (Matches + 0.25).String())
	assert.Equal(t, "no-match", NoMatch.String())
}

func TestParseRanking(t *testing.T) {
	tests := []struct {
		in     string
		want   Ranking
		wantOK bool
	}{
		{in: "", want: Matches, wantOK: true},
		{in: "matches", want: Matches, wantOK: true},
		{in: " Contains ", want: Contains, wantOK: true},
		{in: "word-starts-with", want: WordStartsWith, wantOK: true},
		{in: "case-sensitive-equal", want: CaseSensitiveEqual, wantOK: true},
		{in: "no-match", wantOK: false},
		{in: "fuzzy", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRanking(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
