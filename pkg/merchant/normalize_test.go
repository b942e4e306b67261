package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases", "NETFLIX", "netflix"},
		{"strips punctuation", "Netflix.com *Premium", "netflixcom premium"},
		{"collapses whitespace", "  Spotify   AB ", "spotify ab"},
		{"keeps digits", "7-Eleven #4521", "7eleven 4521"},
		{"only punctuation yields empty key", "***##", ""},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.raw))
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"title cases words", "netflix premium", "Netflix Premium"},
		{"strips terminal prefix", "POS WOOLWORTHS", "Woolworths"},
		{"strips corporate suffix", "Atlassian Pty", "Atlassian"},
		{"strips long reference numbers", "UBER 48291734821 TRIP", "Uber Trip"},
		{"short words upper-cased", "bp connect", "BP Connect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.raw))
		})
	}
}
