// Package naming parses and generates campaign names of the form
// "AppName - Country - Type - MatchType".
package naming

import (
	"strings"
	"unicode"
)

const separator = " - "

type MatchType string

const (
	ExactMatch MatchType = "EM"
	BroadMatch MatchType = "BM"
)

// Label is the long form used when generating names.
func (m MatchType) Label() string {
	if m == BroadMatch {
		return "Broad Match"
	}
	return "Exact Match"
}

var matchAliases = map[string]MatchType{
	"EM":           ExactMatch,
	"EXACT MATCH":  ExactMatch,
	"BM":           BroadMatch,
	"BROAD MATCH":  BroadMatch,
	"SM":           BroadMatch,
	"SEARCH MATCH": BroadMatch,
}

type Parts struct {
	AppName      string
	Country      string
	CampaignType string
	MatchType    MatchType
	Original     string
}

// Parse splits a campaign name. Names with more than four segments are read
// positionally: app is the first segment, country the second, type the one
// before the match suffix.
func Parse(name string) (Parts, bool) {
	raw := strings.Split(name, separator)
	if len(raw) < 4 {
		return Parts{}, false
	}
	segments := make([]string, len(raw))
	for i, s := range raw {
		segments[i] = strings.TrimSpace(s)
	}
	match, ok := matchAliases[strings.ToUpper(segments[len(segments)-1])]
	if !ok {
		return Parts{}, false
	}
	return Parts{
		AppName:      segments[0],
		Country:      strings.ToUpper(segments[1]),
		CampaignType: segments[len(segments)-2],
		MatchType:    match,
		Original:     name,
	}, true
}

func (p Parts) WithCountry(country string) string {
	return strings.Join([]string{p.AppName, country, p.CampaignType, p.MatchType.Label()}, separator)
}

// AppName returns the parsed app name, or the first segment of an
// unparseable name.
func AppName(name string) string {
	if parts, ok := Parse(name); ok {
		return parts.AppName
	}
	first, _, _ := strings.Cut(name, separator)
	return strings.TrimSpace(first)
}

// Title upper-cases the first letter of every run of letters and lower-cases
// the rest, so "chippy tools" becomes "Chippy Tools".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// Truncate cuts s to max runes, replacing the tail with "..." when it had to
// cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// Clip cuts s to max runes without a marker.
func Clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
