package optimize

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"asa-cli/internal/appleads"
	"asa-cli/internal/naming"
)

var ErrNoCampaignsSelected = errors.New("no campaigns selected")

// Candidate is a campaign offered for selection, numbered from 1 in display
// order.
type Candidate struct {
	Number   int
	Campaign appleads.Campaign
	Parts    naming.Parts
}

// SelectableCampaigns keeps campaigns whose names parse and match the type
// and match filters (both optional, type compared case-insensitively). The
// result is grouped by app name, apps sorted alphabetically, and ordered by
// campaign type then country within an app.
func SelectableCampaigns(campaigns []appleads.Campaign, campaignType, match string) []Candidate {
	var out []Candidate
	for _, c := range campaigns {
		parts, ok := naming.Parse(c.Name)
		if !ok {
			continue
		}
		if campaignType != "" && !strings.EqualFold(parts.CampaignType, campaignType) {
			continue
		}
		if match != "" && string(parts.MatchType) != strings.ToUpper(match) {
			continue
		}
		out = append(out, Candidate{Campaign: c, Parts: parts})
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Or(
			strings.Compare(a.Parts.AppName, b.Parts.AppName),
			strings.Compare(a.Parts.CampaignType, b.Parts.CampaignType),
			strings.Compare(a.Parts.Country, b.Parts.Country),
		)
	})
	for i := range out {
		out[i].Number = i + 1
	}
	return out
}

// Pick returns the candidates whose numbers are in selected, in display
// order. all selects every candidate.
func Pick(candidates []Candidate, selected []int, all bool) []appleads.Campaign {
	var out []appleads.Campaign
	for _, c := range candidates {
		if all || slices.Contains(selected, c.Number) {
			out = append(out, c.Campaign)
		}
	}
	return out
}
