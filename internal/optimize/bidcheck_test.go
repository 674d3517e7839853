package optimize

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asa-cli/internal/appleads"
)

func TestDifferencePct(t *testing.T) {
	t.Parallel()

	d := BidDiscrepancy{AdGroupBid: decimal.NewFromInt(1), KeywordAvgBid: decimal.RequireFromString("1.5")}
	assert.InDelta(t, 50.0, d.DifferencePct(), 1e-9)
	assert.Zero(t, BidDiscrepancy{KeywordAvgBid: decimal.NewFromInt(3)}.DifferencePct())
}

func TestScanBidDiscrepancies(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		campaigns: []appleads.Campaign{
			{ID: 1, Name: "Enabled", Status: appleads.StatusEnabled},
			{ID: 2, Name: "Paused", Status: appleads.StatusPaused},
			{ID: 3, Name: "Unreadable", Status: appleads.StatusEnabled},
		},
		adGroupErrs: map[int64]error{3: errors.New("forbidden")},
		adGroups: map[int64][]appleads.AdGroup{
			1: {
				{ID: 10, Name: "big gap", DefaultBidAmount: money("1.00", "USD")},
				{ID: 11, Name: "small gap", DefaultBidAmount: money("1.00", "USD")},
				{ID: 12, Name: "huge gap", DefaultBidAmount: money("0.50", "USD")},
				{ID: 13, Name: "zero bid", DefaultBidAmount: money("0", "USD")},
				{ID: 14, Name: "no keyword bids", DefaultBidAmount: money("1", "USD")},
			},
			2: {{ID: 20, Name: "paused campaign", DefaultBidAmount: money("0.10", "USD")}},
		},
		keywords: map[int64][]appleads.Keyword{
			10: {{BidAmount: money("1.20", "USD")}, {BidAmount: money("1.60", "USD")}, {}},
			11: {{BidAmount: money("1.10", "USD")}},
			12: {{BidAmount: money("1.00", "USD")}},
			13: {{BidAmount: money("5", "USD")}},
			14: {{}},
			20: {{BidAmount: money("5", "USD")}},
		},
	}

	var scanned []string
	res, err := ScanBidDiscrepancies(context.Background(), api, ScanOptions{
		Threshold:  DefaultThreshold,
		OnCampaign: func(c appleads.Campaign) { scanned = append(scanned, c.Name) },
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Campaigns)
	assert.Equal(t, []string{"Enabled", "Unreadable"}, scanned)
	require.Len(t, res.Discrepancies, 2)

	first := res.Discrepancies[0]
	assert.Equal(t, "huge gap", first.AdGroupName)
	assert.InDelta(t, 100.0, first.DifferencePct(), 1e-9)

	second := res.Discrepancies[1]
	assert.Equal(t, "big gap", second.AdGroupName)
	assert.Equal(t, 2, second.KeywordCount)
	assert.Equal(t, "1.4", second.KeywordAvgBid.String())
	assert.Equal(t, "1.2", second.KeywordMinBid.String())
	assert.Equal(t, "1.6", second.KeywordMaxBid.String())
	assert.Equal(t, "1.40", second.SuggestedBid().StringFixed(2))
}

func TestSuggestedBidRoundsHalfToEven(t *testing.T) {
	t.Parallel()

	for avg, want := range map[string]string{
		"1.005": "1.00",
		"1.015": "1.02",
		"1.006": "1.01",
	} {
		d := BidDiscrepancy{KeywordAvgBid: decimal.RequireFromString(avg)}
		assert.Equal(t, want, d.SuggestedBid().StringFixed(2), avg)
	}
}

func TestApplyBid(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	d := BidDiscrepancy{CampaignID: 1, AdGroupID: 2, Currency: "EUR"}
	require.NoError(t, ApplyBid(context.Background(), api, d, decimal.RequireFromString("2.5")))
	require.Len(t, api.updatedAdGroup, 1)
	assert.Equal(t, "2.50 EUR", api.updatedAdGroup[0].DefaultBidAmount.String())
}
