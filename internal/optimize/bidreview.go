package optimize

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asa-cli/internal/appleads"
)

type Strength string

const (
	StrengthStrong   Strength = "STRONG"
	StrengthModerate Strength = "MODERATE"
	StrengthWeak     Strength = "WEAK"
	StrengthUnknown  Strength = "UNKNOWN"
)

const DefaultReviewDays = 30

// KeywordBidAnalysis is one keyword's performance over the review window.
type KeywordBidAnalysis struct {
	CampaignID   int64            `json:"campaign_id"`
	CampaignName string           `json:"campaign_name"`
	AdGroupID    int64            `json:"ad_group_id"`
	AdGroupName  string           `json:"ad_group_name"`
	KeywordID    int64            `json:"keyword_id"`
	KeywordText  string           `json:"keyword"`
	CurrentBid   decimal.Decimal  `json:"current_bid"`
	Currency     string           `json:"currency"`
	Impressions  int64            `json:"impressions"`
	Taps         int64            `json:"taps"`
	Conversions  int64            `json:"conversions"`
	Spend        decimal.Decimal  `json:"spend"`
	AvgCPT       *decimal.Decimal `json:"avg_cpt"`
	TTR          *float64         `json:"ttr"`
	CR           *float64         `json:"cr"`
	Country      string           `json:"country"`
}

// Strength estimates bid competitiveness from volume and tap-through rate.
func (k KeywordBidAnalysis) Strength() Strength {
	if k.Impressions == 0 {
		return StrengthUnknown
	}
	ttr := 0.0
	if k.TTR != nil {
		ttr = *k.TTR
	}
	switch {
	case k.Impressions >= 1000 && ttr >= 0.05:
		return StrengthStrong
	case k.Impressions >= 100 && ttr >= 0.02:
		return StrengthModerate
	case k.Impressions > 0:
		return StrengthWeak
	}
	return StrengthUnknown
}

func (k KeywordBidAnalysis) Recommendation() string {
	switch k.Strength() {
	case StrengthStrong:
		return "Consider increase for more volume"
	case StrengthModerate:
		return "Monitor performance"
	case StrengthWeak:
		return "Increase bid or review keyword"
	}
	return "Need more data"
}

type ReviewOptions struct {
	Country string
	Days    int
	// Today anchors the window; zero means time.Now.
	Today          time.Time
	MinImpressions int64
	WeakOnly       bool
	Logger         *zap.Logger
}

// ReviewWindow ends yesterday and starts days before that.
func ReviewWindow(today time.Time, days int) (start, end time.Time) {
	end = today.AddDate(0, 0, -1)
	return end.AddDate(0, 0, -days), end
}

// Review is the outcome of ReviewKeywordBids. Keywords is empty when nothing
// matched; Campaigns and Collected tell the caller which stage came up empty.
type Review struct {
	Campaigns int
	Collected int
	Keywords  []KeywordBidAnalysis
}

// ReviewKeywordBids builds a KeywordBidAnalysis per keyword report row of the
// enabled campaigns, optionally limited to one country. Rows are filtered by
// MinImpressions and WeakOnly and sorted by impressions, highest first.
// Campaigns whose report fails are skipped.
func ReviewKeywordBids(ctx context.Context, api KeywordReviewer, opts ReviewOptions) (Review, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}
	days := opts.Days
	if days <= 0 {
		days = DefaultReviewDays
	}
	start, end := ReviewWindow(today, days)

	page, err := api.ListCampaigns(ctx, appleads.StatusEnabled, 0)
	if err != nil {
		return Review{}, err
	}
	country := strings.ToUpper(strings.TrimSpace(opts.Country))
	var campaigns []appleads.Campaign
	for _, c := range page.Items {
		if country == "" || targetsCountry(c, country) {
			campaigns = append(campaigns, c)
		}
	}

	review := Review{Campaigns: len(campaigns)}
	var all []KeywordBidAnalysis
	q := appleads.ReportQuery{Start: start, End: end, Granularity: "DAILY"}
	for _, campaign := range campaigns {
		report, err := api.KeywordReport(ctx, campaign.ID, q)
		if err != nil {
			if ctx.Err() != nil {
				return review, ctx.Err()
			}
			logger.Debug("skipping campaign report", zap.Int64("campaign_id", campaign.ID), zap.Error(err))
			continue
		}
		for _, row := range report.Rows {
			if row.Metadata.Keyword == "" || row.Total == nil {
				continue
			}
			all = append(all, analyzeRow(campaign, row))
		}
	}
	review.Collected = len(all)

	for _, k := range all {
		if opts.MinImpressions > 0 && k.Impressions < opts.MinImpressions {
			continue
		}
		if opts.WeakOnly && k.Strength() != StrengthWeak {
			continue
		}
		review.Keywords = append(review.Keywords, k)
	}
	slices.SortStableFunc(review.Keywords, func(a, b KeywordBidAnalysis) int {
		return cmp.Compare(b.Impressions, a.Impressions)
	})
	return review, nil
}

func targetsCountry(c appleads.Campaign, country string) bool {
	for _, cc := range c.CountriesOrRegions {
		if strings.EqualFold(cc, country) {
			return true
		}
	}
	return false
}

func analyzeRow(campaign appleads.Campaign, row appleads.ReportRow) KeywordBidAnalysis {
	total := *row.Total
	k := KeywordBidAnalysis{
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		AdGroupID:    row.Metadata.AdGroupID,
		AdGroupName:  row.Metadata.AdGroupName,
		KeywordID:    row.Metadata.KeywordID,
		KeywordText:  row.Metadata.Keyword,
		Currency:     defaultCurrency,
		Impressions:  total.Impressions,
		Taps:         total.Taps,
		Conversions:  total.InstallCount(),
		Spend:        total.SpendAmount(),
		Country:      campaign.PrimaryCountry(),
	}
	if total.LocalSpend != nil && total.LocalSpend.Currency != "" {
		k.Currency = total.LocalSpend.Currency
	}
	if row.Metadata.BidAmount != nil {
		k.CurrentBid = row.Metadata.BidAmount.Amount
	}
	if k.Taps > 0 {
		cpt := k.Spend.Div(decimal.NewFromInt(k.Taps))
		cr := float64(k.Conversions) / float64(k.Taps)
		k.AvgCPT = &cpt
		k.CR = &cr
	}
	if k.Impressions > 0 {
		ttr := float64(k.Taps) / float64(k.Impressions)
		k.TTR = &ttr
	}
	return k
}

// StrengthCounts tallies keywords per strength.
func StrengthCounts(keywords []KeywordBidAnalysis) map[Strength]int {
	counts := map[Strength]int{}
	for _, k := range keywords {
		counts[k.Strength()]++
	}
	return counts
}

// ReviewColumns are the CSV export columns of a bid review.
var ReviewColumns = []string{
	"campaign_name", "ad_group_name", "keyword", "country", "current_bid", "currency",
	"impressions", "taps", "conversions", "spend", "avg_cpt", "ttr", "cr",
	"bid_strength", "recommendation",
}
