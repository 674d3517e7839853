package optimize

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asa-cli/internal/appleads"
)

const DefaultThreshold = 20.0

var hundred = decimal.NewFromInt(100)

// BidDiscrepancy is an ad group whose keywords bid well above its default
// bid.
type BidDiscrepancy struct {
	CampaignID    int64           `json:"campaign_id"`
	CampaignName  string          `json:"campaign_name"`
	AdGroupID     int64           `json:"ad_group_id"`
	AdGroupName   string          `json:"ad_group_name"`
	AdGroupBid    decimal.Decimal `json:"ad_group_bid"`
	KeywordAvgBid decimal.Decimal `json:"keyword_avg_bid"`
	KeywordMinBid decimal.Decimal `json:"keyword_min_bid"`
	KeywordMaxBid decimal.Decimal `json:"keyword_max_bid"`
	KeywordCount  int             `json:"keyword_count"`
	Currency      string          `json:"currency"`
}

// DifferencePct is (keyword average - ad group bid) / ad group bid * 100,
// or 0 when the ad group bid is zero.
func (d BidDiscrepancy) DifferencePct() float64 {
	if d.AdGroupBid.IsZero() {
		return 0
	}
	return d.KeywordAvgBid.Sub(d.AdGroupBid).Div(d.AdGroupBid).Mul(hundred).InexactFloat64()
}

func (d BidDiscrepancy) SuggestedBid() decimal.Decimal {
	return d.KeywordAvgBid.RoundBank(2)
}

type ScanOptions struct {
	Threshold float64
	Logger    *zap.Logger
	// OnCampaign is called before each campaign is scanned.
	OnCampaign func(appleads.Campaign)
}

// ScanResult lists discrepancies, largest difference first.
type ScanResult struct {
	Campaigns     int
	Discrepancies []BidDiscrepancy
}

// ScanBidDiscrepancies walks enabled campaigns and their enabled ad groups.
// Ad groups or keyword lists that cannot be read are skipped. Failing to list
// the campaigns is an error.
func ScanBidDiscrepancies(ctx context.Context, api BidScanner, opts ScanOptions) (ScanResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	campaigns, err := api.ListCampaigns(ctx, appleads.StatusEnabled, 0)
	if err != nil {
		return ScanResult{}, err
	}
	result := ScanResult{Campaigns: len(campaigns.Items)}
	for _, campaign := range campaigns.Items {
		if opts.OnCampaign != nil {
			opts.OnCampaign(campaign)
		}
		adGroups, err := api.ListAdGroups(ctx, campaign.ID, appleads.StatusEnabled, 0)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Debug("skipping campaign", zap.Int64("campaign_id", campaign.ID), zap.Error(err))
			continue
		}
		for _, ag := range adGroups.Items {
			keywords, err := api.ListKeywords(ctx, campaign.ID, ag.ID, 0)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				logger.Debug("skipping ad group", zap.Int64("ad_group_id", ag.ID), zap.Error(err))
				continue
			}
			d, ok := compareBids(campaign, ag, keywords.Items)
			if ok && d.DifferencePct() >= opts.Threshold {
				result.Discrepancies = append(result.Discrepancies, d)
			}
		}
	}
	slices.SortStableFunc(result.Discrepancies, func(a, b BidDiscrepancy) int {
		return cmp.Compare(b.DifferencePct(), a.DifferencePct())
	})
	return result, nil
}

func compareBids(campaign appleads.Campaign, ag appleads.AdGroup, keywords []appleads.Keyword) (BidDiscrepancy, bool) {
	if ag.DefaultBidAmount == nil || !ag.DefaultBidAmount.Amount.IsPositive() {
		return BidDiscrepancy{}, false
	}
	var bids []decimal.Decimal
	for _, kw := range keywords {
		if kw.BidAmount != nil {
			bids = append(bids, kw.BidAmount.Amount)
		}
	}
	if len(bids) == 0 {
		return BidDiscrepancy{}, false
	}
	return BidDiscrepancy{
		CampaignID:    campaign.ID,
		CampaignName:  campaign.Name,
		AdGroupID:     ag.ID,
		AdGroupName:   ag.Name,
		AdGroupBid:    ag.DefaultBidAmount.Amount,
		KeywordAvgBid: decimal.Avg(bids[0], bids[1:]...),
		KeywordMinBid: decimal.Min(bids[0], bids[1:]...),
		KeywordMaxBid: decimal.Max(bids[0], bids[1:]...),
		KeywordCount:  len(bids),
		Currency:      ag.DefaultBidAmount.Currency,
	}, true
}

// ApplyBid sets an ad group's default bid.
func ApplyBid(ctx context.Context, api AdGroupUpdater, d BidDiscrepancy, bid decimal.Decimal) error {
	money := appleads.NewMoney(bid, d.Currency)
	_, err := api.UpdateAdGroup(ctx, d.CampaignID, d.AdGroupID, appleads.AdGroupUpdate{DefaultBidAmount: &money})
	return err
}
