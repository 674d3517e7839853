package impressionshare

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asa-cli/internal/appleads"
)

// KeywordInfo locates a targeting keyword and its bid.
type KeywordInfo struct {
	KeywordID    int64           `json:"keyword_id"`
	KeywordText  string          `json:"keyword_text"`
	CampaignID   int64           `json:"campaign_id"`
	CampaignName string          `json:"campaign_name"`
	AdGroupID    int64           `json:"ad_group_id"`
	AdGroupName  string          `json:"ad_group_name"`
	Bid          decimal.Decimal `json:"bid"`
	Currency     string          `json:"currency"`
}

// KeywordIndex maps lower-cased keyword text to every keyword using it.
type KeywordIndex map[string][]KeywordInfo

// Size is the number of indexed keywords.
func (ix KeywordIndex) Size() int {
	n := 0
	for _, v := range ix {
		n += len(v)
	}
	return n
}

type KeywordSource interface {
	ListCampaigns(ctx context.Context, status appleads.CampaignStatus, limit int) (appleads.Page[appleads.Campaign], error)
	ListAdGroups(ctx context.Context, campaignID int64, status appleads.CampaignStatus, limit int) (appleads.Page[appleads.AdGroup], error)
	ListKeywords(ctx context.Context, campaignID, adGroupID int64, limit int) (appleads.Page[appleads.Keyword], error)
}

// BuildKeywordIndex indexes the keywords of enabled ad groups in enabled
// campaigns that target country. Unreadable ad groups and keyword lists
// are skipped.
func BuildKeywordIndex(ctx context.Context, api KeywordSource, country string, logger *zap.Logger) (KeywordIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	campaigns, err := api.ListCampaigns(ctx, appleads.StatusEnabled, 0)
	if err != nil {
		return nil, err
	}
	index := KeywordIndex{}
	for _, c := range campaigns.Items {
		if !c.Targets(country) {
			continue
		}
		groups, err := api.ListAdGroups(ctx, c.ID, appleads.StatusEnabled, 0)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("skipping campaign", zap.Int64("campaign_id", c.ID), zap.Error(err))
			continue
		}
		for _, ag := range groups.Items {
			keywords, err := api.ListKeywords(ctx, c.ID, ag.ID, 0)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Debug("skipping ad group", zap.Int64("ad_group_id", ag.ID), zap.Error(err))
				continue
			}
			for _, kw := range keywords.Items {
				info := KeywordInfo{
					KeywordID:    kw.ID,
					KeywordText:  kw.Text,
					CampaignID:   c.ID,
					CampaignName: c.Name,
					AdGroupID:    ag.ID,
					AdGroupName:  ag.Name,
					Currency:     "USD",
				}
				if kw.BidAmount != nil {
					info.Bid = kw.BidAmount.Amount
					info.Currency = kw.BidAmount.Currency
				}
				key := strings.ToLower(kw.Text)
				index[key] = append(index[key], info)
			}
		}
	}
	return index, nil
}

// CorrelatedTerm is a search term with the first keyword that matches it.
type CorrelatedTerm struct {
	Row
	Keyword *KeywordInfo `json:"keyword"`
}

func (c CorrelatedTerm) Matched() bool { return c.Keyword != nil }

type CorrelateOptions struct {
	MinShare      *float64
	UnmatchedOnly bool
	MatchedOnly   bool
}

// Correlate matches the latest row per term in country against the keyword
// index, applies the filters and sorts by share, lowest first.
func Correlate(rows []Row, index KeywordIndex, country string, opts CorrelateOptions) []CorrelatedTerm {
	var latest []Row
	for _, r := range Latest(rows) {
		if strings.EqualFold(r.Country, country) {
			latest = append(latest, r)
		}
	}
	SortByShare(latest)

	var out []CorrelatedTerm
	for _, r := range latest {
		ct := CorrelatedTerm{Row: r}
		if matches := index[strings.ToLower(r.SearchTerm)]; len(matches) > 0 {
			m := matches[0]
			ct.Keyword = &m
		}
		if opts.MinShare != nil && !r.BelowShare(*opts.MinShare) {
			continue
		}
		if opts.UnmatchedOnly && ct.Matched() {
			continue
		}
		if !opts.UnmatchedOnly && opts.MatchedOnly && !ct.Matched() {
			continue
		}
		out = append(out, ct)
	}
	return out
}

// CorrelationCounts reports matched terms, unmatched terms, and matched
// terms in the low share bucket.
func CorrelationCounts(terms []CorrelatedTerm) (matched, unmatched, lowMatched int) {
	for _, t := range terms {
		if !t.Matched() {
			unmatched++
			continue
		}
		matched++
		if t.Bucket() == BucketLow {
			lowMatched++
		}
	}
	return matched, unmatched, lowMatched
}
