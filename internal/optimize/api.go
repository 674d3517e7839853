// Package optimize holds the campaign optimization workflows: market
// expansion into single-keyword ad groups, bid discrepancy checks and
// keyword bid review.
package optimize

import (
	"context"

	"asa-cli/internal/appleads"
)

// CampaignLister lists campaigns, filtered by status when status is set.
type CampaignLister interface {
	ListCampaigns(ctx context.Context, status appleads.CampaignStatus, limit int) (appleads.Page[appleads.Campaign], error)
}

type KeywordReporter interface {
	KeywordReport(ctx context.Context, campaignID int64, q appleads.ReportQuery) (appleads.Report, error)
}

type KeywordReviewer interface {
	CampaignLister
	KeywordReporter
}

// CampaignBuilder is the write surface used to materialize a plan.
type CampaignBuilder interface {
	CreateCampaign(ctx context.Context, in appleads.CampaignCreate) (appleads.Campaign, error)
	GetCampaign(ctx context.Context, campaignID int64) (appleads.Campaign, error)
	CreateAdGroup(ctx context.Context, campaignID int64, in appleads.AdGroupCreate) (appleads.AdGroup, error)
	CreateKeywords(ctx context.Context, campaignID, adGroupID int64, in []appleads.KeywordCreate) ([]appleads.Keyword, error)
	CreateNegativeKeywords(ctx context.Context, campaignID, adGroupID int64, in []appleads.NegativeKeywordCreate) ([]appleads.NegativeKeyword, error)
}

// BidScanner reads the campaign tree for bid discrepancy checks.
type BidScanner interface {
	CampaignLister
	ListAdGroups(ctx context.Context, campaignID int64, status appleads.CampaignStatus, limit int) (appleads.Page[appleads.AdGroup], error)
	ListKeywords(ctx context.Context, campaignID, adGroupID int64, limit int) (appleads.Page[appleads.Keyword], error)
}

type AdGroupUpdater interface {
	UpdateAdGroup(ctx context.Context, campaignID, adGroupID int64, in appleads.AdGroupUpdate) (appleads.AdGroup, error)
}
