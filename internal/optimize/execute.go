package optimize

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"asa-cli/internal/appleads"
)

// Result counts what Execute created. On failure it describes the partial
// work that stays in place.
type Result struct {
	CampaignID       int64  `json:"campaign_id"`
	CampaignName     string `json:"campaign_name"`
	Country          string `json:"country"`
	Status           string `json:"status"`
	AdGroups         int    `json:"ad_groups"`
	Keywords         int    `json:"keywords"`
	Negatives        int    `json:"negative_keywords"`
	SkippedNegatives int    `json:"skipped_negatives"`
}

// Progress receives one call per created ad group.
type Progress func(index, total int, adGroup appleads.AdGroup)

type Executor struct {
	API    CampaignBuilder
	Logger *zap.Logger
	// Attempts and Delay tune the wait for the new campaign to become
	// readable. Zero values use VisibilityAttempts and VisibilityDelay.
	Attempts int
	Delay    time.Duration
	// OnCampaign is called once the campaign exists.
	OnCampaign func(appleads.Campaign)
	OnAdGroup  Progress
}

func NewExecutor(api CampaignBuilder, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{API: api, Logger: logger, Attempts: VisibilityAttempts, Delay: VisibilityDelay}
}

// Execute creates the campaign, waits until it can be read back, then
// creates each ad group with its exact keyword and negatives in plan order.
// Failed negative creation is logged and counted, not returned. Nothing is
// rolled back on failure.
func (e *Executor) Execute(ctx context.Context, plan CampaignPlan, paused bool) (Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	status := appleads.StatusEnabled
	if paused {
		status = appleads.StatusPaused
	}
	result := Result{Country: plan.Country, Status: status.String()}

	campaign, err := e.API.CreateCampaign(ctx, appleads.CampaignCreate{
		Name:               plan.Name,
		AdamID:             plan.AdamID,
		CountriesOrRegions: []string{plan.Country},
		DailyBudgetAmount:  appleads.NewMoney(plan.DailyBudget, plan.Currency),
		SupplySources:      []string{appleads.SupplySourceSearchResults},
		Status:             status,
	})
	if err != nil {
		return result, fmt.Errorf("create campaign %q: %w", plan.Name, err)
	}
	result.CampaignID = campaign.ID
	result.CampaignName = campaign.Name
	logger.Debug("campaign created", zap.Int64("campaign_id", campaign.ID), zap.String("name", campaign.Name))
	if e.OnCampaign != nil {
		e.OnCampaign(campaign)
	}

	attempts, delay := e.Attempts, e.Delay
	if attempts == 0 {
		attempts = VisibilityAttempts
	}
	if delay == 0 {
		delay = VisibilityDelay
	}
	_, err = WaitForResource(ctx, func(ctx context.Context) (appleads.Campaign, error) {
		return e.API.GetCampaign(ctx, campaign.ID)
	}, attempts, delay)
	if err != nil {
		return result, fmt.Errorf("campaign %d not available: %w", campaign.ID, err)
	}

	for i, agPlan := range plan.AdGroups {
		bid := appleads.NewMoney(agPlan.Keyword.Bid, agPlan.Keyword.Currency)
		ag, err := e.API.CreateAdGroup(ctx, campaign.ID, appleads.AdGroupCreate{
			Name:                   agPlan.Name,
			DefaultBidAmount:       bid,
			AutomatedKeywordsOptIn: false,
		})
		if err != nil {
			return result, fmt.Errorf("create ad group %q: %w", agPlan.Name, err)
		}
		result.AdGroups++
		if e.OnAdGroup != nil {
			e.OnAdGroup(i+1, len(plan.AdGroups), ag)
		}

		_, err = e.API.CreateKeywords(ctx, campaign.ID, ag.ID, []appleads.KeywordCreate{{
			Text:      agPlan.Keyword.Text,
			MatchType: appleads.MatchExact,
			BidAmount: &bid,
		}})
		if err != nil {
			return result, fmt.Errorf("create keyword for ad group %q: %w", agPlan.Name, err)
		}
		result.Keywords++

		if len(agPlan.Negatives) == 0 {
			continue
		}
		negatives := make([]appleads.NegativeKeywordCreate, 0, len(agPlan.Negatives))
		for _, text := range agPlan.Negatives {
			negatives = append(negatives, appleads.NegativeKeywordCreate{Text: text, MatchType: appleads.MatchExact})
		}
		created, err := e.API.CreateNegativeKeywords(ctx, campaign.ID, ag.ID, negatives)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Debug("negative keywords skipped",
				zap.Int64("ad_group_id", ag.ID),
				zap.Int("count", len(negatives)),
				zap.Error(err),
			)
			result.SkippedNegatives += len(negatives)
			continue
		}
		result.Negatives += len(created)
	}
	return result, nil
}
