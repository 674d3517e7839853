// Package brand plans brand protection campaigns: one exact-match campaign
// per storefront with a single-keyword ad group per brand term.
package brand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"asa-cli/internal/appleads"
	"asa-cli/internal/naming"
	"asa-cli/internal/optimize"
)

var (
	ErrNoKeywords  = errors.New("at least one brand keyword is required")
	ErrNoCountries = errors.New("no valid target countries selected")
	ErrNoApps      = errors.New("no campaigns found to get app information from")
)

var (
	DefaultBudget = decimal.RequireFromString("50.00")
	DefaultBid    = decimal.RequireFromString("1.00")
)

const campaignType = "Brand"

// Keywords lower-cases and trims the brand name and its variants, keeping
// the first occurrence of each.
func Keywords(name string, variants ...string) []string {
	var out []string
	for _, raw := range append([]string{name}, variants...) {
		kw := strings.ToLower(strings.TrimSpace(raw))
		if kw == "" {
			continue
		}
		seen := false
		for _, existing := range out {
			if existing == kw {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, kw)
		}
	}
	return out
}

type Plan struct {
	AppName     string          `json:"app_name"`
	AdamID      int64           `json:"adam_id"`
	Country     string          `json:"country"`
	Name        string          `json:"name"`
	Keywords    []string        `json:"keywords"`
	DailyBudget decimal.Decimal `json:"daily_budget"`
	Currency    string          `json:"currency"`
	DefaultBid  decimal.Decimal `json:"default_bid"`
}

// CampaignName is "{app} - {country} - Brand - EM".
func CampaignName(app, country string) string {
	return fmt.Sprintf("%s - %s - %s - %s", app, country, campaignType, naming.ExactMatch)
}

// AdGroupName is "Exact - " plus the title-cased keyword, clipped to 200
// runes.
func AdGroupName(keyword string) string {
	return naming.Clip("Exact - "+naming.Title(keyword), 200)
}

// Settings are the resolved inputs shared by every country's plan.
type Settings struct {
	App         App
	Keywords    []string
	DailyBudget decimal.Decimal
	DefaultBid  decimal.Decimal
}

// BuildPlans makes one plan per country, in the given order.
func BuildPlans(s Settings, countries []string) ([]Plan, error) {
	if len(s.Keywords) == 0 {
		return nil, ErrNoKeywords
	}
	if len(countries) == 0 {
		return nil, ErrNoCountries
	}
	appName := s.App.Name
	if appName == "" {
		appName = naming.Title(s.Keywords[0])
	}
	plans := make([]Plan, 0, len(countries))
	for _, c := range countries {
		plans = append(plans, Plan{
			AppName:     appName,
			AdamID:      s.App.AdamID,
			Country:     c,
			Name:        CampaignName(appName, c),
			Keywords:    s.Keywords,
			DailyBudget: s.DailyBudget,
			Currency:    s.App.Currency,
			DefaultBid:  s.DefaultBid,
		})
	}
	return plans, nil
}

// TotalDailyBudget is the combined daily budget of all plans.
func TotalDailyBudget(plans []Plan) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plans {
		total = total.Add(p.DailyBudget)
	}
	return total
}

// CampaignPlan converts the plan into single-keyword ad groups without
// cross-negatives, ready for an optimize.Executor.
func (p Plan) CampaignPlan() optimize.CampaignPlan {
	out := optimize.CampaignPlan{
		Name:        p.Name,
		Country:     p.Country,
		AdamID:      p.AdamID,
		DailyBudget: p.DailyBudget,
		Currency:    p.Currency,
	}
	for _, kw := range p.Keywords {
		out.AdGroups = append(out.AdGroups, optimize.AdGroupPlan{
			Name: AdGroupName(kw),
			Keyword: optimize.KeywordPlan{
				Text:     kw,
				Bid:      p.DefaultBid,
				Currency: p.Currency,
			},
		})
	}
	return out
}

// App identifies the advertised app and its account currency.
type App struct {
	AdamID   int64  `json:"adam_id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func appFromCampaign(c appleads.Campaign) App {
	currency := "USD"
	if c.DailyBudgetAmount != nil && c.DailyBudgetAmount.Currency != "" {
		currency = c.DailyBudgetAmount.Currency
	}
	return App{AdamID: c.AdamID, Name: naming.AppName(c.Name), Currency: currency}
}

// DistinctApps returns one App per adamId in campaign order; the first
// campaign seen for an app supplies its name and currency.
func DistinctApps(campaigns []appleads.Campaign) []App {
	seen := map[int64]bool{}
	var out []App
	for _, c := range campaigns {
		if c.AdamID == 0 || seen[c.AdamID] {
			continue
		}
		seen[c.AdamID] = true
		out = append(out, appFromCampaign(c))
	}
	return out
}

// Reference is the app, budget and average bid taken from an existing
// campaign.
type Reference struct {
	Campaign appleads.Campaign
	App      App
	Budget   *decimal.Decimal
	Bid      *decimal.Decimal
}

type ReferenceReader interface {
	GetCampaign(ctx context.Context, campaignID int64) (appleads.Campaign, error)
	ListAdGroups(ctx context.Context, campaignID int64, status appleads.CampaignStatus, limit int) (appleads.Page[appleads.AdGroup], error)
}

// LoadReference reads a campaign and the mean default bid of its ad groups.
func LoadReference(ctx context.Context, api ReferenceReader, campaignID int64) (Reference, error) {
	campaign, err := api.GetCampaign(ctx, campaignID)
	if err != nil {
		return Reference{}, err
	}
	ref := Reference{Campaign: campaign, App: appFromCampaign(campaign)}
	if campaign.DailyBudgetAmount != nil {
		budget := campaign.DailyBudgetAmount.Amount
		ref.Budget = &budget
	}
	groups, err := api.ListAdGroups(ctx, campaignID, appleads.CampaignStatus{}, 0)
	if err != nil {
		return Reference{}, err
	}
	var bids []decimal.Decimal
	for _, ag := range groups.Items {
		if ag.DefaultBidAmount != nil {
			bids = append(bids, ag.DefaultBidAmount.Amount)
		}
	}
	if len(bids) > 0 {
		bid := optimize.AverageBid(bids)
		ref.Bid = &bid
	}
	return ref, nil
}

// Resolve picks the flag value, then the reference value, then nil.
func Resolve(flag, reference *decimal.Decimal) *decimal.Decimal {
	if flag != nil {
		return flag
	}
	return reference
}
