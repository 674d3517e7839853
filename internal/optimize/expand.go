package optimize

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asa-cli/internal/appleads"
	"asa-cli/internal/naming"
)

const (
	LookbackDays    = 90
	maxAdGroupName  = 200
	defaultCurrency = "USD"
	adGroupPrefix   = "Exact - "
)

var DefaultDailyBudget = decimal.NewFromInt(100)

// EmptyResultError reports that no source keyword had impressions in the
// lookback window.
type EmptyResultError struct {
	Days int
}

func (e *EmptyResultError) Error() string {
	return "No keywords with impressions found in last " + strconv.Itoa(e.Days) + " days"
}

type KeywordPlan struct {
	Text        string            `json:"text"`
	Bid         decimal.Decimal   `json:"bid"`
	Currency    string            `json:"currency"`
	SourceCount int               `json:"source_count"`
	Impressions int64             `json:"impressions"`
	SourceBids  []decimal.Decimal `json:"source_bids"`
}

type AdGroupPlan struct {
	Name      string      `json:"name"`
	Keyword   KeywordPlan `json:"keyword"`
	Negatives []string    `json:"negatives"`
}

type CampaignPlan struct {
	Name        string          `json:"name"`
	Country     string          `json:"country"`
	AdamID      int64           `json:"adam_id"`
	DailyBudget decimal.Decimal `json:"daily_budget"`
	Currency    string          `json:"currency"`
	AdGroups    []AdGroupPlan   `json:"ad_groups"`
}

// NegativeCount is the number of cross-negatives across all ad groups.
func (p CampaignPlan) NegativeCount() int {
	n := 0
	for _, ag := range p.AdGroups {
		n += len(ag.Negatives)
	}
	return n
}

// AggregateOptions controls the keyword report window and failure reporting.
type AggregateOptions struct {
	// Today anchors the window; zero means time.Now.
	Today  time.Time
	Logger *zap.Logger
	// OnReportError is told about each source campaign whose report failed.
	OnReportError func(campaign appleads.Campaign, err error)
}

// AggregateKeywords merges the keyword reports of the source campaigns over
// the last 90 days. Only keywords that had impressions and carry at least
// one bid are kept. The result is ordered by impressions, highest first.
func AggregateKeywords(ctx context.Context, reports KeywordReporter, sources []appleads.Campaign, opts AggregateOptions) ([]KeywordPlan, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}
	q := appleads.ReportQuery{
		Start:       today.AddDate(0, 0, -LookbackDays),
		End:         today,
		Granularity: "DAILY",
	}
	currency := sourceCurrency(sources)

	impressions := map[string]int64{}
	bids := map[string][]decimal.Decimal{}
	for _, campaign := range sources {
		report, err := reports.KeywordReport(ctx, campaign.ID, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("keyword report failed", zap.Int64("campaign_id", campaign.ID), zap.Error(err))
			if opts.OnReportError != nil {
				opts.OnReportError(campaign, err)
			}
			continue
		}
		for _, row := range report.Rows {
			if row.Metadata.Keyword == "" || row.Total == nil || row.Total.Impressions <= 0 {
				continue
			}
			text := strings.ToLower(row.Metadata.Keyword)
			impressions[text] += row.Total.Impressions
			if row.Metadata.BidAmount != nil {
				bids[text] = append(bids[text], row.Metadata.BidAmount.Amount)
			}
		}
	}

	plans := make([]KeywordPlan, 0, len(bids))
	for text, sourceBids := range bids {
		plans = append(plans, KeywordPlan{
			Text:        text,
			Bid:         AverageBid(sourceBids),
			Currency:    currency,
			SourceCount: len(sourceBids),
			Impressions: impressions[text],
			SourceBids:  sourceBids,
		})
	}
	if len(plans) == 0 {
		return nil, &EmptyResultError{Days: LookbackDays}
	}
	slices.SortFunc(plans, func(a, b KeywordPlan) int {
		if c := cmp.Compare(b.Impressions, a.Impressions); c != 0 {
			return c
		}
		return strings.Compare(a.Text, b.Text)
	})
	return plans, nil
}

// AverageBid is the arithmetic mean rounded to cents, half to even.
func AverageBid(bids []decimal.Decimal) decimal.Decimal {
	if len(bids) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, b := range bids {
		sum = sum.Add(b)
	}
	return sum.Div(decimal.NewFromInt(int64(len(bids)))).RoundBank(2)
}

func sourceCurrency(sources []appleads.Campaign) string {
	if len(sources) > 0 && sources[0].DailyBudgetAmount != nil && sources[0].DailyBudgetAmount.Currency != "" {
		return sources[0].DailyBudgetAmount.Currency
	}
	return defaultCurrency
}

type PlanOptions struct {
	Country string
	// Name overrides the generated campaign name.
	Name string
	// DailyBudget overrides the mean of the source budgets.
	DailyBudget   *decimal.Decimal
	SkipNegatives bool
}

// AdGroupName is "Exact - " plus the title-cased keyword, cut to 200 runes.
func AdGroupName(keyword string) string {
	return naming.Truncate(adGroupPrefix+naming.Title(keyword), maxAdGroupName)
}

// BuildPlan lays out one single-keyword ad group per keyword for the target
// country. Each ad group excludes every other keyword as an exact negative
// unless SkipNegatives is set.
func BuildPlan(sources []appleads.Campaign, keywords []KeywordPlan, opts PlanOptions) CampaignPlan {
	country := strings.ToUpper(strings.TrimSpace(opts.Country))
	plan := CampaignPlan{
		Name:        PlanName(sources, country, opts.Name),
		Country:     country,
		DailyBudget: planBudget(sources, opts.DailyBudget),
		Currency:    sourceCurrency(sources),
		AdGroups:    make([]AdGroupPlan, 0, len(keywords)),
	}
	if len(sources) > 0 {
		plan.AdamID = sources[0].AdamID
	}
	for _, kw := range keywords {
		ag := AdGroupPlan{Name: AdGroupName(kw.Text), Keyword: kw, Negatives: []string{}}
		if !opts.SkipNegatives {
			for _, other := range keywords {
				if other.Text != kw.Text {
					ag.Negatives = append(ag.Negatives, other.Text)
				}
			}
		}
		plan.AdGroups = append(plan.AdGroups, ag)
	}
	return plan
}

// PlanName prefers an explicit name, then the first source's name with the
// country swapped, then the first source's name suffixed with the country.
func PlanName(sources []appleads.Campaign, country, override string) string {
	if override != "" {
		return override
	}
	if len(sources) == 0 {
		return country
	}
	if parts, ok := naming.Parse(sources[0].Name); ok {
		return parts.WithCountry(country)
	}
	return sources[0].Name + " - " + country
}

func planBudget(sources []appleads.Campaign, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	var budgets []decimal.Decimal
	for _, c := range sources {
		if c.DailyBudgetAmount != nil {
			budgets = append(budgets, c.DailyBudgetAmount.Amount)
		}
	}
	if len(budgets) == 0 {
		return DefaultDailyBudget
	}
	return decimal.Avg(budgets[0], budgets[1:]...).RoundBank(2)
}
