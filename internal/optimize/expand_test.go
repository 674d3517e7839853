package optimize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"asa-cli/internal/appleads"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestChippyToolsExpansion(t *testing.T) {
	t.Parallel()

	source := appleads.Campaign{
		ID:                 1,
		Name:               "Chippy Tools - US - Generic - Exact Match",
		AdamID:             555,
		CountriesOrRegions: []string{"US"},
		DailyBudgetAmount:  money("40", "USD"),
	}
	api := &fakeAPI{reports: map[int64]appleads.Report{
		1: {Rows: []appleads.ReportRow{
			keywordRow("todo", 300, money("1.00", "USD")),
			keywordRow("todo", 200, money("1.00", "USD")),
			keywordRow("todo", 100, money("1.00", "USD")),
			keywordRow("planner", 0, money("2.00", "USD")),
		}},
	}}

	keywords, err := AggregateKeywords(context.Background(), api, []appleads.Campaign{source}, AggregateOptions{})
	require.NoError(t, err)
	plan := BuildPlan([]appleads.Campaign{source}, keywords, PlanOptions{Country: "ca"})

	want := CampaignPlan{
		Name:        "Chippy Tools - CA - Generic - Exact Match",
		Country:     "CA",
		AdamID:      555,
		DailyBudget: decimal.NewFromInt(40),
		Currency:    "USD",
		AdGroups: []AdGroupPlan{{
			Name: "Exact - Todo",
			Keyword: KeywordPlan{
				Text:        "todo",
				Bid:         decimal.RequireFromString("1.00"),
				Currency:    "USD",
				SourceCount: 3,
				Impressions: 600,
				SourceBids:  []decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1)},
			},
			Negatives: []string{},
		}},
	}
	if diff := cmp.Diff(want, plan, decimalEqual); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, plan.NegativeCount())
}

func TestAggregateKeywordsWindowAndOrder(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	sources := []appleads.Campaign{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	api := &fakeAPI{reports: map[int64]appleads.Report{
		1: {Rows: []appleads.ReportRow{
			keywordRow("Alpha", 10, money("1.00", "EUR")),
			keywordRow("beta", 50, money("0.50", "EUR")),
			keywordRow("gamma", 5, nil),
		}},
		2: {Rows: []appleads.ReportRow{
			keywordRow("alpha", 100, money("2.01", "EUR")),
			{Metadata: appleads.ReportMetadata{Keyword: "delta"}},
		}},
	}}

	got, err := AggregateKeywords(context.Background(), api, sources, AggregateOptions{Today: today})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Text)
	assert.Equal(t, int64(110), got[0].Impressions)
	assert.Equal(t, 2, got[0].SourceCount)
	assert.Equal(t, "1.51", got[0].Bid.StringFixed(2))
	assert.Equal(t, "beta", got[1].Text)
	assert.Equal(t, "USD", got[0].Currency, "currency comes from the first source budget")

	require.Len(t, api.reportQueries, 2)
	assert.Equal(t, today.AddDate(0, 0, -90), api.reportQueries[0].Start)
	assert.Equal(t, today, api.reportQueries[0].End)
	assert.Equal(t, "DAILY", api.reportQueries[0].Granularity)
}

func TestAggregateKeywordsReportFailureIsAWarning(t *testing.T) {
	t.Parallel()

	sources := []appleads.Campaign{{ID: 1, Name: "broken"}, {ID: 2, Name: "ok"}}
	api := &fakeAPI{
		reportErrs: map[int64]error{1: errors.New("boom")},
		reports: map[int64]appleads.Report{
			2: {Rows: []appleads.ReportRow{keywordRow("todo", 5, money("1", "USD"))}},
		},
	}
	var warned []string
	core, logs := observer.New(zapcore.DebugLevel)
	got, err := AggregateKeywords(context.Background(), api, sources, AggregateOptions{
		Logger:        zap.New(core),
		OnReportError: func(c appleads.Campaign, err error) { warned = append(warned, c.Name+": "+err.Error()) },
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []string{"broken: boom"}, warned)
	// The caller shows the warning; the log entry stays at debug.
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("keyword report failed").Len())
}

func TestAggregateKeywordsEmpty(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{reports: map[int64]appleads.Report{
		1: {Rows: []appleads.ReportRow{keywordRow("planner", 0, money("1", "USD"))}},
	}}
	_, err := AggregateKeywords(context.Background(), api, []appleads.Campaign{{ID: 1}}, AggregateOptions{})
	var empty *EmptyResultError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "No keywords with impressions found in last 90 days", err.Error())
}

func TestAverageBidIsOrderInvariant(t *testing.T) {
	t.Parallel()

	bids := []decimal.Decimal{
		decimal.RequireFromString("0.333"),
		decimal.RequireFromString("1.10"),
		decimal.RequireFromString("2.005"),
	}
	reversed := []decimal.Decimal{bids[2], bids[1], bids[0]}
	assert.True(t, AverageBid(bids).Equal(AverageBid(reversed)))
	assert.Equal(t, "1.15", AverageBid(bids).String())
	assert.True(t, AverageBid(nil).IsZero())

	// Halves round to the even cent.
	half := []decimal.Decimal{decimal.RequireFromString("1.00"), decimal.RequireFromString("1.01")}
	assert.Equal(t, "1", AverageBid(half).String())
	assert.Equal(t, "1.00", AverageBid(half).StringFixed(2))
	up := []decimal.Decimal{decimal.RequireFromString("1.01"), decimal.RequireFromString("1.02")}
	assert.Equal(t, "1.02", AverageBid(up).String())
}

func TestBuildPlanCrossNegatives(t *testing.T) {
	t.Parallel()

	keywords := []KeywordPlan{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}
	plan := BuildPlan([]appleads.Campaign{{Name: "x"}}, keywords, PlanOptions{Country: "DE"})
	assert.Equal(t, 4*3, plan.NegativeCount())
	assert.Equal(t, []string{"a", "c", "d"}, plan.AdGroups[1].Negatives)

	skipped := BuildPlan([]appleads.Campaign{{Name: "x"}}, keywords, PlanOptions{Country: "DE", SkipNegatives: true})
	assert.Zero(t, skipped.NegativeCount())
}

func TestBuildPlanBudgetAndName(t *testing.T) {
	t.Parallel()

	sources := []appleads.Campaign{
		{Name: "Not parseable", DailyBudgetAmount: money("50", "GBP")},
		{Name: "Other", DailyBudgetAmount: money("100", "GBP")},
		{Name: "No budget"},
	}

	plan := BuildPlan(sources, nil, PlanOptions{Country: " fr "})
	assert.Equal(t, "Not parseable - FR", plan.Name)
	assert.Equal(t, "75", plan.DailyBudget.String())
	assert.Equal(t, "GBP", plan.Currency)

	override := decimal.NewFromInt(12)
	plan = BuildPlan(sources, nil, PlanOptions{Country: "FR", Name: "Custom", DailyBudget: &override})
	assert.Equal(t, "Custom", plan.Name)
	assert.True(t, plan.DailyBudget.Equal(override))

	plan = BuildPlan([]appleads.Campaign{{Name: "Bare"}}, nil, PlanOptions{Country: "FR"})
	assert.True(t, plan.DailyBudget.Equal(DefaultDailyBudget))
	assert.Equal(t, "USD", plan.Currency)

	plan = BuildPlan([]appleads.Campaign{{Name: "App - US - Competitor - BM"}}, nil, PlanOptions{Country: "JP"})
	assert.Equal(t, "App - JP - Competitor - Broad Match", plan.Name)
}

func TestAdGroupNameTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 60)
	name := AdGroupName(long)
	assert.Len(t, []rune(name), 200)
	assert.True(t, strings.HasSuffix(name, "..."))
	assert.True(t, strings.HasPrefix(name, "Exact - Word Word"))

	assert.Equal(t, "Exact - To-Do List", AdGroupName("to-do list"))
}
