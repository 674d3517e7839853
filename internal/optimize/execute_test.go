package optimize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"asa-cli/internal/appleads"
)

func TestWaitForResource(t *testing.T) {
	t.Parallel()

	for k := 0; k < VisibilityAttempts; k++ {
		calls := 0
		got, err := WaitForResource(context.Background(), func(context.Context) (int, error) {
			calls++
			if calls <= k {
				return 0, notFound()
			}
			return 7, nil
		}, VisibilityAttempts, time.Microsecond)
		require.NoError(t, err)
		assert.Equal(t, 7, got)
		assert.Equal(t, k+1, calls)
	}
}

func TestWaitForResourceGivesUp(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := WaitForResource(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, notFound()
	}, VisibilityAttempts, time.Microsecond)
	require.True(t, appleads.IsNotFound(err))
	assert.Equal(t, 10, calls)
}

func TestWaitForResourceOtherErrorIsFatal(t *testing.T) {
	t.Parallel()

	calls := 0
	boom := errors.New("boom")
	_, err := WaitForResource(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, boom
	}, VisibilityAttempts, time.Microsecond)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWaitForResourceHonorsCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WaitForResource(ctx, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, notFound()
	}, VisibilityAttempts, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func testPlan() CampaignPlan {
	keywords := []KeywordPlan{
		{Text: "todo", Bid: decimal.RequireFromString("1.25"), Currency: "USD"},
		{Text: "planner", Bid: decimal.RequireFromString("0.80"), Currency: "USD"},
	}
	return BuildPlan([]appleads.Campaign{{Name: "Chippy Tools - US - Generic - EM", AdamID: 9}}, keywords, PlanOptions{Country: "CA"})
}

func TestExecuteCreatesPlanInOrder(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{getMisses: 2}
	exec := NewExecutor(api, nil)
	exec.Delay = time.Microsecond
	var progress []int
	exec.OnAdGroup = func(i, total int, _ appleads.AdGroup) { progress = append(progress, i*10+total) }

	res, err := exec.Execute(context.Background(), testPlan(), true)
	require.NoError(t, err)

	require.Len(t, api.createdCamps, 1)
	created := api.createdCamps[0]
	assert.Equal(t, "Chippy Tools - CA - Generic - Exact Match", created.Name)
	assert.Equal(t, appleads.StatusPaused, created.Status)
	assert.Equal(t, []string{"CA"}, created.CountriesOrRegions)
	assert.Equal(t, []string{appleads.SupplySourceSearchResults}, created.SupplySources)
	assert.Equal(t, 3, api.getCalls)

	require.Len(t, api.createdGroups, 2)
	assert.Equal(t, "Exact - Todo", api.createdGroups[0].Name)
	assert.Equal(t, "1.25 USD", api.createdGroups[0].DefaultBidAmount.String())
	assert.False(t, api.createdGroups[0].AutomatedKeywordsOptIn)
	require.Len(t, api.createdKws, 2)
	assert.Equal(t, appleads.MatchExact, api.createdKws[1][0].MatchType)
	assert.Equal(t, "planner", api.createdKws[1][0].Text)
	require.Len(t, api.createdNegs, 2)
	assert.Equal(t, "planner", api.createdNegs[0][0].Text)

	assert.Equal(t, []int{12, 22}, progress)
	assert.Equal(t, Result{
		CampaignID:   res.CampaignID,
		CampaignName: "Chippy Tools - CA - Generic - Exact Match",
		Country:      "CA",
		Status:       "PAUSED",
		AdGroups:     2,
		Keywords:     2,
		Negatives:    2,
	}, res)
}

func TestExecuteSwallowsNegativeFailures(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{negativeErr: errors.New("rejected")}
	core, logs := observer.New(zapcore.DebugLevel)
	res, err := NewExecutor(api, zap.New(core)).Execute(context.Background(), testPlan(), false)
	require.NoError(t, err)
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 2, logs.FilterMessage("negative keywords skipped").Len())
	assert.Equal(t, 2, res.AdGroups)
	assert.Equal(t, 0, res.Negatives)
	assert.Equal(t, 2, res.SkippedNegatives)
	assert.Equal(t, appleads.StatusEnabled, api.createdCamps[0].Status)
}

func TestExecuteAbortsOnAdGroupFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{adGroupFailAt: 2}
	res, err := NewExecutor(api, nil).Execute(context.Background(), testPlan(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create ad group "Exact - Planner"`)
	assert.Equal(t, 1, res.AdGroups)
	assert.Equal(t, 1, res.Keywords)
	assert.NotZero(t, res.CampaignID)
}

func TestExecuteAbortsOnKeywordFailure(t *testing.T) {
	t.Parallel()

	keywords := []KeywordPlan{
		{Text: "todo", Bid: decimal.RequireFromString("1.25"), Currency: "USD"},
		{Text: "planner", Bid: decimal.RequireFromString("0.80"), Currency: "USD"},
		{Text: "tasks", Bid: decimal.RequireFromString("0.60"), Currency: "USD"},
	}
	plan := BuildPlan([]appleads.Campaign{{Name: "Chippy Tools - US - Generic - EM", AdamID: 9}}, keywords, PlanOptions{Country: "CA"})

	api := &fakeAPI{keywordFailAt: 2}
	res, err := NewExecutor(api, nil).Execute(context.Background(), plan, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create keyword for ad group "Exact - Planner"`)
	assert.Equal(t, 2, res.AdGroups)
	assert.Equal(t, 1, res.Keywords)
	assert.NotZero(t, res.CampaignID)

	require.Len(t, api.createdGroups, 2)
	assert.Equal(t, "Exact - Todo", api.createdGroups[0].Name)
	assert.Equal(t, "Exact - Planner", api.createdGroups[1].Name)
	assert.Len(t, api.createdKws, 1)
	require.Len(t, api.createdNegs, 1)
	assert.ElementsMatch(t, []string{"planner", "tasks"}, []string{api.createdNegs[0][0].Text, api.createdNegs[0][1].Text})
}
