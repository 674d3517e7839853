package brand

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asa-cli/internal/appleads"
)

func TestCountryCatalog(t *testing.T) {
	t.Parallel()

	all := AllCountries(true)
	assert.Len(t, all, 91)
	assert.Len(t, AllCountries(false), 90)
	assert.NotContains(t, AllCountries(false), China)
	for _, code := range all {
		assert.NotEqual(t, code, CountryName(code), "missing name for %s", code)
	}
	assert.Equal(t, "ZZ", CountryName("ZZ"))
}

func TestPresets(t *testing.T) {
	t.Parallel()

	require.Len(t, Presets, 6)
	assert.Equal(t, []string{"US", "GB", "CA", "AU"}, Presets[2].Countries(false))
	assert.Len(t, Presets[3].Countries(false), 37)
	asia := Presets[4].Countries(true)
	assert.Len(t, asia, 17)
	assert.NotContains(t, asia, China)
	assert.Contains(t, Presets[0].Countries(true), China)
}

func TestResolveCountries(t *testing.T) {
	t.Parallel()

	got, warnings := ResolveCountries([]string{"us", " gb", "XX", "cn", "US", ""}, false)
	assert.Equal(t, []string{"US", "GB"}, got)
	require.Len(t, warnings, 2)
	assert.Equal(t, "Unknown country code: XX", warnings[0])
	assert.True(t, strings.HasPrefix(warnings[1], "Skipping CN"))

	got, warnings = ResolveCountries([]string{"CN"}, true)
	assert.Equal(t, []string{"CN"}, got)
	assert.Empty(t, warnings)
}

func TestSelectCountries(t *testing.T) {
	t.Parallel()

	byNumber, _ := SelectCountries("3", false)
	assert.Equal(t, []string{"US", "GB", "CA", "AU"}, byNumber)

	byName, _ := SelectCountries(" English ", false)
	assert.Equal(t, []string{"US", "GB", "CA", "AU", "NZ", "IE"}, byName)

	codes, warnings := SelectCountries("de, fr,jp", false)
	assert.Equal(t, []string{"DE", "FR", "JP"}, codes)
	assert.Empty(t, warnings)

	all, _ := SelectCountries("all", false)
	assert.Len(t, all, 90)
}

func TestGroupByRegion(t *testing.T) {
	t.Parallel()

	groups := GroupByRegion([]string{"US", "DE", "JP", "FR"})
	require.Len(t, groups, 3)
	assert.Equal(t, "Asia Pacific", groups[0].Name)
	assert.Equal(t, []string{"DE", "FR"}, groups[1].Countries)
	assert.Equal(t, "North America", groups[2].Name)
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"chippy tools", "chippy tool", "chipy"},
		Keywords("Chippy Tools", " Chippy Tool", "chippy tools", "", "CHIPY"))
	assert.Empty(t, Keywords(""))
}

func TestBuildPlans(t *testing.T) {
	t.Parallel()

	settings := Settings{
		App:         App{AdamID: 42, Name: "Chippy Tools", Currency: "GBP"},
		Keywords:    []string{"chippy tools", "chippy"},
		DailyBudget: decimal.NewFromInt(25),
		DefaultBid:  decimal.RequireFromString("0.75"),
	}
	plans, err := BuildPlans(settings, []string{"US", "GB"})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Chippy Tools - GB - Brand - EM", plans[1].Name)
	assert.Equal(t, "50", TotalDailyBudget(plans).String())

	cp := plans[0].CampaignPlan()
	assert.Equal(t, "US", cp.Country)
	assert.Equal(t, int64(42), cp.AdamID)
	require.Len(t, cp.AdGroups, 2)
	assert.Equal(t, "Exact - Chippy Tools", cp.AdGroups[0].Name)
	assert.Equal(t, "0.75", cp.AdGroups[1].Keyword.Bid.String())
	assert.Zero(t, cp.NegativeCount())

	_, err = BuildPlans(Settings{}, []string{"US"})
	require.ErrorIs(t, err, ErrNoKeywords)
	assert.EqualError(t, err, "at least one brand keyword is required")
	_, err = BuildPlans(settings, nil)
	require.ErrorIs(t, err, ErrNoCountries)

	settings.App.Name = ""
	plans, err = BuildPlans(settings, []string{"US"})
	require.NoError(t, err)
	assert.Equal(t, "Chippy Tools - US - Brand - EM", plans[0].Name)
}

func TestAdGroupNameClips(t *testing.T) {
	t.Parallel()

	name := AdGroupName(strings.Repeat("a", 300))
	assert.Len(t, []rune(name), 200)
	assert.False(t, strings.HasSuffix(name, "..."))
}

func TestDistinctApps(t *testing.T) {
	t.Parallel()

	apps := DistinctApps([]appleads.Campaign{
		{AdamID: 1, Name: "Chippy Tools - US - Generic - EM", DailyBudgetAmount: &appleads.Money{Currency: "EUR"}},
		{AdamID: 0, Name: "orphan"},
		{AdamID: 1, Name: "Other - GB - Brand - EM"},
		{AdamID: 2, Name: "Concrete - AU"},
	})
	assert.Equal(t, []App{
		{AdamID: 1, Name: "Chippy Tools", Currency: "EUR"},
		{AdamID: 2, Name: "Concrete", Currency: "USD"},
	}, apps)
}

type fakeReference struct {
	campaign appleads.Campaign
	groups   []appleads.AdGroup
}

func (f fakeReference) GetCampaign(context.Context, int64) (appleads.Campaign, error) {
	return f.campaign, nil
}

func (f fakeReference) ListAdGroups(context.Context, int64, appleads.CampaignStatus, int) (appleads.Page[appleads.AdGroup], error) {
	return appleads.Page[appleads.AdGroup]{Items: f.groups}, nil
}

func TestLoadReference(t *testing.T) {
	t.Parallel()

	budget := appleads.NewMoney(decimal.NewFromInt(80), "usd")
	api := fakeReference{
		campaign: appleads.Campaign{ID: 9, AdamID: 77, Name: "Chippy Tools - US - Generic - EM", DailyBudgetAmount: &budget},
		groups: []appleads.AdGroup{
			{DefaultBidAmount: &appleads.Money{Amount: decimal.RequireFromString("1.00"), Currency: "USD"}},
			{DefaultBidAmount: &appleads.Money{Amount: decimal.RequireFromString("2.00"), Currency: "USD"}},
			{},
		},
	}
	ref, err := LoadReference(context.Background(), api, 9)
	require.NoError(t, err)
	assert.Equal(t, App{AdamID: 77, Name: "Chippy Tools", Currency: "USD"}, ref.App)
	require.NotNil(t, ref.Budget)
	assert.Equal(t, "80", ref.Budget.String())
	require.NotNil(t, ref.Bid)
	assert.Equal(t, "1.50", ref.Bid.StringFixed(2))

	flag := decimal.NewFromInt(5)
	assert.Equal(t, &flag, Resolve(&flag, ref.Budget))
	assert.Equal(t, ref.Budget, Resolve(nil, ref.Budget))
}
