package optimize

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"asa-cli/internal/appleads"
)

type fakeAPI struct {
	campaigns      []appleads.Campaign
	reports        map[int64]appleads.Report
	reportErrs     map[int64]error
	reportQueries  []appleads.ReportQuery
	adGroups       map[int64][]appleads.AdGroup
	adGroupErrs    map[int64]error
	keywords       map[int64][]appleads.Keyword
	getMisses      int
	getCalls       int
	negativeErr    error
	adGroupFailAt  int
	keywordFailAt  int
	nextID         int64
	createdCamps   []appleads.CampaignCreate
	createdGroups  []appleads.AdGroupCreate
	createdKws     [][]appleads.KeywordCreate
	createdNegs    [][]appleads.NegativeKeywordCreate
	updatedAdGroup []appleads.AdGroupUpdate
}

func money(amount, currency string) *appleads.Money {
	m := appleads.NewMoney(decimal.RequireFromString(amount), currency)
	return &m
}

func notFound() error {
	return &appleads.NotFoundError{APIError: &appleads.APIError{StatusCode: 404, Message: "not found"}}
}

func (f *fakeAPI) id() int64 {
	f.nextID++
	return 1000 + f.nextID
}

func (f *fakeAPI) ListCampaigns(_ context.Context, status appleads.CampaignStatus, _ int) (appleads.Page[appleads.Campaign], error) {
	var out []appleads.Campaign
	for _, c := range f.campaigns {
		if !status.IsSet() || c.Status == status {
			out = append(out, c)
		}
	}
	return appleads.Page[appleads.Campaign]{Items: out, TotalResults: len(out)}, nil
}

func (f *fakeAPI) KeywordReport(_ context.Context, campaignID int64, q appleads.ReportQuery) (appleads.Report, error) {
	f.reportQueries = append(f.reportQueries, q)
	if err := f.reportErrs[campaignID]; err != nil {
		return appleads.Report{}, err
	}
	return f.reports[campaignID], nil
}

func (f *fakeAPI) CreateCampaign(_ context.Context, in appleads.CampaignCreate) (appleads.Campaign, error) {
	f.createdCamps = append(f.createdCamps, in)
	return appleads.Campaign{ID: f.id(), Name: in.Name, AdamID: in.AdamID, CountriesOrRegions: in.CountriesOrRegions}, nil
}

func (f *fakeAPI) GetCampaign(_ context.Context, campaignID int64) (appleads.Campaign, error) {
	f.getCalls++
	if f.getCalls <= f.getMisses {
		return appleads.Campaign{}, notFound()
	}
	return appleads.Campaign{ID: campaignID}, nil
}

func (f *fakeAPI) CreateAdGroup(_ context.Context, _ int64, in appleads.AdGroupCreate) (appleads.AdGroup, error) {
	if f.adGroupFailAt > 0 && len(f.createdGroups)+1 == f.adGroupFailAt {
		return appleads.AdGroup{}, errors.New("quota exceeded")
	}
	f.createdGroups = append(f.createdGroups, in)
	return appleads.AdGroup{ID: f.id(), Name: in.Name}, nil
}

func (f *fakeAPI) CreateKeywords(_ context.Context, _, _ int64, in []appleads.KeywordCreate) ([]appleads.Keyword, error) {
	if f.keywordFailAt > 0 && len(f.createdKws)+1 == f.keywordFailAt {
		return nil, errors.New("keyword rejected")
	}
	f.createdKws = append(f.createdKws, in)
	return make([]appleads.Keyword, len(in)), nil
}

func (f *fakeAPI) CreateNegativeKeywords(_ context.Context, _, _ int64, in []appleads.NegativeKeywordCreate) ([]appleads.NegativeKeyword, error) {
	if f.negativeErr != nil {
		return nil, f.negativeErr
	}
	f.createdNegs = append(f.createdNegs, in)
	return make([]appleads.NegativeKeyword, len(in)), nil
}

func (f *fakeAPI) ListAdGroups(_ context.Context, campaignID int64, _ appleads.CampaignStatus, _ int) (appleads.Page[appleads.AdGroup], error) {
	if err := f.adGroupErrs[campaignID]; err != nil {
		return appleads.Page[appleads.AdGroup]{}, err
	}
	items := f.adGroups[campaignID]
	return appleads.Page[appleads.AdGroup]{Items: items, TotalResults: len(items)}, nil
}

func (f *fakeAPI) ListKeywords(_ context.Context, _, adGroupID int64, _ int) (appleads.Page[appleads.Keyword], error) {
	items := f.keywords[adGroupID]
	return appleads.Page[appleads.Keyword]{Items: items, TotalResults: len(items)}, nil
}

func (f *fakeAPI) UpdateAdGroup(_ context.Context, _, adGroupID int64, in appleads.AdGroupUpdate) (appleads.AdGroup, error) {
	f.updatedAdGroup = append(f.updatedAdGroup, in)
	return appleads.AdGroup{ID: adGroupID, DefaultBidAmount: in.DefaultBidAmount}, nil
}

func keywordRow(text string, impressions int64, bid *appleads.Money) appleads.ReportRow {
	return appleads.ReportRow{
		Metadata: appleads.ReportMetadata{Keyword: text, BidAmount: bid},
		Total:    &appleads.Metrics{Impressions: impressions},
	}
}
