package appleads

import (
	"strconv"

	"github.com/shopspring/decimal"
)

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: upperTrim(currency)}
}

// String renders "12.50 USD".
func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

type Campaign struct {
	ID                 int64          `json:"id"`
	OrgID              int64          `json:"orgId,omitempty"`
	Name               string         `json:"name"`
	AdamID             int64          `json:"adamId"`
	Status             CampaignStatus `json:"status"`
	ServingStatus      ServingStatus  `json:"servingStatus"`
	BudgetAmount       *Money         `json:"budgetAmount,omitempty"`
	DailyBudgetAmount  *Money         `json:"dailyBudgetAmount,omitempty"`
	CountriesOrRegions []string       `json:"countriesOrRegions"`
	SupplySources      []string       `json:"supplySources,omitempty"`
	AdChannelType      string         `json:"adChannelType,omitempty"`
	BillingEvent       string         `json:"billingEvent,omitempty"`
	StartTime          string         `json:"startTime,omitempty"`
	EndTime            string         `json:"endTime,omitempty"`
	Deleted            bool           `json:"deleted"`
}

// PrimaryCountry is the first targeted storefront, or "?" when none is set.
func (c Campaign) PrimaryCountry() string {
	if len(c.CountriesOrRegions) == 0 {
		return "?"
	}
	return c.CountriesOrRegions[0]
}

func (c Campaign) Targets(country string) bool {
	for _, cc := range c.CountriesOrRegions {
		if cc == country {
			return true
		}
	}
	return false
}

type AdGroup struct {
	ID                     int64          `json:"id"`
	CampaignID             int64          `json:"campaignId"`
	Name                   string         `json:"name"`
	Status                 CampaignStatus `json:"status"`
	ServingStatus          ServingStatus  `json:"servingStatus"`
	DefaultBidAmount       *Money         `json:"defaultBidAmount,omitempty"`
	CpaGoal                *Money         `json:"cpaGoal,omitempty"`
	AutomatedKeywordsOptIn SearchMatch    `json:"automatedKeywordsOptIn"`
	PricingModel           string         `json:"pricingModel,omitempty"`
	StartTime              string         `json:"startTime,omitempty"`
	Deleted                bool           `json:"deleted"`
}

type Keyword struct {
	ID         int64         `json:"id"`
	CampaignID int64         `json:"campaignId,omitempty"`
	AdGroupID  int64         `json:"adGroupId"`
	Text       string        `json:"text"`
	MatchType  MatchType     `json:"matchType"`
	Status     KeywordStatus `json:"status"`
	BidAmount  *Money        `json:"bidAmount,omitempty"`
	Deleted    bool          `json:"deleted"`
}

type NegativeKeyword struct {
	ID         int64         `json:"id"`
	CampaignID int64         `json:"campaignId,omitempty"`
	AdGroupID  int64         `json:"adGroupId,omitempty"`
	Text       string        `json:"text"`
	MatchType  MatchType     `json:"matchType"`
	Status     KeywordStatus `json:"status"`
	Deleted    bool          `json:"deleted"`
}

type CampaignCreate struct {
	Name               string         `json:"name"`
	AdamID             int64          `json:"adamId"`
	CountriesOrRegions []string       `json:"countriesOrRegions"`
	DailyBudgetAmount  Money          `json:"dailyBudgetAmount"`
	BudgetAmount       *Money         `json:"budgetAmount,omitempty"`
	SupplySources      []string       `json:"supplySources"`
	Status             CampaignStatus `json:"status"`
}

// CampaignUpdate carries only the fields being changed.
type CampaignUpdate struct {
	Name              string         `json:"name,omitempty"`
	Status            CampaignStatus `json:"status,omitzero"`
	BudgetAmount      *Money         `json:"budgetAmount,omitempty"`
	DailyBudgetAmount *Money         `json:"dailyBudgetAmount,omitempty"`
}

type AdGroupCreate struct {
	Name                   string         `json:"name"`
	DefaultBidAmount       Money          `json:"defaultBidAmount"`
	AutomatedKeywordsOptIn bool           `json:"automatedKeywordsOptIn"`
	Status                 CampaignStatus `json:"status,omitzero"`
	StartTime              string         `json:"startTime,omitempty"`
}

type AdGroupUpdate struct {
	Name             string         `json:"name,omitempty"`
	Status           CampaignStatus `json:"status,omitzero"`
	DefaultBidAmount *Money         `json:"defaultBidAmount,omitempty"`
}

type KeywordCreate struct {
	Text      string        `json:"text"`
	MatchType MatchType     `json:"matchType"`
	BidAmount *Money        `json:"bidAmount,omitempty"`
	Status    KeywordStatus `json:"status,omitzero"`
}

type KeywordUpdate struct {
	ID        int64         `json:"id"`
	Status    KeywordStatus `json:"status,omitzero"`
	BidAmount *Money        `json:"bidAmount,omitempty"`
}

type NegativeKeywordCreate struct {
	Text      string    `json:"text"`
	MatchType MatchType `json:"matchType"`
}

type Condition struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
}

// Where builds an EQUALS condition, or IN for more than one value.
func Where(field string, values ...string) Condition {
	op := "EQUALS"
	if len(values) > 1 {
		op = "IN"
	}
	return Condition{Field: field, Operator: op, Values: values}
}

func WhereIDs(field string, ids ...int64) Condition {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, strconv.FormatInt(id, 10))
	}
	return Where(field, values...)
}

type OrderBy struct {
	Field     string `json:"field"`
	SortOrder string `json:"sortOrder"`
}

type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type Selector struct {
	Conditions []Condition `json:"conditions,omitempty"`
	OrderBy    []OrderBy   `json:"orderBy,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Page is one result set plus the server-side total.
type Page[T any] struct {
	Items        []T
	TotalResults int
}
