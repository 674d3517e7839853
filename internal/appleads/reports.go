package appleads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var granularities = []string{"HOURLY", "DAILY", "WEEKLY", "MONTHLY"}

// ParseGranularity accepts HOURLY, DAILY, WEEKLY or MONTHLY in any case.
func ParseGranularity(raw string) (string, error) {
	g := upperTrim(raw)
	for _, known := range granularities {
		if g == known {
			return g, nil
		}
	}
	return "", fmt.Errorf("invalid granularity %q (expected one of %s)", raw, strings.Join(granularities, ", "))
}

type ReportQuery struct {
	Start       time.Time
	End         time.Time
	Granularity string
	Conditions  []Condition
}

type reportRequest struct {
	StartTime                  string   `json:"startTime"`
	EndTime                    string   `json:"endTime"`
	Granularity                string   `json:"granularity,omitempty"`
	Selector                   Selector `json:"selector"`
	TimeZone                   string   `json:"timeZone"`
	ReturnRecordsWithNoMetrics bool     `json:"returnRecordsWithNoMetrics"`
	ReturnRowTotals            bool     `json:"returnRowTotals"`
	ReturnGrandTotals          bool     `json:"returnGrandTotals"`
}

type ReportApp struct {
	AppName string `json:"appName"`
	AdamID  int64  `json:"adamId"`
}

type ReportMetadata struct {
	CampaignID         int64      `json:"campaignId,omitempty"`
	CampaignName       string     `json:"campaignName,omitempty"`
	AdGroupID          int64      `json:"adGroupId,omitempty"`
	AdGroupName        string     `json:"adGroupName,omitempty"`
	KeywordID          int64      `json:"keywordId,omitempty"`
	Keyword            string     `json:"keyword,omitempty"`
	MatchType          MatchType  `json:"matchType,omitzero"`
	BidAmount          *Money     `json:"bidAmount,omitempty"`
	SearchTermText     string     `json:"searchTermText,omitempty"`
	CountryOrRegion    string     `json:"countryOrRegion,omitempty"`
	CountriesOrRegions []string   `json:"countriesOrRegions,omitempty"`
	DailyBudget        *Money     `json:"dailyBudget,omitempty"`
	App                *ReportApp `json:"app,omitempty"`
}

type Metrics struct {
	Impressions      int64            `json:"impressions"`
	Taps             int64            `json:"taps"`
	TotalInstalls    *int64           `json:"totalInstalls,omitempty"`
	TapInstalls      *int64           `json:"tapInstalls,omitempty"`
	Installs         *int64           `json:"installs,omitempty"`
	TTR              *decimal.Decimal `json:"ttr,omitempty"`
	TotalInstallRate *decimal.Decimal `json:"totalInstallRate,omitempty"`
	ConversionRate   *decimal.Decimal `json:"conversionRate,omitempty"`
	LocalSpend       *Money           `json:"localSpend,omitempty"`
	AvgCPT           *Money           `json:"avgCPT,omitempty"`
	TotalAvgCPI      *Money           `json:"totalAvgCPI,omitempty"`
	AvgCPA           *Money           `json:"avgCPA,omitempty"`
}

// InstallCount prefers totalInstalls, then tapInstalls, then installs.
func (m Metrics) InstallCount() int64 {
	for _, v := range []*int64{m.TotalInstalls, m.TapInstalls, m.Installs} {
		if v != nil {
			return *v
		}
	}
	return 0
}

func (m Metrics) InstallRate() *decimal.Decimal {
	if m.TotalInstallRate != nil {
		return m.TotalInstallRate
	}
	return m.ConversionRate
}

func (m Metrics) CostPerInstall() *Money {
	if m.TotalAvgCPI != nil {
		return m.TotalAvgCPI
	}
	return m.AvgCPA
}

// SpendAmount is localSpend.amount, or zero.
func (m Metrics) SpendAmount() decimal.Decimal {
	if m.LocalSpend == nil {
		return decimal.Zero
	}
	return m.LocalSpend.Amount
}

type ReportRow struct {
	Metadata ReportMetadata `json:"metadata"`
	Total    *Metrics       `json:"total,omitempty"`
}

type Report struct {
	Rows        []ReportRow
	GrandTotals *Metrics
}

type reportingData struct {
	ReportingDataResponse struct {
		Row         []ReportRow `json:"row"`
		GrandTotals *struct {
			Total *Metrics `json:"total"`
		} `json:"grandTotals"`
	} `json:"reportingDataResponse"`
}

func (c *Client) CampaignReport(ctx context.Context, q ReportQuery) (Report, error) {
	return c.report(ctx, "/reports/campaigns", q)
}

func (c *Client) AdGroupReport(ctx context.Context, campaignID int64, q ReportQuery) (Report, error) {
	return c.report(ctx, fmt.Sprintf("/reports/campaigns/%d/adgroups", campaignID), q)
}

func (c *Client) KeywordReport(ctx context.Context, campaignID int64, q ReportQuery) (Report, error) {
	return c.report(ctx, fmt.Sprintf("/reports/campaigns/%d/keywords", campaignID), q)
}

// SearchTermReport covers the whole campaign when adGroupID is 0.
func (c *Client) SearchTermReport(ctx context.Context, campaignID, adGroupID int64, q ReportQuery) (Report, error) {
	if adGroupID == 0 {
		return c.report(ctx, fmt.Sprintf("/reports/campaigns/%d/searchterms", campaignID), q)
	}
	return c.report(ctx, fmt.Sprintf("/reports/campaigns/%d/adgroups/%d/searchterms", campaignID, adGroupID), q)
}

func (c *Client) report(ctx context.Context, path string, q ReportQuery) (Report, error) {
	granularity := q.Granularity
	if granularity == "" {
		granularity = "DAILY"
	}
	req := reportRequest{
		StartTime:   q.Start.Format(dateLayout),
		EndTime:     q.End.Format(dateLayout),
		Granularity: granularity,
		Selector: Selector{
			Conditions: q.Conditions,
			OrderBy:    []OrderBy{{Field: "impressions", SortOrder: "DESCENDING"}},
		},
		TimeZone:          "UTC",
		ReturnRowTotals:   true,
		ReturnGrandTotals: true,
	}

	var out Report
	offset := 0
	for {
		req.Selector.Pagination = &Pagination{Offset: offset, Limit: c.pageSize}
		data, total, err := call[json.RawMessage](ctx, c, http.MethodPost, path, req)
		if err != nil {
			return Report{}, err
		}
		var page reportingData
		if len(data) > 0 {
			if err := json.Unmarshal(data, &page); err != nil {
				return Report{}, fmt.Errorf("invalid report response from %s: %w", path, err)
			}
		}
		rows := page.ReportingDataResponse.Row
		out.Rows = append(out.Rows, rows...)
		if out.GrandTotals == nil && page.ReportingDataResponse.GrandTotals != nil {
			out.GrandTotals = page.ReportingDataResponse.GrandTotals.Total
		}
		offset += len(rows)
		if len(rows) < c.pageSize || (total > 0 && offset >= total) {
			break
		}
	}
	return out, nil
}
