package appleads

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ReportStateCompleted = "COMPLETED"
	ReportStateFailed    = "FAILED"

	maxReportNameLength = 50
)

type CustomReport struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Granularity string `json:"granularity"`
	DownloadURI string `json:"downloadUri,omitempty"`
	State       string `json:"state"`
	DateRange   string `json:"dateRange,omitempty"`
}

type ImpressionShareQuery struct {
	Start     time.Time
	End       time.Time
	Countries []string
	AdamIDs   []int64
}

type customReportRequest struct {
	Name        string   `json:"name"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Granularity string   `json:"granularity"`
	Selector    Selector `json:"selector"`
}

// CreateImpressionShareReport starts a daily impression share custom report.
func (c *Client) CreateImpressionShareReport(ctx context.Context, q ImpressionShareQuery) (CustomReport, error) {
	var conditions []Condition
	countries := make([]string, 0, len(q.Countries))
	for _, cc := range q.Countries {
		if cc = upperTrim(cc); cc != "" {
			countries = append(countries, cc)
		}
	}
	if len(countries) > 0 {
		conditions = append(conditions, Condition{Field: "countryOrRegion", Operator: "IN", Values: countries})
	}
	if len(q.AdamIDs) > 0 {
		cond := WhereIDs("adamId", q.AdamIDs...)
		cond.Operator = "IN"
		conditions = append(conditions, cond)
	}

	name := "asa-cli-is-" + uuid.New().String()
	if len(name) > maxReportNameLength {
		name = name[:maxReportNameLength]
	}
	body := customReportRequest{
		Name:        name,
		StartTime:   q.Start.Format(dateLayout),
		EndTime:     q.End.Format(dateLayout),
		Granularity: "DAILY",
		Selector:    Selector{Conditions: conditions},
	}
	report, _, err := call[CustomReport](ctx, c, http.MethodPost, "/custom-reports", body)
	if err != nil {
		return CustomReport{}, err
	}
	c.logger.Debug("custom report created", zap.Int64("reportId", report.ID), zap.String("name", name))
	return report, nil
}

func (c *Client) GetCustomReport(ctx context.Context, reportID int64) (CustomReport, error) {
	report, _, err := call[CustomReport](ctx, c, http.MethodGet, fmt.Sprintf("/custom-reports/%d", reportID), nil)
	return report, err
}

// WaitForCustomReport polls the report state until it completes, fails, or
// the poll limit passes. Rate limited responses keep the poll going.
func (c *Client) WaitForCustomReport(ctx context.Context, reportID int64) (CustomReport, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollLimit)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(c.pollEvery), 1)
	lastState := ""
	for {
		if err := limiter.Wait(pollCtx); err != nil {
			if ctx.Err() != nil {
				return CustomReport{}, ctx.Err()
			}
			return CustomReport{}, fmt.Errorf("custom report %d did not complete within %s (state=%s)", reportID, c.pollLimit, lastState)
		}
		report, err := c.GetCustomReport(pollCtx, reportID)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
				c.logger.Debug("custom report poll rate limited", zap.Int64("reportId", reportID))
				continue
			}
			if ctx.Err() == nil && pollCtx.Err() != nil {
				return CustomReport{}, fmt.Errorf("custom report %d did not complete within %s (state=%s)", reportID, c.pollLimit, lastState)
			}
			return CustomReport{}, err
		}
		lastState = upperTrim(report.State)
		c.logger.Debug("custom report state", zap.Int64("reportId", reportID), zap.String("state", lastState))
		switch lastState {
		case ReportStateCompleted:
			if strings.TrimSpace(report.DownloadURI) == "" {
				return CustomReport{}, fmt.Errorf("custom report %d completed without a downloadUri", reportID)
			}
			return report, nil
		case ReportStateFailed:
			return CustomReport{}, fmt.Errorf("custom report %d failed", reportID)
		}
	}
}

// DownloadCustomReport fetches the CSV behind a completed report.
func (c *Client) DownloadCustomReport(ctx context.Context, downloadURI string) ([]byte, error) {
	auth, err := c.auth(ctx)
	if err != nil {
		return nil, err
	}
	validated, err := parseAndValidateDownloadURI(downloadURI, c.baseURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, validated.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+auth.accessToken)
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// parseAndValidateDownloadURI accepts https URIs on apple.com hosts, or URIs
// on the configured API host itself. Relative URIs resolve against apiBase.
func parseAndValidateDownloadURI(raw, apiBase string) (*url.URL, error) {
	trimmed := normalizeDownloadURIRaw(raw)
	if trimmed == "" {
		return nil, errors.New("custom report download URI is empty")
	}
	base, err := url.Parse(apiBase)
	if err != nil || base.Host == "" {
		return nil, errors.New("API base URL is invalid")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.New("custom report download URI is invalid")
	}
	if !parsed.IsAbs() && parsed.Host == "" {
		if !strings.HasPrefix(trimmed, "/") {
			return nil, errors.New("custom report download URI is invalid")
		}
		parsed = (&url.URL{Scheme: base.Scheme, Host: base.Host}).ResolveReference(parsed)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = base.Scheme
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, errors.New("custom report download URI is missing host")
	}
	if strings.EqualFold(parsed.Scheme, base.Scheme) && strings.EqualFold(parsed.Host, base.Host) {
		return parsed, nil
	}
	if !strings.EqualFold(parsed.Scheme, "https") {
		return nil, errors.New("custom report download URI must use https")
	}
	if !isTrustedAppleHost(host) {
		return nil, errors.New("custom report download URI host is not trusted")
	}
	return parsed, nil
}

func normalizeDownloadURIRaw(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if unquoted, err := strconv.Unquote(trimmed); err == nil {
		trimmed = strings.TrimSpace(unquoted)
	}
	trimmed = strings.Trim(trimmed, `"'`)
	trimmed = strings.ReplaceAll(trimmed, `\/`, `/`)
	return strings.TrimSpace(trimmed)
}

func isTrustedAppleHost(host string) bool {
	return host == "apple.com" || strings.HasSuffix(host, ".apple.com")
}
