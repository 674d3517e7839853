package impressionshare

import (
	"context"

	"go.uber.org/zap"

	"asa-cli/internal/appleads"
)

// ReportSource runs an impression share custom report end to end.
type ReportSource interface {
	CreateImpressionShareReport(ctx context.Context, q appleads.ImpressionShareQuery) (appleads.CustomReport, error)
	WaitForCustomReport(ctx context.Context, reportID int64) (appleads.CustomReport, error)
	DownloadCustomReport(ctx context.Context, downloadURI string) ([]byte, error)
}

// Fetch creates the report, waits for it to complete and parses the CSV.
func Fetch(ctx context.Context, api ReportSource, q appleads.ImpressionShareQuery, logger *zap.Logger) ([]Row, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	report, err := api.CreateImpressionShareReport(ctx, q)
	if err != nil {
		return nil, err
	}
	report, err = api.WaitForCustomReport(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	data, err := api.DownloadCustomReport(ctx, report.DownloadURI)
	if err != nil {
		return nil, err
	}
	rows, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("impression share rows", zap.Int64("report_id", report.ID), zap.Int("rows", len(rows)))
	return rows, nil
}
