package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"asa-cli/internal/appleads"
	"asa-cli/internal/output"
)

var (
	metricColumns = []string{"impressions", "taps", "installs", "ttr", "conv_rate", "spend"}
	reportLabels  = map[string]string{
		"campaign":    "Campaign",
		"ad_group":    "Ad Group",
		"keyword":     "Keyword",
		"search_term": "Search Term",
		"country":     "Country",
		"ttr":         "TTR",
		"conv_rate":   "Conv Rate",
		"avg_cpt":     "Avg CPT",
		"avg_cpa":     "Avg CPA",
	}
)

// reportKind describes one report subcommand.
type reportKind struct {
	title   string
	columns []string
}

func amountOf(m *appleads.Money, display bool) any {
	if m == nil {
		return nil
	}
	if display {
		return m.Amount.StringFixed(2)
	}
	return m.Amount
}

// reportRecord flattens a row. Display records carry formatted numbers for
// tables; raw records keep numbers for JSON and CSV.
func reportRecord(row appleads.ReportRow, display bool) output.Record {
	meta := row.Metadata
	r := output.Record{
		"campaign":    meta.CampaignName,
		"ad_group":    meta.AdGroupName,
		"keyword":     meta.Keyword,
		"search_term": meta.SearchTermText,
		"country":     meta.CountryOrRegion,
	}
	if row.Total == nil {
		return r
	}
	m := row.Total
	if display {
		r["impressions"] = output.Number(m.Impressions)
		r["taps"] = output.Number(m.Taps)
		r["installs"] = output.Number(m.InstallCount())
		r["ttr"] = output.Percent(m.TTR)
		r["conv_rate"] = output.Percent(m.InstallRate())
	} else {
		r["impressions"] = m.Impressions
		r["taps"] = m.Taps
		r["installs"] = m.InstallCount()
		r["ttr"] = m.TTR
		r["conv_rate"] = m.InstallRate()
	}
	r["spend"] = amountOf(m.LocalSpend, display)
	r["avg_cpt"] = amountOf(m.AvgCPT, display)
	r["avg_cpa"] = amountOf(m.CostPerInstall(), display)
	return r
}

type reportFlags struct {
	start       string
	end         string
	granularity string
	output      string
}

func (f *reportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.start, "start", "s", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.end, "end", "e", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.granularity, "granularity", "g", "DAILY", "Time granularity (HOURLY, DAILY, WEEKLY, MONTHLY)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Save to file (.json or .csv)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (f *reportFlags) query(conditions ...appleads.Condition) (appleads.ReportQuery, error) {
	start, err := parseDate(f.start)
	if err != nil {
		return appleads.ReportQuery{}, err
	}
	end, err := parseDate(f.end)
	if err != nil {
		return appleads.ReportQuery{}, err
	}
	granularity, err := appleads.ParseGranularity(f.granularity)
	if err != nil {
		return appleads.ReportQuery{}, err
	}
	return appleads.ReportQuery{Start: start, End: end, Granularity: granularity, Conditions: conditions}, nil
}

func (a *app) reportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Performance reports for campaigns, ad groups, keywords and search terms",
	}
	cmd.AddCommand(
		a.campaignReportCommand(),
		a.adGroupReportCommand(),
		a.keywordReportCommand(),
		a.searchTermReportCommand(),
	)
	return cmd
}

func (a *app) campaignReportCommand() *cobra.Command {
	var (
		flags       reportFlags
		campaignIDs []int64
	)
	kind := reportKind{title: "Campaign", columns: append([]string{"campaign"}, metricColumns...)}
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Campaign performance report",
		Example: `  asa reports campaigns --start 2026-01-01 --end 2026-01-31
  asa reports campaigns -s 2026-01-01 -e 2026-01-31 --campaign 123 -o report.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var conditions []appleads.Condition
			if len(campaignIDs) > 0 {
				conditions = append(conditions, appleads.WhereIDs("campaignId", campaignIDs...))
			}
			q, err := flags.query(conditions...)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			report, err := client.CampaignReport(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.showReport(kind, flags, report)
		},
	}
	flags.bind(cmd)
	cmd.Flags().Int64SliceVarP(&campaignIDs, "campaign", "c", nil, "Filter by campaign ID (repeatable)")
	return cmd
}

func (a *app) adGroupReportCommand() *cobra.Command {
	var flags reportFlags
	kind := reportKind{title: "Ad Group", columns: append([]string{"ad_group"}, metricColumns...)}
	cmd := &cobra.Command{
		Use:   "ad-groups CAMPAIGN_ID",
		Short: "Ad group performance report for one campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			q, err := flags.query()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			report, err := client.AdGroupReport(cmd.Context(), campaignID, q)
			if err != nil {
				return err
			}
			return a.showReport(kind, flags, report)
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *app) keywordReportCommand() *cobra.Command {
	var (
		flags      reportFlags
		adGroupIDs []int64
	)
	kind := reportKind{title: "Keyword", columns: append(append([]string{"keyword"}, metricColumns...), "avg_cpt")}
	cmd := &cobra.Command{
		Use:   "keywords CAMPAIGN_ID",
		Short: "Keyword performance report for one campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			var conditions []appleads.Condition
			if len(adGroupIDs) > 0 {
				conditions = append(conditions, appleads.WhereIDs("adGroupId", adGroupIDs...))
			}
			q, err := flags.query(conditions...)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			report, err := client.KeywordReport(cmd.Context(), campaignID, q)
			if err != nil {
				return err
			}
			return a.showReport(kind, flags, report)
		},
	}
	flags.bind(cmd)
	cmd.Flags().Int64SliceVarP(&adGroupIDs, "ad-group", "a", nil, "Filter by ad group ID (repeatable)")
	return cmd
}

func (a *app) searchTermReportCommand() *cobra.Command {
	var (
		flags     reportFlags
		adGroupID int64
	)
	kind := reportKind{title: "Search Term", columns: append([]string{"search_term"}, metricColumns...)}
	cmd := &cobra.Command{
		Use:     "search-terms CAMPAIGN_ID",
		Aliases: []string{"searchterms"},
		Short:   "Search term report for a campaign or one of its ad groups",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			q, err := flags.query()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			report, err := client.SearchTermReport(cmd.Context(), campaignID, adGroupID, q)
			if err != nil {
				return err
			}
			return a.showReport(kind, flags, report)
		},
	}
	flags.bind(cmd)
	cmd.Flags().Int64VarP(&adGroupID, "ad-group", "a", 0, "Limit to one ad group")
	return cmd
}

func (a *app) showReport(kind reportKind, flags reportFlags, report appleads.Report) error {
	if len(report.Rows) == 0 {
		a.out.Warning("No data found for the specified period")
		return nil
	}
	cols := output.Columns(kind.columns, reportLabels)

	if flags.output != "" {
		records := make([]output.Record, 0, len(report.Rows))
		for _, row := range report.Rows {
			records = append(records, reportRecord(row, false))
		}
		if err := a.saveRecords(flags.output, cols, records); err != nil {
			return err
		}
		a.out.Success("Report saved to %s", flags.output)
		return nil
	}

	display := a.out.Format == output.FormatTable
	records := make([]output.Record, 0, len(report.Rows))
	for _, row := range report.Rows {
		records = append(records, reportRecord(row, display))
	}
	title := fmt.Sprintf("%s Report (%s to %s)", kind.title, flags.startDate(), flags.endDate())
	if err := a.out.Data(title, cols, records); err != nil {
		return err
	}
	if display && report.GrandTotals != nil {
		a.grandTotals(*report.GrandTotals)
	}
	return nil
}

func (f reportFlags) startDate() string { return normalizeDate(f.start) }
func (f reportFlags) endDate() string   { return normalizeDate(f.end) }

func normalizeDate(raw string) string {
	t, err := parseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(time.DateOnly)
}

func (a *app) grandTotals(m appleads.Metrics) {
	fields := []output.Field{
		output.F("Impressions", output.Number(m.Impressions)),
		output.F("Taps", output.Number(m.Taps)),
		output.F("Installs", output.Number(m.InstallCount())),
	}
	if m.TTR != nil {
		fields = append(fields, output.F("TTR", output.Percent(m.TTR)))
	}
	if rate := m.InstallRate(); rate != nil {
		fields = append(fields, output.F("Conv Rate", output.Percent(rate)))
	}
	if m.LocalSpend != nil {
		fields = append(fields, output.F("Total Spend", m.LocalSpend.String()))
	}
	a.out.Println()
	a.out.InfoPanel("Grand Totals", fields...)
}
