package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"asa-cli/internal/appleads"
	"asa-cli/internal/impressionshare"
	"asa-cli/internal/output"
)

var (
	analyzeExportColumns   = []string{"search_term", "country", "low_share", "high_share", "rank", "popularity", "date", "app_name"}
	reportExportColumns    = []string{"date", "search_term", "country", "low_share", "high_share", "rank", "popularity", "app_name", "adam_id"}
	correlateExportColumns = []string{
		"search_term", "country", "app_name", "low_share", "high_share", "rank", "popularity",
		"campaign_name", "ad_group_name", "keyword_text", "current_bid", "currency",
	}
)

func optionalFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func shareRecord(r impressionshare.Row) output.Record {
	return output.Record{
		"date":        r.Date,
		"search_term": r.SearchTerm,
		"country":     r.Country,
		"low_share":   optionalFloat(r.LowShare),
		"high_share":  optionalFloat(r.HighShare),
		"rank":        r.Rank,
		"popularity":  optionalInt(r.SearchPopularity),
		"app_name":    r.AppName,
		"adam_id":     r.AdamID,
	}
}

func (a *app) impressionShareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "impression-share",
		Aliases: []string{"share"},
		Short:   "Impression share of search terms from custom reports",
		Long: `Impression share is the fraction of the impressions available for a search
term that your ads won, reported as a range such as 10-25%. Reports cover at
most 30 days ending yesterday.`,
	}
	cmd.AddCommand(
		a.shareAnalyzeCommand(),
		a.shareReportCommand(),
		a.shareSummaryCommand(),
		a.shareCorrelateCommand(),
	)
	return cmd
}

// fetchShare runs an impression share report over the last days days.
func (a *app) fetchShare(cmd *cobra.Command, client *appleads.Client, days int, countries ...string) ([]impressionshare.Row, error) {
	start, end, capped := impressionshare.Window(a.today(), days)
	if capped {
		a.out.Warning("Maximum lookback is %d days, using %d", impressionshare.MaxDays, impressionshare.MaxDays)
	}
	return impressionshare.Fetch(cmd.Context(), client, appleads.ImpressionShareQuery{
		Start:     start,
		End:       end,
		Countries: countries,
	}, a.logger)
}

func countryFilter(country string) []string {
	if c := strings.ToUpper(strings.TrimSpace(country)); c != "" {
		return []string{c}
	}
	return nil
}

// minShareFlag reads --min-share only when the user set it.
func minShareFlag(cmd *cobra.Command, value float64) *float64 {
	if !cmd.Flags().Changed("min-share") {
		return nil
	}
	return &value
}

func (a *app) shareAnalyzeCommand() *cobra.Command {
	var (
		days     int
		country  string
		minShare float64
		search   string
		appName  string
		limit    int
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Search terms ranked by impression share, lowest first",
		Example: `  asa impression-share analyze --days 14
  asa impression-share analyze --country US --min-share 30
  asa impression-share analyze --search calculator --output share.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			rows, err := a.fetchShare(cmd, client, days, countryFilter(country)...)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				a.out.Warning("No impression share data available for the selected period")
				return nil
			}
			a.out.Success("Retrieved %d records", len(rows))

			data := impressionshare.Analyze(rows, impressionshare.AnalyzeOptions{
				App:      appName,
				Search:   search,
				MinShare: minShareFlag(cmd, minShare),
			})
			if len(data) == 0 {
				a.out.Warning("No search terms match the specified filters")
				return nil
			}

			if outPath != "" {
				if err := a.exportShare(outPath, analyzeExportColumns, data); err != nil {
					return err
				}
			}
			if a.jsonOut() {
				return a.out.JSON(data)
			}
			a.showShareTable(data, limit, "Use --limit or --output to see all.")

			buckets := impressionshare.CountBuckets(data)
			a.out.Println()
			a.out.Printf("Total unique search terms: %d\n", len(data))
			a.out.Printf("  Low share (<30%%): %d - %s\n", buckets.Low, a.out.Styles().Error.Render("bid increase suggested"))
			a.out.Printf("  Medium share (30-50%%): %d - %s\n", buckets.Mid, a.out.Styles().Warning.Render("consider increase"))
			a.out.Printf("  High share (50%%+): %d - %s\n", buckets.High, a.out.Styles().Success.Render("performing well"))
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", impressionshare.DefaultDays, "Days to analyze (max 30)")
	cmd.Flags().StringVarP(&country, "country", "c", "", "Only this country code")
	cmd.Flags().Float64Var(&minShare, "min-share", 0, "Only terms whose share is below this percentage")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search term contains")
	cmd.Flags().StringVarP(&appName, "app", "a", "", "App name contains")
	cmd.Flags().IntVarP(&limit, "limit", "l", 100, "Maximum rows to display (0 for all)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Export to a CSV file")
	return cmd
}

func (a *app) exportShare(path string, columns []string, rows []impressionshare.Row) error {
	records := make([]output.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, shareRecord(r))
	}
	if err := output.WriteCSVFile(path, output.Columns(columns, nil), records); err != nil {
		a.out.Error("Export failed", err.Error())
		return errHandled
	}
	a.out.Success("Exported %d rows to %s", len(rows), path)
	return nil
}

func (a *app) shareCell(r impressionshare.Row) string {
	styles := a.out.Styles()
	switch r.Bucket() {
	case impressionshare.BucketLow:
		return styles.Error.Render(r.ShareRange())
	case impressionshare.BucketMid:
		return styles.Warning.Render(r.ShareRange())
	}
	return styles.Success.Render(r.ShareRange())
}

func (a *app) showShareTable(rows []impressionshare.Row, limit int, hint string) {
	shown := rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	t := output.NewTable("Impression Share Analysis", "App", "Search Term", "Country", "Share", "Rank", "Pop", "Date")
	for _, r := range shown {
		t.AddRow(
			truncate(r.AppName, 25),
			truncate(r.SearchTerm, 35),
			r.Country,
			a.shareCell(r),
			r.RankDisplay(),
			r.PopularityDisplay(),
			r.Date,
		)
	}
	a.out.Table(t)
	if len(shown) < len(rows) {
		a.out.Info("Showing %d of %d results. %s", len(shown), len(rows), hint)
	}
}

func (a *app) shareReportCommand() *cobra.Command {
	var (
		days    int
		country string
		outPath string
	)
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Every daily impression share row for the period",
		Example: `  asa impression-share report --days 14 --output share_report.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			rows, err := a.fetchShare(cmd, client, days, countryFilter(country)...)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				a.out.Warning("No data available")
				return nil
			}
			a.out.Success("Report generated with %d records", len(rows))
			if outPath != "" {
				return a.exportShare(outPath, reportExportColumns, rows)
			}
			if a.jsonOut() {
				return a.out.JSON(rows)
			}
			a.showShareTable(rows, 100, "Use --output to see all.")
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", impressionshare.DefaultDays, "Days to report (max 30)")
	cmd.Flags().StringVarP(&country, "country", "c", "", "Only this country code")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Save to a CSV file")
	return cmd
}

func (a *app) shareSummaryCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:     "summary",
		Short:   "Impression share per app and country",
		Example: `  asa impression-share summary --days 14`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			rows, err := a.fetchShare(cmd, client, days)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				a.out.Warning("No data available")
				return nil
			}
			summary := impressionshare.Summarize(rows)
			if a.jsonOut() {
				return a.out.JSON(summary)
			}

			shownDays := min(max(days, 1), impressionshare.MaxDays)
			t := output.NewTable(fmt.Sprintf("Impression Share Summary (%d days)", shownDays),
				"App", "Country", "Search Terms", "Avg Share", "<30%", "30-50%", ">50%")
			for i, as := range summary.Apps {
				if i > 0 {
					t.AddDivider()
				}
				for j, cs := range as.Countries {
					name := ""
					if j == 0 {
						name = truncate(as.AppName, 25)
					}
					t.AddRow(
						name,
						cs.Country,
						strconv.Itoa(cs.SearchTerms),
						output.PercentFloat(cs.AvgShare, 0),
						strconv.Itoa(cs.Low),
						strconv.Itoa(cs.Mid),
						strconv.Itoa(cs.High),
					)
				}
			}
			a.out.Table(t)
			a.out.Println()
			a.out.Info("Total: %d search terms across %d apps and %d countries",
				summary.SearchTerms, len(summary.Apps), summary.Countries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", impressionshare.DefaultDays, "Days to summarize (max 30)")
	return cmd
}

func correlatedRecord(c impressionshare.CorrelatedTerm) output.Record {
	r := shareRecord(c.Row)
	if c.Keyword != nil {
		r["campaign_name"] = c.Keyword.CampaignName
		r["ad_group_name"] = c.Keyword.AdGroupName
		r["keyword_text"] = c.Keyword.KeywordText
		r["current_bid"] = c.Keyword.Bid
		r["currency"] = c.Keyword.Currency
	}
	return r
}

func (a *app) shareCorrelateCommand() *cobra.Command {
	var (
		days          int
		country       string
		minShare      float64
		unmatchedOnly bool
		matchedOnly   bool
		limit         int
		outPath       string
	)
	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Match search terms to your keywords and their bids",
		Long: `Matches the search terms of one country's impression share report to the
keywords of enabled campaigns targeting that country. Matched terms with low
share are bid increase candidates; unmatched terms are keyword opportunities.`,
		Example: `  asa impression-share correlate --country US
  asa impression-share correlate -c AU --min-share 30
  asa impression-share correlate -c US --unmatched
  asa impression-share correlate -c US --matched --min-share 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			country = strings.ToUpper(strings.TrimSpace(country))
			if country == "" {
				a.out.Error("Error", "Country is required for correlation. Use --country/-c")
				return errHandled
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			rows, err := a.fetchShare(cmd, client, days, country)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				a.out.Warning("No impression share data available for %s", country)
				return nil
			}
			a.out.Success("Retrieved %d impression share records", len(rows))

			index, err := impressionshare.BuildKeywordIndex(cmd.Context(), client, country, a.logger)
			if err != nil {
				return err
			}
			a.out.Info("Indexed %d keywords from %d unique terms", index.Size(), len(index))

			terms := impressionshare.Correlate(rows, index, country, impressionshare.CorrelateOptions{
				MinShare:      minShareFlag(cmd, minShare),
				UnmatchedOnly: unmatchedOnly,
				MatchedOnly:   matchedOnly,
			})
			if len(terms) == 0 {
				a.out.Warning("No search terms match the specified filters")
				return nil
			}

			if outPath != "" {
				records := make([]output.Record, 0, len(terms))
				for _, t := range terms {
					records = append(records, correlatedRecord(t))
				}
				if err := output.WriteCSVFile(outPath, output.Columns(correlateExportColumns, nil), records); err != nil {
					a.out.Error("Export failed", err.Error())
					return errHandled
				}
				a.out.Success("Exported %d rows to %s", len(terms), outPath)
			}
			if a.jsonOut() {
				return a.out.JSON(terms)
			}
			a.showCorrelation(terms, country, limit)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", impressionshare.DefaultDays, "Days to analyze (max 30)")
	cmd.Flags().StringVarP(&country, "country", "c", "", "Country code (required)")
	cmd.Flags().Float64Var(&minShare, "min-share", 0, "Only terms whose share is below this percentage")
	cmd.Flags().BoolVarP(&unmatchedOnly, "unmatched", "u", false, "Only terms without a matching keyword")
	cmd.Flags().BoolVarP(&matchedOnly, "matched", "m", false, "Only terms with a matching keyword")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum rows to display (0 for all)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Export to a CSV file")
	return cmd
}

func (a *app) showCorrelation(terms []impressionshare.CorrelatedTerm, country string, limit int) {
	shown := terms
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	styles := a.out.Styles()
	t := output.NewTable("Impression Share Correlation - "+country, "Search Term", "Share", "Campaign", "Keyword", "Bid", "Pop")
	for _, term := range shown {
		campaign, keyword, bid := styles.Muted.Render("Not matched"), "", "—"
		if term.Keyword != nil {
			campaign = truncate(term.Keyword.CampaignName, 25)
			keyword = truncate(term.Keyword.KeywordText, 20)
			bid = bidCell(term.Keyword.Bid, term.Keyword.Currency)
		}
		t.AddRow(
			truncate(term.SearchTerm, 30),
			a.shareCell(term.Row),
			campaign,
			keyword,
			bid,
			term.PopularityDisplay(),
		)
	}
	a.out.Table(t)
	if len(shown) < len(terms) {
		a.out.Info("Showing %d of %d results. Use --limit 0 to see all.", len(shown), len(terms))
	}

	matched, unmatched, lowMatched := impressionshare.CorrelationCounts(terms)
	a.out.Println()
	a.out.Printf("Total search terms: %d\n", len(terms))
	a.out.Printf("  Matched to keywords: %d\n", matched)
	a.out.Printf("  Unmatched (opportunities): %d\n", unmatched)
	if lowMatched > 0 {
		a.out.Println()
		a.out.Warning("%d matched keywords have <30%% share - consider bid increases", lowMatched)
	}
}
