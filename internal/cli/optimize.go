package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"asa-cli/internal/appleads"
	"asa-cli/internal/optimize"
	"asa-cli/internal/output"
	"asa-cli/internal/prompt"
)

const planPreviewRows = 20

// errQuit ends the interactive bid loop early.
var errQuit = errors.New("quit")

func (a *app) optimizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Bid checks, keyword bid review and market expansion",
	}
	cmd.AddCommand(a.bidCheckCommand(), a.expandCommand(), a.bidReviewCommand())
	return cmd
}

func bidCell(amount decimal.Decimal, currency string) string {
	return output.Amount(&amount, currency)
}

func (a *app) bidCheckCommand() *cobra.Command {
	var (
		threshold float64
		autoFix   bool
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "bid-check",
		Short: "Find ad groups whose default bid trails their keyword bids",
		Long: `Scans enabled campaigns for ad groups whose keywords bid, on average,
more than --threshold percent above the ad group default bid, and offers to
raise the default bid to the keyword average.`,
		Example: `  asa optimize bid-check
  asa optimize bid-check --threshold 30 --dry-run
  asa optimize bid-check --auto-fix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			result, err := optimize.ScanBidDiscrepancies(ctx, client, optimize.ScanOptions{
				Threshold: threshold,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}
			a.out.Info("Scanned %d enabled campaigns", result.Campaigns)

			found := result.Discrepancies
			if len(found) == 0 {
				if a.jsonOut() {
					return a.out.JSON(map[string]any{"discrepancies": found, "changes": 0})
				}
				a.out.Success("No bid discrepancies found above %.0f%% threshold", threshold)
				return nil
			}
			if a.jsonOut() && !autoFix {
				return a.out.JSON(map[string]any{"discrepancies": found, "changes": 0})
			}
			if !a.jsonOut() {
				a.showDiscrepancies(found)
			}
			if dryRun {
				a.out.Info("Dry run mode - no changes will be made")
				return nil
			}

			changes := 0
			for i, d := range found {
				bid, ok, err := a.chooseBid(i+1, len(found), d, autoFix)
				if errors.Is(err, errQuit) {
					break
				}
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if err := optimize.ApplyBid(ctx, client, d, bid); err != nil {
					a.logger.Debug("bid update failed", zap.Int64("ad_group_id", d.AdGroupID), zap.Error(err))
					a.out.Warning("Could not update %s: %v", d.AdGroupName, err)
					continue
				}
				changes++
				a.out.Success("Updated bid: %s → %s", bidCell(d.AdGroupBid, d.Currency), bidCell(bid, d.Currency))
			}

			if a.jsonOut() {
				return a.out.JSON(map[string]any{"discrepancies": found, "changes": changes})
			}
			a.out.Println()
			if changes == 0 {
				a.out.Info("No changes made")
				return nil
			}
			a.out.ResultPanel("Optimization Complete",
				output.F("Discrepancies found", len(found)),
				output.F("Changes made", changes),
			)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", optimize.DefaultThreshold, "Minimum difference in percent to report")
	cmd.Flags().BoolVar(&autoFix, "auto-fix", false, "Apply every suggested bid without asking")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Only show the discrepancies")
	return cmd
}

func (a *app) showDiscrepancies(found []optimize.BidDiscrepancy) {
	t := output.NewTable(fmt.Sprintf("Bid Discrepancies Found (%d ad groups)", len(found)),
		"Campaign", "Ad Group", "Ad Group Bid", "Keyword Avg", "Diff %", "Keywords")
	for _, d := range found {
		t.AddRow(
			truncate(d.CampaignName, 28),
			truncate(d.AdGroupName, 23),
			bidCell(d.AdGroupBid, d.Currency),
			bidCell(d.KeywordAvgBid, d.Currency),
			fmt.Sprintf("%+.0f%%", d.DifferencePct()),
			fmt.Sprint(d.KeywordCount),
		)
	}
	a.out.Table(t)
	a.out.Println()
}

// chooseBid decides the new bid for one discrepancy. It reports false when
// the discrepancy is skipped and errQuit when the user quits.
func (a *app) chooseBid(index, total int, d optimize.BidDiscrepancy, autoFix bool) (decimal.Decimal, bool, error) {
	suggested := d.SuggestedBid()
	if autoFix {
		return suggested, true, nil
	}
	a.out.Heading(fmt.Sprintf("── %d/%d ──", index, total))
	a.out.Printf("Campaign: %s\n", d.CampaignName)
	a.out.Printf("Ad Group: %s\n\n", d.AdGroupName)
	a.out.Printf("  Current ad group bid:  %s\n", bidCell(d.AdGroupBid, d.Currency))
	a.out.Printf("  Keyword average bid:   %s\n", bidCell(d.KeywordAvgBid, d.Currency))
	a.out.Printf("  Keyword range:         %s - %s\n", bidCell(d.KeywordMinBid, d.Currency), bidCell(d.KeywordMaxBid, d.Currency))
	a.out.Printf("  Difference:            %+.0f%%\n\n", d.DifferencePct())
	a.out.Printf("Suggested new bid: %s\n", bidCell(suggested, d.Currency))

	action, err := a.prompt.Ask("Action [apply/custom/skip/quit]", "apply")
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	switch strings.ToLower(action) {
	case "a", "apply":
		return suggested, true, nil
	case "s", "skip":
		a.out.Muted("Skipped")
		return decimal.Decimal{}, false, nil
	case "q", "quit":
		a.out.Info("Quitting...")
		return decimal.Decimal{}, false, errQuit
	case "c", "custom":
		raw, err := a.prompt.Ask(fmt.Sprintf("Enter new bid (%s)", d.Currency), "")
		if err != nil {
			return decimal.Decimal{}, false, err
		}
		bid, err := parseAmount(raw)
		if err != nil || !bid.IsPositive() {
			a.out.Warning("Invalid bid amount, skipping")
			return decimal.Decimal{}, false, nil
		}
		return bid, true, nil
	}
	a.out.Warning("Unknown action '%s', skipping", action)
	return decimal.Decimal{}, false, nil
}

func (a *app) expandCommand() *cobra.Command {
	var (
		country       string
		campaignType  string
		match         string
		name          string
		budget        decimalFlag
		dryRun        bool
		skipNegatives bool
		paused        bool
	)
	cmd := &cobra.Command{
		Use:   "expand [CAMPAIGN_ID...]",
		Short: "Copy the keywords of source campaigns into a new market",
		Long: `Creates a single-keyword ad group campaign in a target country from the
keywords that had impressions in the source campaigns over the last 90 days.
Keywords found in several sources bid the average of their source bids. Each
ad group holds one exact match keyword and excludes every other keyword as an
exact negative.

Without campaign IDs the campaigns are picked interactively from those named
"App - Country - Type - EM|BM".`,
		Example: `  asa optimize expand
  asa optimize expand --type Generic --match EM
  asa optimize expand 123456789 --country CA
  asa optimize expand 123 456 --country DE --name "My App - DE - Generic - EM" --budget 50
  asa optimize expand --country CA --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var sources []appleads.Campaign
			if len(ids) > 0 {
				for _, id := range ids {
					c, err := client.GetCampaign(ctx, id)
					if err != nil {
						a.out.Error("Error", fmt.Sprintf("Could not load campaign %d: %v", id, err))
						return errHandled
					}
					sources = append(sources, c)
				}
			} else {
				page, err := client.ListCampaigns(ctx, appleads.CampaignStatus{}, 0)
				if err != nil {
					return err
				}
				if sources, err = a.pickCampaigns(page.Items, campaignType, match); err != nil {
					return err
				}
			}
			if len(sources) == 0 {
				a.out.Error("Error", sentence(optimize.ErrNoCampaignsSelected.Error()))
				return errHandled
			}

			a.out.Println()
			a.out.Info("Selected source campaigns (%d):", len(sources))
			for _, c := range sources {
				a.out.Printf("  • %s (%s)\n", c.Name, countriesCell(c.CountriesOrRegions))
			}
			a.out.Println()

			if strings.TrimSpace(country) == "" {
				if country, err = a.prompt.Ask("Target country code (e.g., CA, DE, FR)", ""); err != nil {
					return err
				}
			}
			country = strings.ToUpper(strings.TrimSpace(country))
			if country == "" {
				return errors.New("target country is required")
			}

			keywords, err := optimize.AggregateKeywords(ctx, client, sources, optimize.AggregateOptions{
				Today:  a.today(),
				Logger: a.logger,
				OnReportError: func(c appleads.Campaign, err error) {
					a.out.Warning("Could not get report for %s: %v", c.Name, err)
				},
			})
			if err != nil {
				return err
			}
			var impressions int64
			for _, k := range keywords {
				impressions += k.Impressions
			}
			a.out.Info("Found %d keywords with %s impressions in last %d days",
				len(keywords), output.Number(impressions), optimize.LookbackDays)

			plan := optimize.BuildPlan(sources, keywords, optimize.PlanOptions{
				Country:       country,
				Name:          name,
				DailyBudget:   budget.value,
				SkipNegatives: skipNegatives,
			})
			if a.jsonOut() && dryRun {
				return a.out.JSON(plan)
			}
			if !a.jsonOut() {
				a.showCampaignPlan(plan, paused, skipNegatives)
			}
			if dryRun {
				a.out.Info("Dry run mode - no changes will be made")
				return nil
			}
			ok, err := a.prompt.Confirm("Create this campaign?", true)
			if err != nil {
				return err
			}
			if !ok {
				a.out.Info("Cancelled")
				return nil
			}

			exec := optimize.NewExecutor(client, a.logger)
			exec.OnCampaign = func(c appleads.Campaign) {
				a.out.Success("Created campaign: %s (ID: %d)", c.Name, c.ID)
				a.out.Info("Creating %d ad groups...", len(plan.AdGroups))
			}
			exec.OnAdGroup = func(i, total int, ag appleads.AdGroup) {
				a.out.Success("[%d/%d] Created ad group: %s (ID: %d)", i, total, ag.Name, ag.ID)
			}
			result, err := exec.Execute(ctx, plan, paused)
			if err != nil {
				if result.CampaignID != 0 {
					a.out.Warning("Campaign %d was left with %d of %d ad groups", result.CampaignID, result.AdGroups, len(plan.AdGroups))
				}
				return err
			}
			if result.SkippedNegatives > 0 {
				a.out.Warning("%d negative keywords could not be created", result.SkippedNegatives)
			}
			a.out.Println()
			return a.resultPanel(result, "Campaign Created Successfully",
				output.F("Campaign ID", result.CampaignID),
				output.F("Campaign Name", result.CampaignName),
				output.F("Country", result.Country),
				output.F("Status", result.Status),
				output.F("Ad Groups", result.AdGroups),
				output.F("Keywords", result.Keywords),
				output.F("Negative Keywords", result.Negatives),
			)
		},
	}
	cmd.Flags().StringVarP(&country, "country", "c", "", "Target country code (e.g. CA, DE, FR)")
	cmd.Flags().StringVarP(&campaignType, "type", "t", "", "Only offer campaigns of this type (Generic, Competitor, Brand)")
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only offer campaigns of this match type (EM or BM)")
	cmd.Flags().StringVar(&name, "name", "", "Name of the new campaign (generated when omitted)")
	cmd.Flags().Var(&budget, "budget", "Daily budget (average of the sources when omitted)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the plan without creating anything")
	cmd.Flags().BoolVar(&skipNegatives, "skip-negatives", false, "Do not add cross-negative keywords")
	cmd.Flags().BoolVarP(&paused, "paused", "p", false, "Create the campaign PAUSED")
	return cmd
}

// pickCampaigns lists the selectable campaigns and reads the user's choice.
func (a *app) pickCampaigns(campaigns []appleads.Campaign, campaignType, match string) ([]appleads.Campaign, error) {
	candidates := optimize.SelectableCampaigns(campaigns, campaignType, match)
	if len(candidates) == 0 {
		a.out.Warning("No campaigns match the naming pattern 'App - Country - Type - EM|BM'")
		return nil, nil
	}

	a.out.Println()
	t := output.NewTable("Available campaigns:", "#", "App", "Country", "Type", "Match", "Status", "ID")
	for i, c := range candidates {
		if i > 0 && (c.Parts.AppName != candidates[i-1].Parts.AppName || c.Parts.CampaignType != candidates[i-1].Parts.CampaignType) {
			t.AddDivider()
		}
		t.AddRow(
			fmt.Sprint(c.Number),
			truncate(c.Parts.AppName, 20),
			c.Parts.Country,
			c.Parts.CampaignType,
			string(c.Parts.MatchType),
			a.out.Status(c.Campaign.Status.String()),
			fmt.Sprint(c.Campaign.ID),
		)
	}
	a.out.Table(t)
	a.out.Println()
	a.out.Muted("Enter campaign numbers separated by commas, ranges (1-3), or 'all'")
	answer, err := a.prompt.Ask("Select campaigns", "all")
	if err != nil {
		return nil, err
	}
	selected, all := prompt.ParseSelection(answer, len(candidates))
	return optimize.Pick(candidates, selected, all), nil
}

func (a *app) showCampaignPlan(plan optimize.CampaignPlan, paused, skipNegatives bool) {
	status := "ENABLED"
	if paused {
		status = "PAUSED"
	}
	fields := []output.Field{
		output.F("Campaign Name", plan.Name),
		output.F("Target Country", plan.Country),
		output.F("Daily Budget", bidCell(plan.DailyBudget, plan.Currency)),
		output.F("Ad Groups", len(plan.AdGroups)),
		output.F("Status", status),
	}
	if !skipNegatives {
		fields = append(fields, output.F("Cross-Negatives", plan.NegativeCount()))
	}
	a.out.Println()
	a.out.InfoPanel("Campaign Plan", fields...)
	a.out.Println()

	t := output.NewTable("Ad Groups & Keywords (sorted by impressions):", "#", "Ad Group", "Keyword", "Bid", "Impr (90d)")
	for i, ag := range plan.AdGroups {
		if i == planPreviewRows {
			t.AddRow("...", fmt.Sprintf("... and %d more", len(plan.AdGroups)-planPreviewRows), "", "", "")
			break
		}
		t.AddRow(
			fmt.Sprint(i+1),
			truncate(ag.Name, 33),
			ag.Keyword.Text,
			bidCell(ag.Keyword.Bid, ag.Keyword.Currency),
			output.Number(ag.Keyword.Impressions),
		)
	}
	a.out.Table(t)
	a.out.Println()
}

func (a *app) bidReviewCommand() *cobra.Command {
	var (
		country        string
		days           int
		weakOnly       bool
		minImpressions int64
		limit          int
		outPath        string
	)
	cmd := &cobra.Command{
		Use:   "bid-review",
		Short: "Rate keyword bid strength from recent performance",
		Long: `Reads the keyword reports of enabled campaigns over the last --days days
(ending yesterday) and rates each keyword STRONG, MODERATE or WEAK from its
impressions and tap-through rate.`,
		Example: `  asa optimize bid-review
  asa optimize bid-review --country US --weak
  asa optimize bid-review --min-impressions 100 -o review.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			country = strings.ToUpper(strings.TrimSpace(country))
			review, err := optimize.ReviewKeywordBids(cmd.Context(), client, optimize.ReviewOptions{
				Country:        country,
				Days:           days,
				Today:          a.today(),
				MinImpressions: minImpressions,
				WeakOnly:       weakOnly,
				Logger:         a.logger,
			})
			if err != nil {
				return err
			}
			if review.Campaigns == 0 {
				if country != "" {
					a.out.Warning("No enabled campaigns found for %s", country)
				} else {
					a.out.Warning("No enabled campaigns found")
				}
				return nil
			}
			a.out.Info("Analyzing %d campaigns...", review.Campaigns)
			if review.Collected == 0 {
				a.out.Warning("No keyword data found")
				return nil
			}
			if len(review.Keywords) == 0 {
				a.out.Warning("No keywords match the specified filters")
				return nil
			}

			if outPath != "" {
				records := make([]output.Record, 0, len(review.Keywords))
				for _, k := range review.Keywords {
					records = append(records, reviewRecord(k))
				}
				if err := output.WriteCSVFile(outPath, output.Columns(optimize.ReviewColumns, nil), records); err != nil {
					return err
				}
				a.out.Success("Exported %d keywords to %s", len(review.Keywords), outPath)
				return nil
			}
			if a.jsonOut() {
				return a.out.JSON(review.Keywords)
			}
			a.showReview(review.Keywords, days, limit)
			return nil
		},
	}
	cmd.Flags().StringVarP(&country, "country", "c", "", "Only campaigns targeting this country")
	cmd.Flags().IntVarP(&days, "days", "d", optimize.DefaultReviewDays, "Days of performance to review")
	cmd.Flags().BoolVarP(&weakOnly, "weak", "w", false, "Only show keywords with weak bid strength")
	cmd.Flags().Int64Var(&minImpressions, "min-impressions", 0, "Skip keywords with fewer impressions")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum rows in the table (0 for all)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Export every keyword to a CSV file")
	return cmd
}

func reviewRecord(k optimize.KeywordBidAnalysis) output.Record {
	r := output.Record{
		"campaign_name":  k.CampaignName,
		"ad_group_name":  k.AdGroupName,
		"keyword":        k.KeywordText,
		"country":        k.Country,
		"current_bid":    k.CurrentBid,
		"currency":       k.Currency,
		"impressions":    k.Impressions,
		"taps":           k.Taps,
		"conversions":    k.Conversions,
		"spend":          k.Spend,
		"bid_strength":   string(k.Strength()),
		"recommendation": k.Recommendation(),
	}
	if k.AvgCPT != nil {
		r["avg_cpt"] = k.AvgCPT.Round(2)
	}
	if k.TTR != nil {
		r["ttr"] = *k.TTR
	}
	if k.CR != nil {
		r["cr"] = *k.CR
	}
	return r
}

func (a *app) showReview(keywords []optimize.KeywordBidAnalysis, days, limit int) {
	shown := keywords
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	t := output.NewTable(fmt.Sprintf("Keyword Bid Review (%d days)", days),
		"Keyword", "Campaign", "Country", "Bid", "Impr", "TTR", "Strength")
	for _, k := range shown {
		ttr := "—"
		if k.TTR != nil {
			ttr = output.PercentFloat(*k.TTR, 1)
		}
		strength := string(k.Strength())
		if k.Strength() == optimize.StrengthUnknown {
			strength = "?"
		}
		t.AddRow(
			truncate(k.KeywordText, 28),
			truncate(k.CampaignName, 23),
			k.Country,
			k.CurrentBid.StringFixed(2),
			output.Number(k.Impressions),
			ttr,
			a.out.Status(strength),
		)
	}
	a.out.Table(t)
	if len(shown) < len(keywords) {
		a.out.Muted("Showing %d of %d keywords. Use --limit to see more.", len(shown), len(keywords))
	}

	counts := optimize.StrengthCounts(keywords)
	a.out.Println()
	a.out.Heading("Bid Strength Summary:")
	a.out.Printf("  Strong:   %d\n", counts[optimize.StrengthStrong])
	a.out.Printf("  Moderate: %d\n", counts[optimize.StrengthModerate])
	a.out.Printf("  Weak:     %d\n", counts[optimize.StrengthWeak])
	if weak := counts[optimize.StrengthWeak]; weak > 0 {
		a.out.Println()
		a.out.Warning("%d keywords have weak bid strength - consider increasing bids", weak)
	}
}
