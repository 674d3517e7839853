package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"asa-cli/internal/appleads"
	"asa-cli/internal/output"
)

var (
	campaignColumns = []string{"id", "name", "status", "serving_status", "daily_budget", "countries"}
	campaignLabels  = map[string]string{
		"id":             "ID",
		"serving_status": "Serving",
		"daily_budget":   "Daily Budget",
		"spend_7d":       "Spend (7d)",
	}
)

func campaignRecord(c appleads.Campaign) output.Record {
	return output.Record{
		"id":             c.ID,
		"name":           c.Name,
		"status":         c.Status.String(),
		"serving_status": c.ServingStatus.String(),
		"daily_budget":   money(c.DailyBudgetAmount),
		"countries":      countriesCell(c.CountriesOrRegions),
	}
}

// countriesCell shows at most three storefronts.
func countriesCell(countries []string) string {
	if len(countries) <= 3 {
		return strings.Join(countries, ", ")
	}
	return strings.Join(countries[:3], ", ") + "..."
}

func (a *app) campaignsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaigns",
		Aliases: []string{"campaign"},
		Short:   "List and manage campaigns",
	}
	cmd.AddCommand(
		a.campaignsListCommand(),
		a.campaignsGetCommand(),
		a.campaignStatusCommand("pause", "paused", appleads.StatusPaused),
		a.campaignStatusCommand("enable", "enabled", appleads.StatusEnabled),
		a.campaignsSetBudgetCommand(),
		a.campaignsDeleteCommand(),
	)
	return cmd
}

func (a *app) campaignsListCommand() *cobra.Command {
	var (
		status    string
		all       bool
		limit     int
		withSpend bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns (enabled only unless --all or --status)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := appleads.StatusEnabled
			switch {
			case all:
				filter = appleads.CampaignStatus{}
			case status != "":
				parsed, err := appleads.ParseCampaignStatus(status)
				if err != nil {
					return err
				}
				filter = parsed
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			page, err := client.ListCampaigns(ctx, filter, limit)
			if err != nil {
				return err
			}
			if len(page.Items) == 0 && !a.jsonOut() {
				a.out.Warning("No campaigns found")
				return nil
			}

			keys := campaignColumns
			records := make([]output.Record, 0, len(page.Items))
			for _, c := range page.Items {
				records = append(records, campaignRecord(c))
			}
			if withSpend {
				keys = []string{"id", "name", "status", "serving_status", "daily_budget", "spend_7d", "countries"}
				spend, err := a.weeklySpend(cmd, client)
				if err != nil {
					a.logger.Debug("spend lookup failed", zap.Error(err))
					a.out.Warning("Could not load spend data: %v", err)
				}
				for i, c := range page.Items {
					records[i]["spend_7d"] = spend[c.ID]
				}
			}

			label := "all"
			if filter.IsSet() {
				label = strings.ToLower(filter.String())
			}
			title := fmt.Sprintf("Campaigns (%d %s)", len(page.Items), label)
			return a.out.Data(title, output.Columns(keys, campaignLabels), records)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (ENABLED, PAUSED)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include campaigns of every status")
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultListLimit, "Maximum number of campaigns")
	cmd.Flags().BoolVarP(&withSpend, "with-spend", "w", false, "Add spend over the last 7 days")
	return cmd
}

// weeklySpend maps campaign id to "12.50 USD" spent over the last 7 days.
func (a *app) weeklySpend(cmd *cobra.Command, client *appleads.Client) (map[int64]string, error) {
	today := a.today()
	report, err := client.CampaignReport(cmd.Context(), appleads.ReportQuery{
		Start:       today.AddDate(0, 0, -7),
		End:         today,
		Granularity: "DAILY",
	})
	if err != nil {
		return map[int64]string{}, err
	}
	spend := map[int64]string{}
	for _, row := range report.Rows {
		if row.Total != nil && row.Total.LocalSpend != nil {
			spend[row.Metadata.CampaignID] = row.Total.LocalSpend.String()
		}
	}
	return spend, nil
}

func (a *app) campaignsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CAMPAIGN_ID",
		Short: "Show one campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			campaign, err := client.GetCampaign(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOut() {
				return a.out.JSON(campaign)
			}
			return a.out.Data(campaign.Name, output.Columns(campaignColumns, campaignLabels), []output.Record{campaignRecord(campaign)})
		},
	}
}

func (a *app) campaignStatusCommand(verb, past string, status appleads.CampaignStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " CAMPAIGN_ID",
		Short: fmt.Sprintf("Set a campaign to %s", status.String()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			campaign, err := client.UpdateCampaign(cmd.Context(), id, appleads.CampaignUpdate{Status: status})
			if err != nil {
				return err
			}
			return a.done(campaign, "Campaign '%s' %s", firstNonEmptyString(campaign.Name, args[0]), past)
		},
	}
}

func (a *app) campaignsSetBudgetCommand() *cobra.Command {
	var (
		daily    decimalFlag
		total    decimalFlag
		currency string
	)
	cmd := &cobra.Command{
		Use:   "set-budget CAMPAIGN_ID",
		Short: "Change the daily or total budget of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			if daily.value == nil && total.value == nil {
				a.out.Warning("Specify at least --daily or --total budget")
				return errHandled
			}
			update := appleads.CampaignUpdate{}
			if daily.value != nil {
				m := appleads.NewMoney(*daily.value, currency)
				update.DailyBudgetAmount = &m
			}
			if total.value != nil {
				m := appleads.NewMoney(*total.value, currency)
				update.BudgetAmount = &m
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			campaign, err := client.UpdateCampaign(cmd.Context(), id, update)
			if err != nil {
				return err
			}
			return a.resultPanel(campaign, "Budget Updated",
				output.F("Campaign", firstNonEmptyString(campaign.Name, args[0])),
				output.F("Daily Budget", firstNonEmptyString(money(campaign.DailyBudgetAmount), "-")),
				output.F("Total Budget", firstNonEmptyString(money(campaign.BudgetAmount), "-")),
			)
		},
	}
	cmd.Flags().VarP(&daily, "daily", "d", "New daily budget")
	cmd.Flags().VarP(&total, "total", "t", "New total budget")
	cmd.Flags().StringVarP(&currency, "currency", "c", "USD", "Budget currency")
	return cmd
}

func (a *app) campaignsDeleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete CAMPAIGN_ID",
		Short: "Delete a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			campaign, err := client.GetCampaign(ctx, id)
			if err != nil {
				return err
			}
			ok, err := a.confirmed(force, fmt.Sprintf("Are you sure you want to delete campaign '%s'?", campaign.Name))
			if err != nil || !ok {
				return err
			}
			if err := client.DeleteCampaign(ctx, id); err != nil {
				return err
			}
			return a.done(map[string]any{"ok": true, "deleted": id}, "Campaign '%s' deleted", campaign.Name)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
