package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"asa-cli/internal/appleads"
	"asa-cli/internal/output"
)

var (
	adGroupColumns = []string{"id", "name", "status", "serving_status", "default_bid", "search_match"}
	adGroupLabels  = map[string]string{
		"id":             "ID",
		"serving_status": "Serving",
		"default_bid":    "Default Bid",
		"search_match":   "Search Match",
	}
)

func adGroupRecord(ag appleads.AdGroup) output.Record {
	return output.Record{
		"id":             ag.ID,
		"name":           ag.Name,
		"status":         ag.Status.String(),
		"serving_status": ag.ServingStatus.String(),
		"default_bid":    money(ag.DefaultBidAmount),
		"search_match":   ag.AutomatedKeywordsOptIn.String(),
	}
}

func (a *app) adGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ad-groups",
		Aliases: []string{"adgroups"},
		Short:   "List and manage ad groups",
	}
	cmd.AddCommand(
		a.adGroupsListCommand(),
		a.adGroupsGetCommand(),
		a.adGroupStatusCommand("pause", "paused", appleads.StatusPaused),
		a.adGroupStatusCommand("enable", "enabled", appleads.StatusEnabled),
		a.adGroupsSetBidCommand(),
		a.adGroupsDeleteCommand(),
	)
	return cmd
}

func (a *app) adGroupsListCommand() *cobra.Command {
	var (
		status string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list CAMPAIGN_ID",
		Short: "List the ad groups of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			filter, err := optionalStatus(status)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			page, err := client.ListAdGroups(cmd.Context(), campaignID, filter, limit)
			if err != nil {
				return err
			}
			if len(page.Items) == 0 && !a.jsonOut() {
				a.out.Warning("No ad groups found")
				return nil
			}
			records := make([]output.Record, 0, len(page.Items))
			for _, ag := range page.Items {
				records = append(records, adGroupRecord(ag))
			}
			title := fmt.Sprintf("Ad Groups (%d total)", len(page.Items))
			return a.out.Data(title, output.Columns(adGroupColumns, adGroupLabels), records)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (ENABLED, PAUSED)")
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultListLimit, "Maximum number of ad groups")
	return cmd
}

func (a *app) adGroupsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CAMPAIGN_ID AD_GROUP_ID",
		Short: "Show one ad group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "ad group ID")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ag, err := client.GetAdGroup(cmd.Context(), ids[0], ids[1])
			if err != nil {
				return err
			}
			if a.jsonOut() {
				return a.out.JSON(ag)
			}
			return a.out.Data(ag.Name, output.Columns(adGroupColumns, adGroupLabels), []output.Record{adGroupRecord(ag)})
		},
	}
}

func (a *app) adGroupStatusCommand(verb, past string, status appleads.CampaignStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " CAMPAIGN_ID AD_GROUP_ID",
		Short: fmt.Sprintf("Set an ad group to %s", status.String()),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "ad group ID")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ag, err := client.UpdateAdGroup(cmd.Context(), ids[0], ids[1], appleads.AdGroupUpdate{Status: status})
			if err != nil {
				return err
			}
			return a.done(ag, "Ad group '%s' %s", firstNonEmptyString(ag.Name, args[1]), past)
		},
	}
}

func (a *app) adGroupsSetBidCommand() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "set-bid CAMPAIGN_ID AD_GROUP_ID BID",
		Short: "Change the default bid of an ad group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:2], "campaign ID", "ad group ID")
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			bid := appleads.NewMoney(amount, currency)
			ag, err := client.UpdateAdGroup(cmd.Context(), ids[0], ids[1], appleads.AdGroupUpdate{DefaultBidAmount: &bid})
			if err != nil {
				return err
			}
			return a.resultPanel(ag, "Default Bid Updated",
				output.F("Ad Group", firstNonEmptyString(ag.Name, args[1])),
				output.F("Default Bid", firstNonEmptyString(money(ag.DefaultBidAmount), bid.String())),
			)
		},
	}
	cmd.Flags().StringVarP(&currency, "currency", "c", "USD", "Bid currency")
	return cmd
}

func (a *app) adGroupsDeleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete CAMPAIGN_ID AD_GROUP_ID",
		Short: "Delete an ad group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "ad group ID")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			ag, err := client.GetAdGroup(ctx, ids[0], ids[1])
			if err != nil {
				return err
			}
			ok, err := a.confirmed(force, fmt.Sprintf("Are you sure you want to delete ad group '%s'?", ag.Name))
			if err != nil || !ok {
				return err
			}
			if err := client.DeleteAdGroup(ctx, ids[0], ids[1]); err != nil {
				return err
			}
			return a.done(map[string]any{"ok": true, "deleted": ids[1]}, "Ad group '%s' deleted", ag.Name)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
