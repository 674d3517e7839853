package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"asa-cli/internal/appleads"
	"asa-cli/internal/output"
)

var negativeColumns = []string{"id", "text", "match_type", "status"}

func negativeRecord(k appleads.NegativeKeyword) output.Record {
	return output.Record{
		"id":         k.ID,
		"text":       k.Text,
		"match_type": k.MatchType.String(),
		"status":     k.Status.String(),
	}
}

// negativeLevel names the scope: campaign level unless an ad group is given.
func negativeLevel(adGroupID int64) string {
	if adGroupID == 0 {
		return "Campaign"
	}
	return "Ad Group"
}

func (a *app) negativesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "negatives",
		Short: "Manage negative keywords at campaign or ad group level",
	}
	cmd.AddCommand(a.negativesListCommand(), a.negativesAddCommand(), a.negativesDeleteCommand())
	return cmd
}

func (a *app) negativesListCommand() *cobra.Command {
	var (
		adGroupID int64
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list CAMPAIGN_ID",
		Short: "List negative keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			page, err := client.ListNegativeKeywords(cmd.Context(), campaignID, adGroupID, limit)
			if err != nil {
				return err
			}
			level := negativeLevel(adGroupID)
			if len(page.Items) == 0 && !a.jsonOut() {
				a.out.Warning("No %s negative keywords found", level)
				return nil
			}
			records := make([]output.Record, 0, len(page.Items))
			for _, k := range page.Items {
				records = append(records, negativeRecord(k))
			}
			title := fmt.Sprintf("%s Negative Keywords (%d total)", level, len(page.Items))
			return a.out.Data(title, output.Columns(negativeColumns, keywordLabels), records)
		},
	}
	cmd.Flags().Int64VarP(&adGroupID, "ad-group", "g", 0, "Ad group ID (campaign level when omitted)")
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultListLimit, "Maximum number of negative keywords")
	return cmd
}

func (a *app) negativesAddCommand() *cobra.Command {
	var (
		adGroupID int64
		matchType string
	)
	cmd := &cobra.Command{
		Use:   "add CAMPAIGN_ID TEXT",
		Short: "Add a negative keyword",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign ID", args[0])
			if err != nil {
				return err
			}
			match, err := appleads.ParseMatchType(matchType)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			created, err := client.CreateNegativeKeywords(cmd.Context(), campaignID, adGroupID,
				[]appleads.NegativeKeywordCreate{{Text: args[1], MatchType: match}})
			if err != nil {
				return err
			}
			result := appleads.NegativeKeyword{Text: args[1], MatchType: match}
			if len(created) > 0 {
				result = created[0]
			}
			return a.resultPanel(result, "Negative Keyword Added",
				output.F("Level", negativeLevel(adGroupID)),
				output.F("Text", result.Text),
				output.F("Match Type", result.MatchType.String()),
			)
		},
	}
	cmd.Flags().Int64VarP(&adGroupID, "ad-group", "g", 0, "Ad group ID (campaign level when omitted)")
	cmd.Flags().StringVarP(&matchType, "match-type", "m", "EXACT", "Match type (EXACT, BROAD)")
	return cmd
}

func (a *app) negativesDeleteCommand() *cobra.Command {
	var (
		adGroupID int64
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "delete CAMPAIGN_ID NEGATIVE_KEYWORD_ID",
		Short: "Delete a negative keyword",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "negative keyword ID")
			if err != nil {
				return err
			}
			ok, err := a.confirmed(force, "Are you sure you want to delete this negative keyword?")
			if err != nil || !ok {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.DeleteNegativeKeywords(cmd.Context(), ids[0], adGroupID, []int64{ids[1]}); err != nil {
				return err
			}
			return a.done(map[string]any{"ok": true, "deleted": ids[1]}, "Negative keyword deleted")
		},
	}
	cmd.Flags().Int64VarP(&adGroupID, "ad-group", "g", 0, "Ad group ID (campaign level when omitted)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
