package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"asa-cli/internal/appleads"
	"asa-cli/internal/output"
)

var (
	keywordColumns = []string{"id", "text", "match_type", "status", "bid"}
	keywordLabels  = map[string]string{"id": "ID", "match_type": "Match Type"}
)

func keywordRecord(k appleads.Keyword) output.Record {
	return output.Record{
		"id":         k.ID,
		"text":       k.Text,
		"match_type": k.MatchType.String(),
		"status":     k.Status.String(),
		"bid":        money(k.BidAmount),
	}
}

func (a *app) keywordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keywords",
		Aliases: []string{"keyword"},
		Short:   "List and manage targeting keywords",
	}
	cmd.AddCommand(
		a.keywordsListCommand(),
		a.keywordsGetCommand(),
		a.keywordsAddCommand(),
		a.keywordStatusCommand("pause", "paused", appleads.KeywordPaused),
		a.keywordStatusCommand("enable", "enabled", appleads.KeywordActive),
		a.keywordsSetBidCommand(),
		a.keywordsDeleteCommand(),
		a.negativesCommand(),
	)
	return cmd
}

func (a *app) keywordsListCommand() *cobra.Command {
	var (
		status    string
		matchType string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list CAMPAIGN_ID AD_GROUP_ID",
		Short: "List the keywords of an ad group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "ad group ID")
			if err != nil {
				return err
			}
			var wantStatus appleads.KeywordStatus
			if status != "" {
				if wantStatus, err = appleads.ParseKeywordStatus(status); err != nil {
					return err
				}
			}
			var wantMatch appleads.MatchType
			if matchType != "" {
				if wantMatch, err = appleads.ParseMatchType(matchType); err != nil {
					return err
				}
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			page, err := client.ListKeywords(cmd.Context(), ids[0], ids[1], 0)
			if err != nil {
				return err
			}
			records := []output.Record{}
			for _, k := range page.Items {
				if wantStatus.IsSet() && k.Status != wantStatus {
					continue
				}
				if wantMatch.IsSet() && k.MatchType != wantMatch {
					continue
				}
				records = append(records, keywordRecord(k))
				if limit > 0 && len(records) >= limit {
					break
				}
			}
			if len(records) == 0 && !a.jsonOut() {
				a.out.Warning("No keywords found")
				return nil
			}
			title := fmt.Sprintf("Keywords (%d total)", len(records))
			return a.out.Data(title, output.Columns(keywordColumns, keywordLabels), records)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (ACTIVE, PAUSED)")
	cmd.Flags().StringVarP(&matchType, "match-type", "m", "", "Filter by match type (EXACT, BROAD)")
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultListLimit, "Maximum number of keywords")
	return cmd
}

func (a *app) keywordsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CAMPAIGN_ID AD_GROUP_ID KEYWORD_ID",
		Short: "Show one keyword",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "ad group ID", "keyword ID")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			kw, err := client.GetKeyword(cmd.Context(), ids[0], ids[1], ids[2])
			if err != nil {
				return err
			}
			if a.jsonOut() {
				return a.out.JSON(kw)
			}
			return a.out.Data(kw.Text, output.Columns(keywordColumns, keywordLabels), []output.Record{keywordRecord(kw)})
		},
	}
}

func (a *app) keywordsAddCommand() *cobra.Command {
	var (
		matchType string
		bid       decimalFlag
		currency  string
	)
	cmd := &cobra.Command{
		Use:   "add CAMPAIGN_ID AD_GROUP_ID TEXT",
		Short: "Add a keyword to an ad group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:2], "campaign ID", "ad group ID")
			if err != nil {
				return err
			}
			match, err := appleads.ParseMatchType(matchType)
			if err != nil {
				return err
			}
			in := appleads.KeywordCreate{Text: args[2], MatchType: match}
			if bid.value != nil {
				m := appleads.NewMoney(*bid.value, currency)
				in.BidAmount = &m
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			created, err := client.CreateKeywords(cmd.Context(), ids[0], ids[1], []appleads.KeywordCreate{in})
			if err != nil {
				return err
			}
			if len(created) == 0 {
				return fmt.Errorf("Keyword %q was not created", args[2])
			}
			kw := created[0]
			return a.resultPanel(kw, "Keyword Added",
				output.F("ID", kw.ID),
				output.F("Text", kw.Text),
				output.F("Match Type", kw.MatchType.String()),
			)
		},
	}
	cmd.Flags().StringVarP(&matchType, "match-type", "m", "EXACT", "Match type (EXACT, BROAD)")
	cmd.Flags().VarP(&bid, "bid", "b", "Keyword bid (defaults to the ad group bid)")
	cmd.Flags().StringVarP(&currency, "currency", "c", "USD", "Bid currency")
	return cmd
}

// updateKeyword applies one keyword update and returns the updated keyword.
func (a *app) updateKeyword(cmd *cobra.Command, ids []int64, update appleads.KeywordUpdate) (appleads.Keyword, error) {
	client, err := a.client()
	if err != nil {
		return appleads.Keyword{}, err
	}
	update.ID = ids[2]
	updated, err := client.UpdateKeywords(cmd.Context(), ids[0], ids[1], []appleads.KeywordUpdate{update})
	if err != nil {
		return appleads.Keyword{}, err
	}
	if len(updated) == 0 {
		return appleads.Keyword{ID: ids[2]}, nil
	}
	return updated[0], nil
}

func (a *app) keywordStatusCommand(verb, past string, status appleads.KeywordStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " CAMPAIGN_ID AD_GROUP_ID KEYWORD_ID",
		Short: fmt.Sprintf("Set a keyword to %s", status.String()),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "ad group ID", "keyword ID")
			if err != nil {
				return err
			}
			kw, err := a.updateKeyword(cmd, ids, appleads.KeywordUpdate{Status: status})
			if err != nil {
				return err
			}
			return a.done(kw, "Keyword '%s' %s", firstNonEmptyString(kw.Text, args[2]), past)
		},
	}
}

func (a *app) keywordsSetBidCommand() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "set-bid CAMPAIGN_ID AD_GROUP_ID KEYWORD_ID BID",
		Short: "Change the bid of a keyword",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[:3], "campaign ID", "ad group ID", "keyword ID")
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			bid := appleads.NewMoney(amount, currency)
			kw, err := a.updateKeyword(cmd, ids, appleads.KeywordUpdate{BidAmount: &bid})
			if err != nil {
				return err
			}
			return a.resultPanel(kw, "Keyword Bid Updated",
				output.F("Keyword", firstNonEmptyString(kw.Text, args[2])),
				output.F("Bid", firstNonEmptyString(money(kw.BidAmount), bid.String())),
			)
		},
	}
	cmd.Flags().StringVarP(&currency, "currency", "c", "USD", "Bid currency")
	return cmd
}

func (a *app) keywordsDeleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete CAMPAIGN_ID AD_GROUP_ID KEYWORD_ID",
		Short: "Delete a keyword",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "campaign ID", "ad group ID", "keyword ID")
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			kw, err := client.GetKeyword(ctx, ids[0], ids[1], ids[2])
			if err != nil {
				return err
			}
			ok, err := a.confirmed(force, fmt.Sprintf("Are you sure you want to delete keyword '%s'?", kw.Text))
			if err != nil || !ok {
				return err
			}
			if err := client.DeleteKeyword(ctx, ids[0], ids[1], ids[2]); err != nil {
				return err
			}
			return a.done(map[string]any{"ok": true, "deleted": ids[2]}, "Keyword '%s' deleted", kw.Text)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}
