package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"asa-cli/internal/appleads"
	"asa-cli/internal/brand"
	"asa-cli/internal/optimize"
	"asa-cli/internal/output"
)

const maxPlanTableRows = 10

// brandSummary counts what the brand command created.
type brandSummary struct {
	Campaigns []optimize.Result `json:"campaigns"`
	AdGroups  int               `json:"ad_groups"`
	Keywords  int               `json:"keywords"`
	Status    string            `json:"status"`
}

func (a *app) brandCommand() *cobra.Command {
	var (
		variants     []string
		countries    []string
		reference    int64
		budget       decimalFlag
		bid          decimalFlag
		dryRun       bool
		paused       bool
		includeChina bool
	)
	cmd := &cobra.Command{
		Use:   "brand [BRAND_NAME]",
		Short: "Create brand protection campaigns, one per country",
		Long: `Creates one exact match campaign per target country, named
"App - Country - Brand - EM", with a single-keyword ad group for the brand
name and each variant. Anything not given on the command line is asked for.`,
		Example: `  asa brand
  asa brand "Chippy Tools" -V "Chippy Tool" -c US -c GB
  asa brand "Chippy Tools" -c US,GB,AU --reference 123456789 --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var keywords []string
			if name != "" || len(variants) > 0 {
				keywords = brand.Keywords(name, variants...)
			} else if keywords, err = a.askBrandKeywords(); err != nil {
				return err
			}
			if len(keywords) == 0 {
				a.out.Error("No keywords", sentence(brand.ErrNoKeywords.Error()))
				return errHandled
			}
			a.out.Info("Brand keywords (%d): %s", len(keywords), strings.Join(keywords, ", "))

			var targets []string
			if len(countries) > 0 {
				var warnings []string
				targets, warnings = brand.ResolveCountries(countries, includeChina)
				for _, w := range warnings {
					a.out.Warning("%s", w)
				}
			} else if targets, err = a.askCountries(includeChina); err != nil {
				return err
			}
			if len(targets) == 0 {
				a.out.Error("No countries", sentence(brand.ErrNoCountries.Error()))
				return errHandled
			}
			preview := targets
			suffix := ""
			if len(preview) > 10 {
				preview, suffix = preview[:10], "..."
			}
			a.out.Info("Target countries (%d): %s%s", len(targets), strings.Join(preview, ", "), suffix)

			var (
				selected          brand.App
				refBudget, refBid *decimal.Decimal
			)
			if reference != 0 {
				ref, err := brand.LoadReference(ctx, client, reference)
				if err != nil {
					return err
				}
				selected, refBudget, refBid = ref.App, ref.Budget, ref.Bid
				a.out.Info("Reference: %s", ref.Campaign.Name)
				if refBudget != nil {
					a.out.Info("  Budget: %s, Avg bid: %s", output.Amount(refBudget, selected.Currency), output.Amount(refBid, selected.Currency))
				}
			} else {
				page, err := client.ListCampaigns(ctx, appleads.CampaignStatus{}, 0)
				if err != nil {
					return err
				}
				if selected, err = a.pickApp(brand.DistinctApps(page.Items)); err != nil {
					return err
				}
			}

			finalBudget := brand.Resolve(budget.value, refBudget)
			finalBid := brand.Resolve(bid.value, refBid)
			if finalBudget == nil || finalBid == nil {
				if finalBudget, finalBid, err = a.askBudgetAndBid(finalBudget, finalBid, selected.Currency); err != nil {
					return err
				}
			}

			plans, err := brand.BuildPlans(brand.Settings{
				App:         selected,
				Keywords:    keywords,
				DailyBudget: *finalBudget,
				DefaultBid:  *finalBid,
			}, targets)
			if err != nil {
				return err
			}
			status := "ENABLED"
			if paused {
				status = "PAUSED"
			}
			if a.jsonOut() && dryRun {
				return a.out.JSON(plans)
			}
			if !a.jsonOut() {
				a.showBrandPlans(plans, status)
			}
			if dryRun {
				a.out.Info("Dry run - no campaigns created")
				return nil
			}

			a.out.Warning("Total daily budget: %s", bidCell(brand.TotalDailyBudget(plans), selected.Currency))
			ok, err := a.prompt.Confirm(fmt.Sprintf("Create %d brand campaign(s)?", len(plans)), true)
			if err != nil {
				return err
			}
			if !ok {
				a.out.Info("Cancelled")
				return nil
			}

			summary := brandSummary{Status: status}
			exec := optimize.NewExecutor(client, a.logger)
			exec.OnCampaign = func(c appleads.Campaign) {
				a.out.Success("Created campaign (ID: %d)", c.ID)
			}
			for i, plan := range plans {
				campaignPlan := plan.CampaignPlan()
				exec.OnAdGroup = func(n, _ int, ag appleads.AdGroup) {
					a.out.Success("  %s → '%s'", ag.Name, campaignPlan.AdGroups[n-1].Keyword.Text)
				}
				a.out.Println()
				a.out.Printf("[%d/%d] Creating %s...\n", i+1, len(plans), plan.Name)
				result, err := exec.Execute(ctx, campaignPlan, paused)
				summary.AdGroups += result.AdGroups
				summary.Keywords += result.Keywords
				if result.CampaignID != 0 {
					summary.Campaigns = append(summary.Campaigns, result)
				}
				if err != nil {
					a.out.Warning("Stopped after %d of %d campaigns", len(summary.Campaigns), len(plans))
					return err
				}
			}

			a.out.Println()
			return a.resultPanel(summary, "Brand Campaigns Created",
				output.F("Campaigns", len(summary.Campaigns)),
				output.F("Ad Groups", summary.AdGroups),
				output.F("Keywords", summary.Keywords),
				output.F("Status", status),
			)
		},
	}
	cmd.Flags().StringSliceVarP(&variants, "variant", "V", nil, "Brand name variant (repeatable)")
	cmd.Flags().StringSliceVarP(&countries, "country", "c", nil, "Target country code (repeatable or comma-separated)")
	cmd.Flags().Int64VarP(&reference, "reference", "r", 0, "Campaign ID to copy app, budget and bid from")
	cmd.Flags().Var(&budget, "budget", "Daily budget per campaign")
	cmd.Flags().Var(&bid, "bid", "Default bid")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the plan without creating anything")
	cmd.Flags().BoolVarP(&paused, "paused", "p", false, "Create the campaigns PAUSED")
	cmd.Flags().BoolVar(&includeChina, "include-china", false, "Allow CN (requires special business documentation)")
	return cmd
}

func (a *app) askBrandKeywords() ([]string, error) {
	a.out.Println()
	name, err := a.prompt.Ask("Enter your brand name", "")
	if err != nil {
		return nil, err
	}
	keywords := brand.Keywords(name)
	if name != "" {
		a.out.Info("Brand name: %s", name)
	}

	a.out.Println()
	a.out.Muted("Enter brand name variants (common misspellings, abbreviations)")
	a.out.Muted("Press Enter with no input when done")
	for {
		variant, err := a.prompt.Ask("Add variant (or press Enter to continue)", "")
		if err != nil {
			return nil, err
		}
		if variant == "" {
			return keywords, nil
		}
		merged := brand.Keywords("", append(keywords, variant)...)
		kw := strings.ToLower(variant)
		if len(merged) == len(keywords) {
			a.out.Warning("Already added: %s", kw)
			continue
		}
		keywords = merged
		a.out.Success("Added: %s", kw)
	}
}

func (a *app) askCountries(includeChina bool) ([]string, error) {
	a.out.Println()
	a.out.Heading("Select Target Countries")
	t := output.NewTable("Country Presets", "#", "Preset", "Countries", "Count")
	for i, p := range brand.Presets {
		t.AddRow(strconv.Itoa(i+1), p.Key, p.Description, strconv.Itoa(len(p.Countries(includeChina))))
	}
	a.out.Table(t)
	a.out.Println()
	a.out.Muted("Or enter country codes separated by commas (e.g., US,GB,AU)")

	answer, err := a.prompt.Ask(fmt.Sprintf("Select preset (1-%d) or enter country codes", len(brand.Presets)), "")
	if err != nil {
		return nil, err
	}
	countries, warnings := brand.SelectCountries(answer, includeChina)
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
	return countries, nil
}

func (a *app) pickApp(apps []brand.App) (brand.App, error) {
	if len(apps) == 0 {
		a.out.Error("No apps", sentence(brand.ErrNoApps.Error()))
		return brand.App{}, errHandled
	}
	a.out.Println()
	a.out.Info("Select an app to create brand campaigns for:")
	t := output.NewTable("", "#", "App Name", "Adam ID")
	for i, info := range apps {
		t.AddRow(strconv.Itoa(i+1), info.Name, strconv.FormatInt(info.AdamID, 10))
	}
	a.out.Table(t)
	a.out.Println()

	answer, err := a.prompt.Ask("Select app number", "1")
	if err != nil {
		return brand.App{}, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		a.out.Error("Invalid selection", "Please enter a number")
		return brand.App{}, errHandled
	}
	if n < 1 || n > len(apps) {
		a.out.Error("Invalid selection", fmt.Sprintf("Please enter 1-%d", len(apps)))
		return brand.App{}, errHandled
	}
	return apps[n-1], nil
}

// askBudgetAndBid prompts for whichever of budget and bid is missing, using
// the known value or the package default as the suggestion.
func (a *app) askBudgetAndBid(budget, bid *decimal.Decimal, currency string) (*decimal.Decimal, *decimal.Decimal, error) {
	ask := func(label string, known *decimal.Decimal, fallback decimal.Decimal) (*decimal.Decimal, error) {
		def := fallback
		if known != nil {
			def = *known
		}
		raw, err := a.prompt.Ask(fmt.Sprintf("%s (%s)", label, currency), def.StringFixed(2))
		if err != nil {
			return nil, err
		}
		v, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		if !v.IsPositive() {
			return nil, errors.New("amount must be greater than zero")
		}
		return &v, nil
	}
	a.out.Println()
	finalBudget, err := ask("Daily budget per campaign", budget, brand.DefaultBudget)
	if err != nil {
		return nil, nil, err
	}
	finalBid, err := ask("Default bid", bid, brand.DefaultBid)
	if err != nil {
		return nil, nil, err
	}
	return finalBudget, finalBid, nil
}

func (a *app) showBrandPlans(plans []brand.Plan, status string) {
	first := plans[0]
	a.out.Println()
	a.out.InfoPanel("Brand Campaign Plan",
		output.F("App", fmt.Sprintf("%s (Adam ID: %d)", first.AppName, first.AdamID)),
		output.F("Keywords", strings.Join(first.Keywords, ", ")),
		output.F("Daily Budget", bidCell(first.DailyBudget, first.Currency)),
		output.F("Default Bid", bidCell(first.DefaultBid, first.Currency)),
		output.F("Status", status),
	)
	a.out.Println()

	if len(plans) > maxPlanTableRows {
		countries := make([]string, 0, len(plans))
		for _, p := range plans {
			countries = append(countries, p.Country)
		}
		a.out.Printf("Campaigns to create: %d\n", len(plans))
		a.out.Printf("Ad groups per campaign: %d\n", len(first.Keywords))
		a.out.Printf("Total ad groups: %d\n\n", len(plans)*len(first.Keywords))
		a.out.Muted("Countries by region:")
		for _, r := range brand.GroupByRegion(countries) {
			a.out.Printf("  %s: %s\n", r.Name, strings.Join(r.Countries, ", "))
		}
		a.out.Println()
		return
	}

	t := output.NewTable(fmt.Sprintf("Campaigns to Create (%d)", len(plans)), "#", "Campaign Name", "Country", "Ad Groups")
	for i, p := range plans {
		t.AddRow(
			strconv.Itoa(i+1),
			p.Name,
			fmt.Sprintf("%s (%s)", p.Country, brand.CountryName(p.Country)),
			strconv.Itoa(len(p.Keywords)),
		)
	}
	a.out.Table(t)
	a.out.Println()
}
