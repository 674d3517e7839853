package cli

import (
	"os"

	"github.com/spf13/cobra"

	"asa-cli/internal/appleads"
	"asa-cli/internal/output"
)

func (a *app) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Check the configured API credentials",
	}
	cmd.AddCommand(a.authTestCommand(), a.authShowCommand())
	return cmd
}

func (a *app) envFileExists() bool {
	if a.envFile == "" {
		return false
	}
	info, err := os.Stat(a.envFile)
	return err == nil && !info.IsDir()
}

func (a *app) authTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Validate the settings and authenticate against the API",
		Example: `  asa auth test
  asa auth test --env-file .env.production`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.out.Info("Testing Apple Search Ads API credentials...")
			if a.envFileExists() {
				a.out.Info("Loaded configuration from %s", a.envFile)
			} else {
				a.out.Info("No .env file found, using environment variables only")
			}

			creds, err := appleads.ReadSettings(a.envFile)
			if err != nil {
				return err
			}
			if problems := creds.Problems(); len(problems) > 0 {
				if a.jsonOut() {
					_, err := appleads.LoadCredentials(a.envFile)
					return err
				}
				t := output.NewTable("Configuration Status", "Setting", "Status")
				styles := a.out.Styles()
				for _, name := range appleads.SettingNames {
					if problem, ok := problems[name]; ok {
						t.AddRow(name, styles.Error.Render(problem))
					} else {
						t.AddRow(name, styles.Success.Render("OK"))
					}
				}
				a.out.Table(t)
				a.out.Println()
				a.out.Error("Configuration Error", "Missing or invalid settings")
				return errHandled
			}

			if !a.jsonOut() {
				a.out.Table(configurationTable("Configuration", creds, false))
				a.out.Println()
			}
			a.out.Info("Attempting to authenticate...")
			client, err := a.client()
			if err != nil {
				return err
			}
			page, err := client.ListCampaigns(cmd.Context(), appleads.CampaignStatus{}, 1)
			if err != nil {
				return err
			}
			result := map[string]any{"ok": true, "org_id": client.OrgID(), "total_campaigns": page.TotalResults}
			return a.resultPanel(result, "Authentication Successful",
				output.F("Organization ID", client.OrgID()),
				output.F("Total Campaigns", page.TotalResults),
			)
		},
	}
}

func (a *app) authShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the settings that would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := appleads.ReadSettings(a.envFile)
			if err != nil {
				return err
			}
			source := "from environment variables"
			if a.envFileExists() {
				source = "from " + a.envFile
			}
			if a.jsonOut() {
				return a.out.JSON(map[string]any{
					"source":               source,
					"ASA_CLIENT_ID":        creds.MaskedClientID(),
					"ASA_TEAM_ID":          creds.TeamID,
					"ASA_KEY_ID":           creds.KeyID,
					"ASA_ORG_ID":           creds.OrgID,
					"ASA_PRIVATE_KEY_PATH": creds.PrivateKeyPath,
					"ASA_PRIVATE_KEY":      creds.PrivateKey != "",
				})
			}
			a.out.Table(configurationTable("Current Configuration ("+source+")", creds, true))
			return nil
		},
	}
}

// configurationTable lists the settings with the client id masked and the
// inline key hidden. showUnset adds rows for absent key settings.
func configurationTable(title string, creds appleads.Credentials, showUnset bool) *output.Table {
	t := output.NewTable(title, "Setting", "Value")
	t.AddRow("ASA_CLIENT_ID", creds.MaskedClientID())
	t.AddRow("ASA_TEAM_ID", creds.TeamID)
	t.AddRow("ASA_KEY_ID", creds.KeyID)
	t.AddRow("ASA_ORG_ID", creds.OrgID)
	switch {
	case creds.PrivateKeyPath != "":
		t.AddRow("ASA_PRIVATE_KEY_PATH", creds.PrivateKeyPath)
	case showUnset:
		t.AddRow("ASA_PRIVATE_KEY_PATH", "<not set>")
	}
	switch {
	case creds.PrivateKey != "":
		t.AddRow("ASA_PRIVATE_KEY", "<set>")
	case showUnset:
		t.AddRow("ASA_PRIVATE_KEY", "<not set>")
	}
	return t
}
