// Package cli wires the asa command tree: resource management, reports and
// the optimization workflows on top of the Search Ads API client.
package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"asa-cli/internal/appleads"
	"asa-cli/internal/output"
	"asa-cli/internal/prompt"
)

// Version is stamped at build time with -ldflags "-X asa-cli/internal/cli.Version=...".
var Version = "0.1.0"

// errHandled means the command already told the user what went wrong and
// only the exit code is left to set.
var errHandled = errors.New("handled")

type app struct {
	in     io.Reader
	stdout io.Writer
	stderr io.Writer

	clientOpts []appleads.Option
	now        func() time.Time

	format  string
	envFile string
	verbose bool

	out    *output.Output
	prompt *prompt.Prompter
	logger *zap.Logger
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, stdout, stderr io.Writer) int {
	a := &app{in: in, stdout: stdout, stderr: stderr, now: time.Now}
	return a.run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) int {
	a.out = output.New(a.stdout, a.stderr, output.FormatTable)
	a.prompt = prompt.New(a.in, a.stdout)
	a.logger = zap.NewNop()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if errors.Is(err, prompt.ErrCancelled) {
		a.out.Warning("Cancelled")
		return 0
	}
	if !errors.Is(err, errHandled) {
		a.respondCommandError(err)
	}
	return 1
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "asa",
		Short: "Apple Search Ads command line client",
		Long: `asa manages Apple Search Ads campaigns, ad groups and keywords, pulls
performance reports and runs optimization workflows.

Credentials are read from the environment, or from a .env file:
  ASA_CLIENT_ID         Search Ads API client id
  ASA_TEAM_ID           Search Ads API team id
  ASA_KEY_ID            key id of the uploaded public key
  ASA_ORG_ID            organization id
  ASA_PRIVATE_KEY_PATH  path to the EC private key (PEM)
  ASA_PRIVATE_KEY       the PEM text itself, instead of the path`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(a.format)
			if err != nil {
				return err
			}
			a.out = output.New(a.stdout, a.stderr, format)

			a.logger = a.buildLogger()
			a.logger.Debug("command started", zap.String("command", cmd.CommandPath()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetVersionTemplate("asa-cli {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.format, "format", string(output.FormatTable), "Output format: table, json or csv")
	flags.StringVar(&a.envFile, "env-file", appleads.DefaultEnvFile, "Path to the .env file")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")

	root.AddCommand(
		a.campaignsCommand(),
		a.adGroupsCommand(),
		a.keywordsCommand(),
		a.reportsCommand(),
		a.optimizeCommand(),
		a.brandCommand(),
		a.impressionShareCommand(),
		a.authCommand(),
	)
	return root
}

// buildLogger logs JSON to stderr at warn level, or debug with --verbose.
func (a *app) buildLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(config.EncoderConfig),
		zapcore.AddSync(a.stderr),
		config.Level,
	)
	return zap.New(core)
}

// client loads the credentials and builds an API client.
func (a *app) client() (*appleads.Client, error) {
	creds, err := appleads.LoadCredentials(a.envFile)
	if err != nil {
		return nil, err
	}
	opts := append([]appleads.Option{appleads.WithLogger(a.logger)}, a.clientOpts...)
	return appleads.NewClient(*creds, opts...), nil
}

func (a *app) today() time.Time {
	now := a.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (a *app) jsonOut() bool {
	return a.out.Format == output.FormatJSON
}
