// Package cli implements the pinvite command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/imgajeed76/pinvite/internal/config"
	"github.com/imgajeed76/pinvite/internal/i18n"
	"github.com/imgajeed76/pinvite/internal/logutil"
	"github.com/imgajeed76/pinvite/internal/telemetry"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// app is the per-invocation state built by the root pre-run.
type app struct {
	cfg      *config.Config
	tr       *i18n.Printer
	log      *zap.Logger
	shutdown telemetry.ShutdownFunc
}

type appKey struct{}

// appFrom returns the state the root pre-run stored on cmd's context.
func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return &app{cfg: config.Default(), log: logutil.L(), shutdown: func(context.Context) error { return nil }}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pinvite",
		Short: "Manage pending workspace invitations",
		Long: `pinvite sends, lists and manages pending workspace invitations stored
in PostgreSQL or a local SQLite file.

Run 'pinvite list' in a terminal for the interactive browser with
debounced search, sortable columns and paging.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           Version,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown(cmd)
		},
	}

	// Global flags
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().String("config", "", "Config file (default: "+config.Path()+")")

	root.SetVersionTemplate(fmt.Sprintf("pinvite version %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate))

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newSendCmd(),
		newListCmd(),
		newShowCmd(),
		newRevokeCmd(),
		newResendCmd(),
		newConfigCmd(),
		newDoctorCmd(),
		newCompletionCmd(root),
	)
	return root
}

// Execute runs the command tree and prints failures to stderr.
func Execute() error {
	return execute(context.Background(), newRootCmd(), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) error {
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		var cliErr *util.CLIError
		if errors.As(err, &cliErr) {
			fmt.Fprintln(stderr, cliErr.Format())
		} else {
			fmt.Fprintln(stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

// setup loads configuration and installs logging and tracing for the
// command about to run.
func setup(cmd *cobra.Command, args []string) error {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		os.Setenv("NO_COLOR", "1")
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		os.Setenv("PINVITE_CONFIG", path)
	}

	cfg, err := config.Load()
	if err != nil {
		return util.NewError("Cannot read configuration").
			WithContext(config.Path()).
			WithSuggestion("pinvite config list").
			Wrap(err)
	}

	logCfg := logutil.LogConfig{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxDays:    cfg.Log.MaxDays,
		MaxBackups: cfg.Log.MaxBackups,
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.Level = "debug"
	}
	logger, err := logutil.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	shutdown, err := telemetry.Setup(cmd.Context(), cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName, Version)
	if err != nil {
		logger.Warn("tracing disabled", zap.String("endpoint", cfg.Telemetry.Endpoint), zap.Error(err))
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	a := &app{
		cfg:      cfg,
		tr:       bundle.Printer(cfg.UI.Locale),
		log:      logger,
		shutdown: shutdown,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
	logger.Debug("command starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("driver", cfg.Database.Driver),
		zap.String("locale", a.tr.Locale()))
	return nil
}

// teardown flushes spans and logs.
func teardown(cmd *cobra.Command) error {
	a := appFrom(cmd)
	return multierr.Combine(
		a.shutdown(context.Background()),
		logutil.Sync(),
	)
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pinvite.

To load completions:

Bash:
  $ source <(pinvite completion bash)

Zsh:
  $ pinvite completion zsh > "${fpath[1]}/_pinvite"

Fish:
  $ pinvite completion fish | source

PowerShell:
  PS> pinvite completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pinvite version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", CommitSHA)
			fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		},
	}
}
