package cli

import (
	"fmt"

	"github.com/imgajeed76/pinvite/internal/config"
	"github.com/imgajeed76/pinvite/internal/db"
	"github.com/imgajeed76/pinvite/internal/ui"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the invites table",
		Long: `Create the invites table and its indexes in the configured store.

Running init again is safe. Use --driver, --url or --path to point at a
different store for this run, and --save to keep those settings.

Examples:
  pinvite init --driver sqlite --save
  pinvite init --url postgres://app@localhost/app --save`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().String("driver", "", "Store backend (postgres or sqlite)")
	cmd.Flags().String("url", "", "PostgreSQL connection URL")
	cmd.Flags().String("path", "", "SQLite file")
	cmd.Flags().Bool("save", false, "Write the store settings to the config file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()

	overrides := map[string]string{}
	for flag, key := range map[string]string{"driver": "database.driver", "url": "database.url", "path": "database.path"} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			overrides[key] = v
		}
	}
	for key, v := range overrides {
		if err := a.cfg.SetValue(key, v); err != nil {
			return err
		}
	}
	if _, err := db.NormalizeDriver(a.cfg.Database.Driver); err != nil {
		return err
	}

	store, err := openStore(cmd.Context(), a, false)
	if err != nil {
		return err
	}
	defer store.Close()

	spinner := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Creating schema")
	spinner.Start()
	if err := store.InitSchema(cmd.Context()); err != nil {
		spinner.Error("Schema creation failed")
		return fmt.Errorf("failed to create schema: %w", err)
	}
	spinner.Success("Schema ready")

	fmt.Fprintf(out, "Initialized invite store\n")
	fmt.Fprintf(out, "  Driver: %s\n", styles.Cyan(store.Driver()))
	fmt.Fprintf(out, "  Target: %s\n", styles.Cyan(store.Target()))

	if save, _ := cmd.Flags().GetBool("save"); save && len(overrides) > 0 {
		// Only the store keys are written; env overrides stay out of the file.
		fileCfg, err := config.LoadFile(config.Path())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		for key, v := range overrides {
			if err := fileCfg.SetValue(key, v); err != nil {
				return err
			}
		}
		if err := fileCfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(out, "  Saved to %s\n", styles.Mute(config.Path()))
	}

	if !mailEnabled(a.cfg) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.Mute("Mail delivery is off; invites will print their links."))
		fmt.Fprintln(out, styles.Mute("Enable it with: pinvite config set mail.provider resend"))
	}
	return nil
}
