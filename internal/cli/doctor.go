package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/imgajeed76/pinvite/internal/config"
	"github.com/imgajeed76/pinvite/internal/db"
	"github.com/imgajeed76/pinvite/internal/i18n"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and store health",
		Long: `Run diagnostics to check if pinvite is properly configured.

This command checks:
  - Config file and database driver
  - Database connectivity and schema
  - Mail delivery settings
  - Tracing endpoint and display language`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Boldf("pinvite doctor"))
	fmt.Fprintln(out)

	allOK := true

	fmt.Fprint(out, "Checking config file... ")
	if _, err := os.Stat(config.Path()); err != nil {
		fmt.Fprintln(out, styles.Mute("NOT FOUND")+fmt.Sprintf(" (%s)", config.Path()))
		fmt.Fprintln(out, "  Using defaults and environment")
	} else {
		fmt.Fprintln(out, styles.Successf("OK")+fmt.Sprintf(" (%s)", config.Path()))
	}

	fmt.Fprint(out, "Checking database driver... ")
	driver, err := db.NormalizeDriver(a.cfg.Database.Driver)
	if err != nil {
		fmt.Fprintln(out, styles.Errorf("INVALID"))
		fmt.Fprintf(out, "  %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(out, styles.Successf("OK")+fmt.Sprintf(" (%s)", driver))
	}

	if driver != "" {
		fmt.Fprint(out, "Checking database connection... ")
		ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
		defer cancel()

		store, err := openStore(ctx, a, false)
		if err == nil {
			err = store.Ping(ctx)
		}
		if err != nil {
			fmt.Fprintln(out, styles.Errorf("FAILED"))
			fmt.Fprintf(out, "  Error: %v\n", err)
			allOK = false
		} else {
			defer store.Close()
			fmt.Fprintln(out, styles.Successf("OK")+fmt.Sprintf(" (%s)", store.Target()))
			allOK = checkSchema(ctx, out, store) && allOK
		}
	}

	fmt.Fprint(out, "Checking mail delivery... ")
	switch {
	case !mailEnabled(a.cfg):
		fmt.Fprintln(out, styles.Mute("OFF"))
		fmt.Fprintln(out, "  Invites print their links instead of being mailed")
	default:
		if _, err := newSender(a.cfg); err != nil {
			fmt.Fprintln(out, styles.Errorf("INCOMPLETE"))
			fmt.Fprintf(out, "  %v\n", err)
			allOK = false
		} else {
			fmt.Fprintln(out, styles.Successf("OK")+fmt.Sprintf(" (%s, from %s)", a.cfg.Mail.Provider, a.cfg.Mail.From))
		}
		if a.cfg.Mail.AppURL == "" {
			fmt.Fprintln(out, styles.Warningf("  mail.app_url is not set; links will be relative"))
		}
	}

	fmt.Fprint(out, "Checking tracing... ")
	if a.cfg.Telemetry.Endpoint == "" {
		fmt.Fprintln(out, styles.Mute("OFF"))
	} else {
		fmt.Fprintln(out, styles.Successf("ON")+fmt.Sprintf(" (%s)", a.cfg.Telemetry.Endpoint))
	}

	fmt.Fprint(out, "Checking display language... ")
	if bundle, err := i18n.LoadEmbedded(); err != nil {
		fmt.Fprintln(out, styles.Errorf("FAILED"))
		allOK = false
	} else if got := bundle.Match(a.cfg.UI.Locale); got != a.cfg.UI.Locale {
		fmt.Fprintln(out, styles.Warningf("FALLBACK")+fmt.Sprintf(" (%s -> %s)", a.cfg.UI.Locale, got))
	} else {
		fmt.Fprintln(out, styles.Successf("OK")+fmt.Sprintf(" (%s)", got))
	}

	fmt.Fprintln(out)
	if allOK {
		fmt.Fprintln(out, styles.Successf("All checks passed!"))
	} else {
		fmt.Fprintln(out, styles.Warningf("Some issues were found. See above for details."))
	}
	return nil
}

func checkSchema(ctx context.Context, out io.Writer, store db.Store) bool {
	fmt.Fprint(out, "Checking schema... ")
	ready, err := store.SchemaReady(ctx)
	switch {
	case err != nil:
		fmt.Fprintln(out, styles.Errorf("FAILED"))
		fmt.Fprintf(out, "  Error: %v\n", err)
		return false
	case !ready:
		fmt.Fprintln(out, styles.Warningf("MISSING"))
		fmt.Fprintln(out, "  Run 'pinvite init' to create it")
		return false
	}
	fmt.Fprintln(out, styles.Successf("OK"))

	fmt.Fprint(out, "Checking pending invites... ")
	n, err := store.CountPending(ctx, time.Now())
	if err != nil {
		fmt.Fprintln(out, styles.Errorf("FAILED"))
		fmt.Fprintf(out, "  Error: %v\n", err)
		return false
	}
	fmt.Fprintln(out, styles.Successf("%d pending", n))
	return true
}
