package cli

import (
	"fmt"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/imgajeed76/pinvite/internal/ui/table"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one invite",
		Long: `Show the details of an invite in any status.

The ID may be the full ID or the short form printed by 'pinvite list'.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()

	store, err := openStore(cmd.Context(), a, true)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := resolveRef(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}

	now := time.Now()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return table.PrintJSONResults(out, invite.Page{Records: []invite.Record{*rec}, Total: 1}, now)
	}

	status := rec.EffectiveStatus(now)
	row := func(key, value string) {
		fmt.Fprintf(out, "%-12s %s\n", a.tr.T(key)+":", value)
	}
	fmt.Fprintln(out, styles.SectionHeader(a.tr.T("Invite_details")))
	row("ID", styles.ID(rec.ID, false))
	row("Email", rec.Email)
	row("Invite_type", table.TypeLabel(a.tr, rec.Type))
	row("Role", rec.Role)
	row("Invited_by", rec.InvitedBy)
	row("Invite_status", styles.Status(string(status), table.StatusLabel(a.tr, status)))
	row("Date", styles.Date(rec.CreatedAt.Local().Format("2006-01-02 15:04"))+" "+styles.Mutef("(%s)", util.RelativeTime(rec.CreatedAt, now)))
	row("Expires", styles.Date(rec.ExpiresAt.Local().Format("2006-01-02 15:04"))+" "+styles.Mutef("(%s)", util.ExpiresIn(rec.ExpiresAt, now)))
	row("Resends", fmt.Sprintf("%d", rec.ResendCount))
	return nil
}
