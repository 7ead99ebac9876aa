package cli

import (
	"context"
	"fmt"

	"github.com/imgajeed76/pinvite/internal/db"
	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/mail"
	"github.com/imgajeed76/pinvite/internal/ui"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// resendBatch is the page size used to collect invites for --all.
const resendBatch = 500

func newResendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resend [<id>...]",
		Short: "Renew and resend invites",
		Long: `Give invites a fresh link and expiry and mail them again.

Pending and expired invites can be resent. With --all every one of them
is renewed; mail goes out concurrently (see mail.workers).`,
		RunE: runResend,
	}
	cmd.Flags().Bool("all", false, "Resend every pending and expired invite")
	return cmd
}

func runResend(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()

	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		return util.MissingArgumentError("id", "pinvite resend <id>  or  pinvite resend --all")
	}

	sender, err := senderOrNop(a.cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), a, true)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		recs []invite.Record
		errs error
	)
	if all {
		if recs, err = resendable(cmd.Context(), store); err != nil {
			return util.DatabaseConnectionError(store.Target(), err)
		}
	} else {
		for _, ref := range args {
			rec, err := resolveRef(cmd.Context(), store, ref)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", ref, err))
				continue
			}
			recs = append(recs, *rec)
		}
	}
	if len(recs) == 0 {
		if errs != nil {
			return errs
		}
		fmt.Fprintln(out, styles.Mute("Nothing to resend."))
		return nil
	}

	progress := ui.NewProgressTo(cmd.ErrOrStderr(), "Resending invites", len(recs))
	svc := newInvites(store, sender, a.cfg, a.log)
	renewed, err := svc.ResendAll(cmd.Context(), recs, func(r mail.Result) {
		progress.Increment(r.Err == nil)
	})
	progress.Done()
	errs = multierr.Append(errs, err)

	delivering := mailEnabled(a.cfg)
	for _, iv := range renewed {
		fmt.Fprintln(out, styles.SuccessMsg(a.tr.T("Invite_resent", iv.Record.Email)))
		if !delivering || iv.Record.Type == invite.TypeLink {
			fmt.Fprintf(out, "  %s\n", styles.Render(styles.LinkStyle, iv.Link))
		}
	}

	if n := len(multierr.Errors(errs)); n > 0 {
		return util.NewError(fmt.Sprintf("%d invites failed", n)).
			WithMessage(errs.Error()).
			Wrap(errs)
	}
	return nil
}

// resendable pages through every pending and expired invite.
func resendable(ctx context.Context, store db.Store) ([]invite.Record, error) {
	var out []invite.Record
	q := invite.Query{
		SortField: invite.SortByDate,
		Limit:     resendBatch,
		Statuses:  []invite.Status{invite.StatusPending, invite.StatusExpired},
	}
	for {
		page, err := store.List(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Records...)
		q.Offset += len(page.Records)
		if len(page.Records) == 0 || q.Offset >= page.Total {
			return out, nil
		}
	}
}
