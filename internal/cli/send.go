package cli

import (
	"fmt"
	"os"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/mail"
	"github.com/imgajeed76/pinvite/internal/ui"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <email>...",
		Short: "Invite people to the workspace",
		Long: `Create one invite per address.

Email invites are mailed when a mail provider is configured. Link invites,
and email invites while mail is off, print their accept links instead.
Links are shown only once; resend an invite to get a new one.

Examples:
  pinvite send ada@example.com grace@example.com --role admin
  pinvite send ops@example.com --type link --expires 48h`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSend,
	}

	cmd.Flags().String("role", "member", "Role granted on acceptance")
	cmd.Flags().String("type", string(invite.TypeEmail), "Invite type (email or link)")
	cmd.Flags().String("expires", "7d", "Validity, e.g. 48h or 7d")
	cmd.Flags().String("invited-by", "", "Inviter shown to the recipient (default: $USER)")

	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()

	typeFlag, _ := cmd.Flags().GetString("type")
	kind, err := invite.ParseType(typeFlag)
	if err != nil {
		return err
	}
	expires, _ := cmd.Flags().GetString("expires")
	ttl, err := util.ParseTTL(expires)
	if err != nil {
		return util.NewError("Invalid expiry").
			WithContext(expires).
			WithSuggestion("pinvite send <email> --expires 7d").
			Wrap(err)
	}
	role, _ := cmd.Flags().GetString("role")
	invitedBy, _ := cmd.Flags().GetString("invited-by")
	if invitedBy == "" {
		invitedBy = os.Getenv("USER")
	}

	sender := mail.Sender(mail.NopSender{})
	delivering := kind == invite.TypeEmail && mailEnabled(a.cfg)
	if delivering {
		if sender, err = newSender(a.cfg); err != nil {
			return err
		}
	}

	store, err := openStore(cmd.Context(), a, true)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newInvites(store, sender, a.cfg, a.log)

	var progress *ui.Progress
	var onDone func(mail.Result)
	if delivering {
		progress = ui.NewProgressTo(cmd.ErrOrStderr(), "Sending invites", len(args))
		onDone = func(r mail.Result) { progress.Increment(r.Err == nil) }
	}

	created, err := svc.Send(cmd.Context(), sendRequest{
		Emails:    args,
		Type:      kind,
		Role:      role,
		InvitedBy: invitedBy,
		TTL:       ttl,
	}, onDone)
	if progress != nil {
		progress.Done()
	}
	if created == nil && err != nil {
		return err
	}

	for _, iv := range created {
		fmt.Fprintf(out, "%s %s %s\n", styles.SuccessMsg("Invited"), iv.Record.Email, styles.ID(iv.Record.ID, true))
		if !delivering {
			fmt.Fprintf(out, "  %s\n", styles.Render(styles.LinkStyle, iv.Link))
		}
	}
	if kind == invite.TypeEmail && !delivering {
		fmt.Fprintln(out, styles.WarningMsg("Mail delivery is off; share the links above."))
	}
	if err != nil {
		return util.NewError("Some invites were not delivered").
			WithMessage(err.Error()).
			WithSuggestion("pinvite resend <id>").
			Wrap(err)
	}
	return nil
}
