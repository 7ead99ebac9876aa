package cli

import (
	"errors"
	"fmt"

	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>...",
		Short: "Withdraw pending invites",
		Long: `Revoke one or more pending invites. Their links stop working at once.

Accepted, expired and already revoked invites are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRevoke,
	}
}

func runRevoke(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	out := cmd.OutOrStdout()

	store, err := openStore(cmd.Context(), a, true)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newInvites(store, nil, a.cfg, a.log)

	var errs error
	for _, ref := range args {
		rec, err := resolveRef(cmd.Context(), store, ref)
		if err == nil {
			err = svc.Revoke(cmd.Context(), *rec)
		}
		if err != nil {
			var cliErr *util.CLIError
			if errors.As(err, &cliErr) {
				fmt.Fprintln(out, styles.ErrorMsg(cliErr.Title+": "+ref))
			} else {
				fmt.Fprintln(out, styles.ErrorMsg(fmt.Sprintf("%s: %v", ref, err)))
			}
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ref, err))
			continue
		}
		fmt.Fprintln(out, styles.SuccessMsg(a.tr.T("Invite_revoked", rec.Email)))
	}

	if n := len(multierr.Errors(errs)); n > 0 {
		return util.NewError(fmt.Sprintf("%d of %d invites not revoked", n, len(args))).Wrap(errs)
	}
	return nil
}
