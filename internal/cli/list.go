package cli

import (
	"strings"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/listing"
	"github.com/imgajeed76/pinvite/internal/logutil"
	"github.com/imgajeed76/pinvite/internal/ui/browser"
	"github.com/imgajeed76/pinvite/internal/ui/table"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Browse pending invites",
		Long: `List pending invites.

In a terminal this opens the interactive browser:
  /        search (applied after a short pause)
  1-4      sort by type, email, date or status (again to reverse)
  n / p    next or previous page, + / - change page size
  enter    show details, x revoke, s resend, y copy email
  r        reload, R retry after an error, q quit

With --json, --plain or --raw, or when output is not a terminal, one page
is printed and the command exits.

Examples:
  pinvite list
  pinvite list --search acme --sort date --desc --plain
  pinvite list --status pending,expired --json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().StringP("search", "s", "", "Filter by email, role or inviter")
	cmd.Flags().String("sort", "", "Sort column: type, email, date, status (default: list.sort)")
	cmd.Flags().Bool("desc", false, "Sort descending")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("page-size", 0, "Invites per page (default: list.page_size)")
	cmd.Flags().StringSlice("status", nil, "Statuses to include, or 'all' (default: pending)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("plain", false, "Print a plain table")
	cmd.Flags().Bool("raw", false, "Tab-separated output")
	cmd.Flags().Bool("wide", false, "Full IDs and timestamps in plain and raw output")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	sort, err := listSort(cmd, a.cfg.List.Sort, a.cfg.List.Direction)
	if err != nil {
		return err
	}
	pageSize, _ := cmd.Flags().GetInt("page-size")
	if pageSize <= 0 {
		pageSize = a.cfg.List.PageSize
	}
	search, _ := cmd.Flags().GetString("search")

	jsonOut, _ := cmd.Flags().GetBool("json")
	plain, _ := cmd.Flags().GetBool("plain")
	raw, _ := cmd.Flags().GetBool("raw")
	wide, _ := cmd.Flags().GetBool("wide")

	store, err := openStore(cmd.Context(), a, true)
	if err != nil {
		return err
	}
	defer store.Close()

	if !jsonOut && !plain && !raw && isInteractive() {
		// Log lines would tear the alt screen; only a log file stays on.
		log := a.log
		if a.cfg.Log.File == "" {
			log = logutil.Nop()
		}
		sender, err := senderOrNop(a.cfg)
		if err != nil {
			return err
		}
		return browser.Run(cmd.Context(), browser.Options{
			Fetcher:    store,
			Actions:    newInvites(store, sender, a.cfg, log),
			Translator: a.tr,
			PageSize:   pageSize,
			Debounce:   time.Duration(a.cfg.List.DebounceMS) * time.Millisecond,
			Sort:       sort,
			Search:     search,
			Logger:     log,
		})
	}

	statuses, err := listStatuses(cmd)
	if err != nil {
		return err
	}
	page, _ := cmd.Flags().GetInt("page")
	pageState := listing.NewPageState(pageSize).WithIndex(max(page-1, 0))

	params := listing.QueryParams{
		Search: strings.TrimSpace(util.ToValidUTF8(search)),
		Sort:   sort,
		Page:   pageState,
	}
	q := params.Query()
	q.Statuses = statuses

	result, err := store.List(cmd.Context(), q)
	if err != nil {
		return util.DatabaseConnectionError(store.Target(), err)
	}
	return table.DisplayResults(cmd.OutOrStdout(), result, a.tr, table.DisplayOptions{
		JSON: jsonOut,
		Raw:  raw,
		Wide: wide,
	})
}

// listSort combines the --sort and --desc flags with the configured
// defaults.
func listSort(cmd *cobra.Command, defField, defDir string) (listing.SortSpec, error) {
	spec := listing.DefaultSort()
	field := defField
	if f, _ := cmd.Flags().GetString("sort"); f != "" {
		field = f
	}
	parsed, err := invite.ParseSortField(field)
	if err != nil {
		return spec, err
	}
	spec.Field = parsed

	if cmd.Flags().Changed("desc") {
		if desc, _ := cmd.Flags().GetBool("desc"); desc {
			spec.Direction = listing.Descending
		}
		return spec, nil
	}
	if spec.Direction, err = listing.ParseDirection(defDir); err != nil {
		return spec, err
	}
	return spec, nil
}

func listStatuses(cmd *cobra.Command) ([]invite.Status, error) {
	names, _ := cmd.Flags().GetStringSlice("status")
	var out []invite.Status
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "all") {
			return []invite.Status{invite.StatusPending, invite.StatusExpired, invite.StatusAccepted, invite.StatusRevoked}, nil
		}
		st, err := invite.ParseStatus(n)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
