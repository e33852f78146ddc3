package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/guest-seating/internal/seating"
)

// guestRef names a guest by id or by name.
type guestRef struct {
	ID    string
	First string
	Last  string
}

func (g *guestRef) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.ID, "guest-id", "", "guest id")
	cmd.Flags().StringVar(&g.First, "first", "", "first name")
	cmd.Flags().StringVar(&g.Last, "last", "", "last name")
}

func (g guestRef) empty() bool {
	return strings.TrimSpace(g.ID) == "" && strings.TrimSpace(g.First) == "" && strings.TrimSpace(g.Last) == ""
}

// resolve maps the reference to a guest id.  Additive callers take the best
// candidate; destructive callers require exactly one.
func (g guestRef) resolve(cmd *cobra.Command, e *seating.Engine, additive bool) (string, error) {
	if id := strings.TrimSpace(g.ID); id != "" {
		return id, nil
	}
	if additive {
		guest, _, err := e.Directory.ResolveForAssignment(cmd.Context(), g.First, g.Last)
		return guest.ID, err
	}
	guest, err := e.Directory.ResolveUnique(cmd.Context(), g.First, g.Last)
	return guest.ID, err
}

func parseTable(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, NewExitError(ExitCommandError, "table number must be a positive integer")
	}
	return n, nil
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	var ref guestRef
	var table int
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Seat a guest at a table",
		Long: `Seat a guest at the next free seat number of a table.

A guest named by --first/--last is resolved to the best candidate; a fuzzy
match is logged as a warning. A guest who is already seated is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if ref.empty() || table <= 0 {
				return f.Fail("assign", NewExitError(ExitCommandError, "a guest and --table are required"))
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			id, err := ref.resolve(cmd, e, true)
			if err != nil {
				return f.Fail("resolve guest", err)
			}
			alloc, err := e.Allocator.Assign(cmd.Context(), id, table)
			if err != nil {
				return f.Fail("assign", err)
			}
			return f.Success(allocationView(alloc))
		},
	}
	ref.bind(cmd)
	cmd.Flags().IntVarP(&table, "table", "t", 0, "table number")
	return cmd
}

// NewReassignCommand creates the reassign command.
func NewReassignCommand(rootOpts *RootOptions) *cobra.Command {
	var ref guestRef
	var table int
	cmd := &cobra.Command{
		Use:   "reassign",
		Short: "Move a guest to another table",
		Long: `Move a guest to the next free seat of another table in one step.

A name must match exactly one guest. The old check-in token stops working.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if ref.empty() || table <= 0 {
				return f.Fail("reassign", NewExitError(ExitCommandError, "a guest and --table are required"))
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			id, err := ref.resolve(cmd, e, false)
			if err != nil {
				return f.Fail("resolve guest", err)
			}
			alloc, err := e.Allocator.Reassign(cmd.Context(), id, table)
			if err != nil {
				return f.Fail("reassign", err)
			}
			return f.Success(allocationView(alloc))
		},
	}
	ref.bind(cmd)
	cmd.Flags().IntVarP(&table, "table", "t", 0, "table number")
	return cmd
}

// NewUnassignCommand creates the unassign command.
func NewUnassignCommand(rootOpts *RootOptions) *cobra.Command {
	var ref guestRef
	cmd := &cobra.Command{
		Use:   "unassign",
		Short: "Remove a guest from their table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if ref.empty() {
				return f.Fail("unassign", NewExitError(ExitCommandError, "a guest is required"))
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			id, err := ref.resolve(cmd, e, false)
			if err != nil {
				return f.Fail("resolve guest", err)
			}
			removed, err := e.Allocator.Unassign(cmd.Context(), id)
			if err != nil {
				return f.Fail("unassign", err)
			}
			return f.Success(unassignView(removed))
		},
	}
	ref.bind(cmd)
	return cmd
}

// NewCompactCommand creates the compact command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compact <table>",
		Short: "Renumber a table's seats to 1..n",
		Long: `Renumber the seats of a table to 1..n keeping their order.

Seat numbers freed by departures are never reused otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			table, err := parseTable(args[0])
			if err != nil {
				return f.Fail("compact", err)
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			rep, err := e.Allocator.Compact(cmd.Context(), table)
			if err != nil {
				return f.Fail("compact", err)
			}
			return f.Success(compactView(rep))
		},
	}
}

// NewCheckInCommand creates the checkin command.
func NewCheckInCommand(rootOpts *RootOptions) *cobra.Command {
	var undo string
	cmd := &cobra.Command{
		Use:   "checkin [token]",
		Short: "Check a guest in by token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if (len(args) == 0) == (undo == "") {
				return f.Fail("checkin", NewExitError(ExitCommandError, "give either a token or --undo <guest-id>"))
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			if undo != "" {
				g, err := e.Desk.UndoCheckIn(cmd.Context(), undo)
				if err != nil {
					return f.Fail("undo check-in", err)
				}
				return f.Success(guestList{g})
			}
			res, err := e.Desk.CheckIn(cmd.Context(), args[0])
			if err != nil {
				return f.Fail("checkin", err)
			}
			return f.Success(checkInView(res))
		},
	}
	cmd.Flags().StringVar(&undo, "undo", "", "undo the check-in of this guest id")
	return cmd
}
