package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/guest-seating/internal/app"
	"github.com/iliyamo/guest-seating/internal/config"
	"github.com/iliyamo/guest-seating/internal/importer"
	"github.com/iliyamo/guest-seating/internal/model"
	"github.com/iliyamo/guest-seating/internal/repair"
	"github.com/iliyamo/guest-seating/internal/repository"
	"github.com/iliyamo/guest-seating/internal/seating"
	"github.com/iliyamo/guest-seating/internal/utils"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the seating schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, err := rootOpts.store(cmd.Context())
			if err != nil {
				return f.Fail("open store", err)
			}
			// store() already migrated a fresh connection; an injected store is migrated here.
			if err := repository.Migrate(cmd.Context(), s); err != nil && !errors.Is(err, repository.ErrRawUnavailable) {
				return f.Fail("migrate", err)
			}
			return f.Success("schema up to date")
		},
	}
}

// NewTableCommand creates the table command group.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage tables",
	}

	var t model.Table
	add := &cobra.Command{
		Use:   "add <number>",
		Short: "Create a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			n, err := parseTable(args[0])
			if err != nil {
				return f.Fail("table add", err)
			}
			if t.Capacity < 0 {
				return f.Fail("table add", NewExitError(ExitCommandError, "capacity must not be negative"))
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			t.Number = n
			created, err := e.CreateTable(cmd.Context(), t)
			if err != nil {
				return f.Fail("table add", err)
			}
			return f.Success(tableStatusView(model.TableStatus{
				TableNumber: created.Number, TableName: created.Name, Capacity: created.Capacity,
				AvailableSeats: created.Capacity, SeatedGuests: []model.SeatedGuest{},
			}))
		},
	}
	add.Flags().IntVarP(&t.Capacity, "capacity", "c", 10, "number of seats")
	add.Flags().StringVarP(&t.Name, "name", "n", "", "display name")
	add.Flags().BoolVar(&t.IsVIP, "vip", false, "mark as VIP table")

	del := &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete a table, unseating its guests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			n, err := parseTable(args[0])
			if err != nil {
				return f.Fail("table delete", err)
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			evicted, err := e.DeleteTable(cmd.Context(), n)
			if err != nil {
				return f.Fail("table delete", err)
			}
			return f.Success(fmt.Sprintf("deleted table %d, unseated %d guest(s)", n, len(evicted)))
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var move bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a seating plan",
		Long: `Import a seating plan of "last,first,...,table" lines.

The table is the last all-digit field; a line mentioning the overflow
sentinel (default "TABLE ENFANT") goes to the overflow table. Lines without
a name or table are skipped. Every line is attempted and the stored seating
is verified at the end. Re-running the same plan changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			file, err := os.Open(args[0])
			if err != nil {
				return f.Fail("open plan", err)
			}
			defer file.Close()

			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			f.VerboseLog("importing %s", args[0])
			opts := app.ImportOptions(config.LoadSeating(), move)
			res, err := importer.New(e, opts, rootOpts.logger(cmd.ErrOrStderr())).Import(cmd.Context(), file)
			if err != nil {
				return f.Fail("import", err)
			}
			if err := f.Success(importView(res)); err != nil {
				return err
			}
			if res.Failed > 0 || res.VerifyError != "" {
				return &ExitError{Code: ExitFailure, Message: "import finished with failures", Printed: true}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&move, "move", false, "move guests seated at another table than the plan says")
	return cmd
}

// NewDedupeCommand creates the dedupe command.
func NewDedupeCommand(rootOpts *RootOptions) *cobra.Command {
	var opts seating.MergeOptions
	cmd := &cobra.Command{
		Use:   "dedupe <last-name>",
		Short: "Merge duplicate guest records",
		Long: `Merge the guests whose last name contains the pattern.

The seated record is kept unless --keep names another. Discarded records
lose their seat first and their guest record second. A merge that would
drop a seat at another table is refused before anything is deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			rep, err := e.Duplicates.Resolve(cmd.Context(), args[0], opts)
			if err != nil {
				return f.Fail("dedupe", err)
			}
			return f.Success(mergeView(rep))
		},
	}
	cmd.Flags().StringVar(&opts.KeepID, "keep", "", "id of the record to keep")
	cmd.Flags().StringVar(&opts.FirstNamePattern, "first", "", "only consider first names containing this")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report without deleting")
	return cmd
}

// NewDuplicatesCommand creates the duplicates command.
func NewDuplicatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates [last-name]",
		Short: "List possible duplicate guests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			if len(args) == 1 {
				gs, err := e.Directory.FindDuplicatesOf(cmd.Context(), args[0])
				if err != nil {
					return f.Fail("duplicates", err)
				}
				return f.Success(guestList(gs))
			}
			groups, err := e.Directory.DetectDuplicateGroups(cmd.Context())
			if err != nil {
				return f.Fail("duplicates", err)
			}
			if groups == nil {
				groups = []seating.DuplicateGroup{}
			}
			return f.Success(groupList(groups))
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var table int
	var guest string
	var summary bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show table occupancy or a guest's seat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			ctx := cmd.Context()
			switch {
			case summary:
				s, err := e.Views.Summary(ctx)
				if err != nil {
					return f.Fail("summary", err)
				}
				return f.Success(summaryView(s))
			case table > 0:
				ts, err := e.Views.TableStatus(ctx, table)
				if err != nil {
					return f.Fail("status", err)
				}
				return f.Success(tableStatusView(ts))
			case strings.TrimSpace(guest) != "":
				gs, err := e.Views.GuestStatus(ctx, guest)
				if err != nil {
					return f.Fail("status", err)
				}
				return f.Success(guestStatusView(gs))
			}
			snap, err := e.Views.Materialize(ctx)
			if err != nil {
				return f.Fail("status", err)
			}
			return f.Success(tableStatusList(snap.Tables))
		},
	}
	cmd.Flags().IntVarP(&table, "table", "t", 0, "show one table")
	cmd.Flags().StringVar(&guest, "guest-id", "", "show one guest")
	cmd.Flags().BoolVar(&summary, "summary", false, "show dashboard counters")
	return cmd
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored seating for inconsistencies",
		Long: `Check the stored seating for inconsistencies.

Exits with status 1 when any issue is found. Nothing is repaired.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			rep, err := e.Views.Verify(cmd.Context())
			if errors.Is(err, seating.ErrInconsistentState) {
				_ = f.Error(ErrCodeInconsistent, fmt.Sprintf("%d issue(s) found", len(rep.Issues)), reportView(rep))
				return &ExitError{Code: ExitFailure, Message: "verification failed", Err: err, Printed: true}
			}
			if err != nil {
				return f.Fail("verify", err)
			}
			return f.Success(reportView(rep))
		},
	}
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <plan.yaml>",
		Short: "Apply a repair plan",
		Long: `Apply a YAML repair plan of duplicate merges and seat placements.

Merges run first. Every entry is attempted and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			plan, err := repair.Load(args[0])
			if err != nil {
				return f.Fail("load plan", err)
			}
			e, err := rootOpts.engine(cmd)
			if err != nil {
				return f.Fail("open store", err)
			}
			f.VerboseLog("applying %d merge(s) and %d assignment(s)", len(plan.Merges), len(plan.Assignments))
			outcomes := repair.Apply(cmd.Context(), e, plan, rootOpts.logger(cmd.ErrOrStderr()))
			if err := f.Success(repairView(outcomes)); err != nil {
				return err
			}
			for _, o := range outcomes {
				if o.Failed() {
					return &ExitError{Code: ExitFailure, Message: "repair finished with failures", Printed: true}
				}
			}
			return nil
		},
	}
}

// NewHashPasswordCommand creates the hash-password command, which prints a
// bcrypt hash for ADMIN_PASSWORD_HASH.
func NewHashPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			hash, err := utils.HashPassword(args[0], cost)
			if err != nil {
				return f.Fail("hash password", err)
			}
			return f.Success(hash)
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 selects the default)")
	return cmd
}
