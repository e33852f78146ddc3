// Package cli implements seatctl, the command-line front end of the seating
// engine.  Commands share one store per process: the configured database, or
// an in-memory store with --memory.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iliyamo/guest-seating/internal/app"
	"github.com/iliyamo/guest-seating/internal/config"
	"github.com/iliyamo/guest-seating/internal/database"
	"github.com/iliyamo/guest-seating/internal/middleware"
	"github.com/iliyamo/guest-seating/internal/repository"
	"github.com/iliyamo/guest-seating/internal/seating"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Memory  bool   // use an in-memory store instead of the configured database

	// Store overrides the store selection; tests set it.
	Store repository.Store
	// Notifiers receive every seating change.  Opening the configured
	// database fills them with the server's view cache and event publisher,
	// so the HTTP views never outlive a CLI write.
	Notifiers seating.Notifiers

	closeStore func() error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for seatctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seatctl",
		Short: "seatctl - reconcile guest seating",
		Long: `Import seating plans, place and move guests, merge duplicate guest
records, and verify that the stored seating is consistent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closeStore != nil {
				err := opts.closeStore()
				opts.closeStore = nil
				return err
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Memory, "memory", false, "use a throwaway in-memory store")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTableCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewReassignCommand(opts))
	cmd.AddCommand(NewUnassignCommand(opts))
	cmd.AddCommand(NewCompactCommand(opts))
	cmd.AddCommand(NewDedupeCommand(opts))
	cmd.AddCommand(NewDuplicatesCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRepairCommand(opts))
	cmd.AddCommand(NewCheckInCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return config.NewLogger(w, level, o.Format == "json")
}

// store returns the process store, opening and migrating it on first use.
func (o *RootOptions) store(ctx context.Context) (repository.Store, error) {
	if o.Store != nil {
		return o.Store, nil
	}
	if o.Memory {
		o.Store = repository.NewMemoryStore()
		return o.Store, nil
	}
	dbc, err := config.LoadDB()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "database config", err)
	}
	s, err := database.Open(ctx, dbc)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	if err := repository.Migrate(ctx, s); err != nil {
		_ = s.DB().Close()
		return nil, WrapExitError(ExitCommandError, "migrate", err)
	}
	closers := []func() error{s.DB().Close}
	if o.Notifiers == nil {
		closers = append(closers, o.openNotifiers(ctx)...)
	}
	o.Store = s
	o.closeStore = func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	return s, nil
}

// openNotifiers connects to the server's view cache and event queue.  A
// missing Redis or RabbitMQ is not fatal: the cache then expires by TTL.
func (o *RootOptions) openNotifiers(ctx context.Context) []func() error {
	var closers []func() error
	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		closers = append(closers, rdb.Close)
	}
	ns, closeNs := app.ChangeNotifiers(middleware.NewViewCache(config.LoadCacheConfig(), rdb), config.RabbitMQURL())
	o.Notifiers = ns
	return append(closers, closeNs)
}

// engine builds a seating engine over the process store.
func (o *RootOptions) engine(cmd *cobra.Command) (*seating.Engine, error) {
	s, err := o.store(cmd.Context())
	if err != nil {
		return nil, err
	}
	return app.NewEngine(s, config.LoadSeating(), app.Deps{Log: o.logger(cmd.ErrOrStderr()), Notifiers: o.Notifiers}), nil
}
