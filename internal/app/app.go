// Package app assembles the seating engine from configuration.  Both the
// HTTP server and the seatctl CLI build their engine here so they agree on
// token format and overflow table.
package app

import (
	"log/slog"

	"github.com/iliyamo/guest-seating/internal/config"
	"github.com/iliyamo/guest-seating/internal/importer"
	"github.com/iliyamo/guest-seating/internal/middleware"
	"github.com/iliyamo/guest-seating/internal/repository"
	"github.com/iliyamo/guest-seating/internal/seating"
	queue_publisher "github.com/iliyamo/guest-seating/internal/service"
)

// Deps are the optional collaborators of an engine.
type Deps struct {
	Log       *slog.Logger
	Metrics   *seating.Metrics
	Notifiers seating.Notifiers
}

// NewEngine builds an engine over store configured by c.
func NewEngine(store repository.Store, c config.SeatingConfig, d Deps) *seating.Engine {
	opts := []seating.Option{
		seating.WithTokenFormat(seating.TokenFormat{Prefix: c.TokenPrefix}),
		seating.WithOverflowTable(c.OverflowNumber),
	}
	if d.Log != nil {
		opts = append(opts, seating.WithLogger(d.Log))
	}
	if d.Metrics != nil {
		opts = append(opts, seating.WithMetrics(d.Metrics))
	}
	if len(d.Notifiers) > 0 {
		opts = append(opts, seating.WithNotifier(d.Notifiers))
	}
	return seating.New(store, opts...)
}

// ImportOptions maps the seating config onto importer options.
func ImportOptions(c config.SeatingConfig, move bool) importer.Options {
	return importer.Options{
		Sentinel: c.OverflowSentinel,
		Overflow: importer.OverflowTable{
			Number:   c.OverflowNumber,
			Name:     c.OverflowName,
			Capacity: c.OverflowCapacity,
		},
		Move: move,
	}
}

// ChangeNotifiers returns the notifiers every process writing to the shared
// store must carry: the view cache and, when rabbitURL is set, the
// seating.changed publisher.  The returned func releases the publisher.
func ChangeNotifiers(cache *middleware.ViewCache, rabbitURL string) (seating.Notifiers, func() error) {
	var ns seating.Notifiers
	if cache != nil {
		ns = append(ns, cache)
	}
	if rabbitURL == "" {
		return ns, func() error { return nil }
	}
	pub := queue_publisher.New(rabbitURL)
	return append(ns, pub), pub.Close
}
