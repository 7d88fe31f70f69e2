// Package notify defines the dispatcher that informs an operator of
// new records and match results.
//
// Delivery is best-effort and non-blocking relative to the core: a
// failed or slow dispatcher must never roll back record creation, so
// implementations log failures instead of returning them.
package notify

import (
	"context"
	"log/slog"

	"github.com/roach88/rigmatch/internal/match"
	"github.com/roach88/rigmatch/internal/request"
)

// Dispatcher receives record-creation and match events.
//
// Implementations must not block for long and must swallow their own
// delivery failures; the intake service calls these fire-and-forget.
type Dispatcher interface {
	// RecordCreated is called once per persisted record.
	RecordCreated(ctx context.Context, rec *request.Record, owner request.Owner)

	// MatchesFound is called after a completed match query for a
	// demand record. The candidate list may be empty; that is a
	// valid, common outcome, delivered so the operator sees the
	// query happened.
	MatchesFound(ctx context.Context, demand *request.Record, candidates []match.Candidate)
}

// Log is a Dispatcher that writes structured log lines. It stands in
// for the operator channel in development and tests.
type Log struct {
	Logger *slog.Logger
}

func (l *Log) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Log) RecordCreated(ctx context.Context, rec *request.Record, owner request.Owner) {
	l.logger().InfoContext(ctx, "record created",
		"record", rec.ID,
		"kind", rec.Kind,
		"location", rec.Location,
		"owner", owner.ID,
		"contact", rec.ContactPreference,
	)
}

func (l *Log) MatchesFound(ctx context.Context, demand *request.Record, candidates []match.Candidate) {
	logger := l.logger()
	logger.InfoContext(ctx, "match query completed",
		"demand", demand.ID,
		"candidates", len(candidates),
	)
	for _, c := range candidates {
		logger.InfoContext(ctx, "match candidate",
			"demand", demand.ID,
			"supply", c.SupplyID,
			"score", c.Score,
		)
	}
}

// Multi fans out to several dispatchers in order.
type Multi []Dispatcher

func (m Multi) RecordCreated(ctx context.Context, rec *request.Record, owner request.Owner) {
	for _, d := range m {
		d.RecordCreated(ctx, rec, owner)
	}
}

func (m Multi) MatchesFound(ctx context.Context, demand *request.Record, candidates []match.Candidate) {
	for _, d := range m {
		d.MatchesFound(ctx, demand, candidates)
	}
}
