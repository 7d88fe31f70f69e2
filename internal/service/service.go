// Package service wires the intake engine's output to the store, the
// notification dispatcher, and the matching engine.
//
// Control flow: a completed flow's field set is assembled into a
// record, the owner profile is resolved, the record is persisted
// atomically, the dispatcher is informed, and - for demand records -
// the active supply pool is matched and the ranked candidates are
// surfaced. The service never transitions record status; that is the
// external dispatcher's decision.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/rigmatch/internal/match"
	"github.com/roach88/rigmatch/internal/notify"
	"github.com/roach88/rigmatch/internal/request"
	"github.com/roach88/rigmatch/internal/store"
)

// Intake finalizes completed flows against a store and dispatcher.
type Intake struct {
	store      *store.Store
	dispatcher notify.Dispatcher
}

// New creates an Intake service. The dispatcher may be nil, in which
// case creation and match events are not surfaced anywhere.
func New(st *store.Store, dispatcher notify.Dispatcher) *Intake {
	return &Intake{store: st, dispatcher: dispatcher}
}

// Finalized is the result of persisting one completed flow.
type Finalized struct {
	Record *request.Record
	Owner  request.Owner

	// Candidates is the ranked supply list for demand records; nil
	// for supply records. An empty list is a valid, common outcome.
	Candidates []match.Candidate
}

// CreateError wraps a store failure during finalization. The collected
// fields are carried back so the caller can retry without asking the
// user to re-enter everything; nothing was persisted.
type CreateError struct {
	Fields request.Fields
	Err    error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("finalize intake: %v", e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// AsCreateError extracts a CreateError from an error chain.
func AsCreateError(err error) (*CreateError, bool) {
	var ce *CreateError
	ok := errors.As(err, &ce)
	return ce, ok
}

// Finalize persists a completed flow's field set as a new record.
//
// externalOwnerID and profile identify the posting party as the
// transport knows them; the owner row is created on first contact, and
// a phone collected by the transport is stored on the profile (never
// on the record).
//
// For demand records the active supply pool is matched immediately and
// the ranked candidates returned. A match-query failure after a
// successful creation does not undo the creation: the record is
// reported with nil candidates and the error is logged.
func (i *Intake) Finalize(
	ctx context.Context,
	kind request.Kind,
	fields request.Fields,
	externalOwnerID int64,
	profile request.OwnerProfile,
) (*Finalized, error) {
	rec, err := request.FromFields(kind, fields)
	if err != nil {
		return nil, &CreateError{Fields: fields, Err: err}
	}

	owner, err := i.store.GetOrCreateOwner(ctx, externalOwnerID, profile)
	if err != nil {
		return nil, &CreateError{Fields: fields, Err: err}
	}

	if profile.Phone != "" && profile.Phone != owner.Phone {
		if err := i.store.SetOwnerPhone(ctx, owner.ID, profile.Phone); err != nil {
			return nil, &CreateError{Fields: fields, Err: err}
		}
		owner.Phone = profile.Phone
	}

	rec.OwnerID = owner.ID
	if _, err := i.store.CreateRecord(ctx, rec); err != nil {
		return nil, &CreateError{Fields: fields, Err: err}
	}

	if i.dispatcher != nil {
		i.dispatcher.RecordCreated(ctx, rec, owner)
	}

	result := &Finalized{Record: rec, Owner: owner}

	if kind == request.KindDemand {
		candidates, err := i.matchDemand(ctx, rec)
		if err != nil {
			// The record is already persisted; surface the result
			// without candidates rather than failing the creation.
			slog.Error("match query failed after creation",
				"record", rec.ID,
				"error", err,
			)
			return result, nil
		}
		result.Candidates = candidates
	}

	return result, nil
}

// Matches computes the ranked supply candidates for an existing demand
// record. Read-only; usable any time after creation.
func (i *Intake) Matches(ctx context.Context, demandID int64) (*request.Record, []match.Candidate, error) {
	rec, err := i.store.GetRecord(ctx, demandID)
	if err != nil {
		return nil, nil, err
	}
	if rec.Kind != request.KindDemand {
		return nil, nil, fmt.Errorf("record %d is a %s record, not a demand", demandID, rec.Kind)
	}

	candidates, err := i.matchDemand(ctx, &rec)
	if err != nil {
		return nil, nil, err
	}
	return &rec, candidates, nil
}

func (i *Intake) matchDemand(ctx context.Context, demand *request.Record) ([]match.Candidate, error) {
	// Fetch the full active supply pool. SQLite's lower() folds only
	// ASCII, so a SQL-side location prefilter could wrongly exclude
	// non-ASCII locations; Compute applies the containment filter
	// with full Unicode folding instead.
	pool, err := i.store.FindActive(ctx, request.KindSupply, "")
	if err != nil {
		return nil, fmt.Errorf("load supply pool: %w", err)
	}

	candidates := match.Compute(demand, pool)

	if i.dispatcher != nil {
		i.dispatcher.MatchesFound(ctx, demand, candidates)
	}
	return candidates, nil
}
