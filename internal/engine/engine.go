package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jmeg8r/jdex/internal/jd"
	"github.com/jmeg8r/jdex/internal/seed"
	"github.com/jmeg8r/jdex/internal/store"
)

// Engine is the only write path into the index apart from the console.
// It holds no cached rows: every read goes to the store.
//
// An Engine serves a single writer. The store runs transactions one at a
// time on its only connection, which keeps each operation atomic but makes
// no promise about interleaving between independent callers.
type Engine struct {
	store *store.Store
	log   zerolog.Logger
	clock Clock
	ids   IDGenerator
	seed  *seed.Dataset
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the process logger. Default: zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock sets the timestamp source. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the export id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithSeed replaces the built-in default dataset used by Reset and
// EnsureSeeded.
func WithSeed(ds *seed.Dataset) Option {
	return func(e *Engine) {
		e.seed = ds
	}
}

// New creates an Engine over an open store. The engine does not own the
// store; the caller closes it.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		log:   zerolog.Nop(),
		clock: SystemClock{},
		ids:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// now renders the current time in the database's timestamp format.
func (e *Engine) now() string {
	return e.clock.Now().UTC().Format(jd.TimeLayout)
}

// write runs fn in one transaction. A failed commit becomes a
// PersistenceError; *jd.Error values from fn pass through untouched.
func (e *Engine) write(ctx context.Context, op string, fn func(*store.Tx) error) error {
	err := e.store.Update(ctx, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrCommit):
		e.log.Error().Err(err).Str("op", op).Msg("commit failed, transaction rolled back")
		return jd.NewPersistenceError(op, err)
	case jd.CodeOf(err) != "":
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// read runs fn against a consistent snapshot.
func (e *Engine) read(ctx context.Context, op string, fn func(*store.Tx) error) error {
	err := e.store.View(ctx, fn)
	if err == nil || jd.CodeOf(err) != "" {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// record appends one activity entry inside tx.
func (e *Engine) record(ctx context.Context, tx *store.Tx, action jd.Action, entity jd.EntityType, number, details string) error {
	_, err := tx.AppendActivity(ctx, jd.ActivityEntry{
		Action:       action,
		EntityType:   entity,
		EntityNumber: number,
		Details:      details,
		Timestamp:    e.now(),
	})
	return err
}

// logMutation emits the debug line every successful mutation gets.
func (e *Engine) logMutation(action jd.Action, entity jd.EntityType, id int64, number string) {
	e.log.Debug().
		Str("action", string(action)).
		Str("entity", string(entity)).
		Int64("id", id).
		Str("number", number).
		Msg("mutation committed")
}
