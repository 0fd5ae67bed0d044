package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kartik-turing/repo-scanner-frontend/internal/metrics"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/debounce"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

var (
	// ErrInvalidState is returned for a flow step that is not allowed from
	// the current state.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrNotFound is returned when a row id is not in the loaded collection.
	ErrNotFound = errors.New("row not found")
)

// State is the List View state.
type State int

const (
	StateIdle State = iota
	StateDrawer
	StateSubmitting
	StateDeletePending
	StateDeleting
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateDrawer:        "drawer-open",
	StateSubmitting:    "submitting",
	StateDeletePending: "delete-pending",
	StateDeleting:      "deleting",
}

func (s State) String() string {
	return stateNames[s]
}

// ViewConfig configures a View.
type ViewConfig struct {
	SearchDelay time.Duration
	Table       TableOptions
	Clock       func() time.Time
}

// View is the List View of one entity: the loader, table, drawer and delete
// modal bound into one state machine.
type View struct {
	schema  *Schema
	backend Backend
	log     *logger.Logger

	loader *Loader
	table  *Table
	drawer *Drawer
	modal  *DeleteModal
	search *debounce.Debouncer[string]

	mu    sync.Mutex
	state State
}

// NewView builds the View of schema s.
func NewView(s *Schema, backend Backend, v *validator.Validator, log *logger.Logger, cfg ViewConfig) *View {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("entity", s.Name)

	view := &View{
		schema:  s,
		backend: backend,
		log:     log,
		loader:  NewLoader(backend, s.Collection, log),
		table:   NewTable(s.Columns, cfg.Table),
		modal:   NewDeleteModal(),
	}
	var opts []DrawerOption
	if cfg.Clock != nil {
		opts = append(opts, WithClock(cfg.Clock))
	}
	view.drawer = NewDrawer(s, backend, view, v, log, opts...)
	view.search = debounce.New(cfg.SearchDelay, view.table.SetFilter)
	return view
}

// Mount loads the collection and the drawer's selector options in parallel.
func (v *View) Mount(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return v.Refresh(ctx, true)
	})
	g.Go(func() error {
		return v.drawer.Mount(ctx)
	})
	return g.Wait()
}

// Refresh re-fetches the collection and hands it to the table. A failed fetch
// keeps the current rows.
func (v *View) Refresh(ctx context.Context, showLoader bool) error {
	if err := v.loader.Refresh(ctx, showLoader); err != nil {
		return err
	}
	v.table.SetRows(v.loader.Data())
	return nil
}

// Close releases the search debouncer.
func (v *View) Close() {
	v.search.Stop()
}

// Search queues a search text. It is applied once input has been quiet for
// the search delay.
func (v *View) Search(query string) {
	v.search.Push(query)
}

// FlushSearch applies a queued search text immediately.
func (v *View) FlushSearch() {
	v.search.Flush()
}

// OpenCreate opens the drawer in create mode.
func (v *View) OpenCreate() error {
	if err := v.transition(StateIdle, StateDrawer); err != nil {
		return err
	}
	v.drawer.OpenCreate()
	return nil
}

// OpenEdit opens the drawer pre-filled with the row id.
func (v *View) OpenEdit(id string) error {
	item, ok := v.loader.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := v.transition(StateIdle, StateDrawer); err != nil {
		return err
	}
	v.drawer.OpenEdit(item)
	return nil
}

// CloseDrawer discards the form and returns to idle.
func (v *View) CloseDrawer() error {
	if err := v.transition(StateDrawer, StateIdle); err != nil {
		return err
	}
	v.drawer.Close()
	return nil
}

// SubmitDrawer submits the open drawer. A validation failure keeps the
// drawer open; any other outcome returns to idle.
func (v *View) SubmitDrawer(ctx context.Context) (SubmitResult, error) {
	if err := v.transition(StateDrawer, StateSubmitting); err != nil {
		return SubmitResult{}, err
	}
	res, err := v.drawer.Submit(ctx)
	next := StateIdle
	if errors.Is(err, ErrValidation) {
		next = StateDrawer
	}
	v.setState(next)
	return res, err
}

// RequestDelete opens the delete modal for the row id.
func (v *View) RequestDelete(id string) error {
	item, ok := v.loader.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := v.transition(StateIdle, StateDeletePending); err != nil {
		return err
	}
	v.modal.Open(item)
	return nil
}

// CancelDelete closes the modal without deleting.
func (v *View) CancelDelete() error {
	if err := v.transition(StateDeletePending, StateIdle); err != nil {
		return err
	}
	v.modal.Close()
	return nil
}

// ConfirmDelete sends one DELETE for the pending target. On success the
// collection is refreshed without the loading placeholder.
func (v *View) ConfirmDelete(ctx context.Context) error {
	if err := v.transition(StateDeletePending, StateDeleting); err != nil {
		return err
	}
	defer v.setState(StateIdle)

	return v.modal.Confirm(ctx, func(ctx context.Context, target Record) error {
		err := v.backend.Delete(ctx, v.schema.Collection, target.ID())
		metrics.MutationsTotal.WithLabelValues(v.schema.Name, "delete", metrics.Outcome(err)).Inc()
		if err != nil {
			v.log.Error("operation failed", "op", "delete", "collection", v.schema.Collection, "id", target.ID(), "error", err)
			return err
		}
		// A failed refresh is logged by the loader; the delete itself went through.
		_ = v.Refresh(ctx, false)
		return nil
	})
}

func (v *View) transition(from, to State) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != from {
		return fmt.Errorf("%w: %s to %s from %s", ErrInvalidState, from, to, v.state)
	}
	v.state = to
	return nil
}

func (v *View) setState(s State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = s
}

// State returns the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Loading reports whether the loading placeholder is shown.
func (v *View) Loading() bool { return v.loader.Loading() }

// Page returns the visible page of the table.
func (v *View) Page() PageView { return v.table.Page() }

// Schema returns the entity schema.
func (v *View) Schema() *Schema { return v.schema }

// Table returns the view's table.
func (v *View) Table() *Table { return v.table }

// Drawer returns the view's drawer.
func (v *View) Drawer() *Drawer { return v.drawer }

// Modal returns the view's delete modal.
func (v *View) Modal() *DeleteModal { return v.modal }

// Loader returns the view's loader.
func (v *View) Loader() *Loader { return v.loader }
