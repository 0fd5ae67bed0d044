package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/internal/metrics"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/validator"
)

var (
	// ErrNotOpen is returned when submitting a closed drawer.
	ErrNotOpen = errors.New("drawer is not open")
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("submission in flight")
)

// DrawerOption configures a Drawer.
type DrawerOption func(*Drawer)

// WithClock overrides the time source used for defaults and stamps.
func WithClock(now func() time.Time) DrawerOption {
	return func(d *Drawer) {
		d.now = now
	}
}

// SubmitResult describes a finished submission.
type SubmitResult struct {
	Mode    Mode
	Message string
	// Refreshed is true when the backend confirmed the write and the
	// collection was re-fetched.
	Refreshed bool
}

// Drawer is the add/edit form of one entity.
type Drawer struct {
	schema    *Schema
	backend   Backend
	refresher Refresher
	validator *validator.Validator
	log       *logger.Logger
	now       func() time.Time

	mountOnce sync.Once
	mountErr  error

	mu      sync.Mutex
	open    bool
	busy    bool
	mode    Mode
	item    Record
	values  Values
	errors  map[string]string
	options map[string][]Option
}

// NewDrawer creates a closed drawer.
func NewDrawer(s *Schema, backend Backend, refresher Refresher, v *validator.Validator, log *logger.Logger, opts ...DrawerOption) *Drawer {
	if log == nil {
		log = logger.NewNop()
	}
	if v == nil {
		v = validator.New()
	}
	d := &Drawer{
		schema:    s,
		backend:   backend,
		refresher: refresher,
		validator: v,
		log:       log,
		now:       time.Now,
		errors:    make(map[string]string),
		options:   make(map[string][]Option),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.values = Defaults(s, d.now())
	return d
}

// Mount loads the options of every related-collection selector. The fetches
// run in parallel, once per drawer. A failed fetch is logged and leaves its
// selectors empty; the first failure is returned.
func (d *Drawer) Mount(ctx context.Context) error {
	d.mountOnce.Do(func() {
		d.mountErr = d.sideFetch(ctx)
	})
	return d.mountErr
}

func (d *Drawer) sideFetch(ctx context.Context) error {
	collections := d.schema.SideFetches()
	if len(collections) == 0 {
		return nil
	}

	var g errgroup.Group
	for _, col := range collections {
		g.Go(func() error {
			rows, err := d.backend.List(ctx, col)
			if err != nil {
				d.log.Error("operation failed", "op", "side_fetch", "entity", d.schema.Name, "collection", col, "error", err)
				return fmt.Errorf("fetch %s: %w", col, err)
			}
			d.setOptions(col, Records(rows))
			return nil
		})
	}
	return g.Wait()
}

func (d *Drawer) setOptions(collection string, rows []Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, f := range d.schema.Fields {
		if f.OptionsFrom == nil || f.OptionsFrom.Collection != collection {
			continue
		}
		opts := make([]Option, 0, len(rows))
		for _, r := range rows {
			id := r.ID()
			label := r.String(f.OptionsFrom.LabelKey)
			if label == "" {
				label = id
			}
			opts = append(opts, Option{Value: id, Label: label})
		}
		d.options[f.Key] = opts
	}
}

// Open shows the drawer. A nil item, or one without an id, opens create mode.
func (d *Drawer) Open(item Record) {
	if item == nil || item.ID() == "" {
		d.OpenCreate()
		return
	}
	d.OpenEdit(item)
}

// OpenCreate shows an empty form with entity defaults.
func (d *Drawer) OpenCreate() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open = true
	d.mode = ModeCreate
	d.item = nil
	d.values = Defaults(d.schema, d.now())
	d.errors = make(map[string]string)
}

// OpenEdit shows the form pre-filled from item.
func (d *Drawer) OpenEdit(item Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open = true
	d.mode = ModeEdit
	d.item = item.Clone()
	d.values = Prefill(d.schema, item, d.now())
	d.errors = make(map[string]string)
}

// Close hides the drawer and resets the form.
func (d *Drawer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *Drawer) reset() {
	d.open = false
	d.mode = ModeCreate
	d.item = nil
	d.values = Defaults(d.schema, d.now())
	d.errors = make(map[string]string)
}

// Set changes one field value. Unknown keys are ignored.
func (d *Drawer) Set(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.schema.Field(key); ok {
		d.values[key] = value
		delete(d.errors, key)
	}
}

// SetValues changes several field values at once.
func (d *Drawer) SetValues(values Values) {
	for k, v := range values {
		d.Set(k, v)
	}
}

// Validate checks the visible fields and records helper messages.
func (d *Drawer) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validate()
}

func (d *Drawer) validate() error {
	err := ValidateValues(d.validator, d.schema, d.mode, d.values, d.options)
	if err == nil {
		d.errors = make(map[string]string)
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		d.errors = verrs.ByField()
	}
	metrics.ValidationFailuresTotal.WithLabelValues(d.schema.Name).Inc()
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Submit validates, then POSTs a create or PATCHes an update. Validation
// failures keep the drawer open and make no request. Otherwise the drawer
// closes and resets whatever the outcome, and the collection is refreshed
// only when the backend answered with a message.
func (d *Drawer) Submit(ctx context.Context) (SubmitResult, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return SubmitResult{}, ErrNotOpen
	}
	if d.busy {
		d.mu.Unlock()
		return SubmitResult{}, ErrBusy
	}
	if err := d.validate(); err != nil {
		d.mu.Unlock()
		return SubmitResult{Mode: d.mode}, err
	}
	d.busy = true
	mode, item := d.mode, d.item
	payload := BuildPayload(d.schema, mode, d.values, item, d.now())
	d.mu.Unlock()

	res, err := d.write(ctx, mode, item, payload)
	result := SubmitResult{Mode: mode}
	if err == nil && res.Succeeded() {
		result.Message = res.Message
		if rerr := d.refresher.Refresh(ctx, true); rerr == nil {
			result.Refreshed = true
		}
	}

	d.mu.Lock()
	d.busy = false
	d.reset()
	d.mu.Unlock()

	return result, err
}

func (d *Drawer) write(ctx context.Context, mode Mode, item Record, payload map[string]any) (res *apiclient.WriteResult, err error) {
	op := "create"
	if mode == ModeEdit {
		op = "update"
	}
	defer func() {
		metrics.MutationsTotal.WithLabelValues(d.schema.Name, op, metrics.Outcome(err)).Inc()
		if err != nil {
			d.log.Error("operation failed", "op", op, "collection", d.schema.Collection, "error", err)
		}
	}()

	if mode == ModeEdit {
		return d.backend.Update(ctx, d.schema.Collection, item.ID(), payload)
	}
	return d.backend.Create(ctx, d.schema.Collection, payload)
}

// IsOpen reports whether the drawer is shown.
func (d *Drawer) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Busy reports whether a submission is in flight.
func (d *Drawer) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Mode returns the current mode.
func (d *Drawer) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Item returns the record being edited, nil in create mode.
func (d *Drawer) Item() Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.item
}

// Values returns a copy of the form values.
func (d *Drawer) Values() Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values.Clone()
}

// Errors returns the helper messages by field.
func (d *Drawer) Errors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.errors))
	for k, v := range d.errors {
		out[k] = v
	}
	return out
}

// Options returns the selectable options of a field.
func (d *Drawer) Options(key string) []Option {
	f, ok := d.schema.Field(key)
	if !ok {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return FieldOptions(f, d.options)
}

// VisibleFields returns the fields shown in the current mode.
func (d *Drawer) VisibleFields() []Field {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schema.VisibleFields(d.mode)
}

// Schema returns the entity schema.
func (d *Drawer) Schema() *Schema {
	return d.schema
}
