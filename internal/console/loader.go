package console

import (
	"context"
	"sync"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// Lister fetches one collection.
type Lister interface {
	List(ctx context.Context, collection string) ([]map[string]any, error)
}

// Backend is the data access the engine needs.
type Backend interface {
	Lister
	Create(ctx context.Context, collection string, payload map[string]any) (*apiclient.WriteResult, error)
	Update(ctx context.Context, collection, id string, payload map[string]any) (*apiclient.WriteResult, error)
	Delete(ctx context.Context, collection, id string) error
}

// Refresher re-fetches a collection. showLoader false keeps the loading
// placeholder hidden.
type Refresher interface {
	Refresh(ctx context.Context, showLoader bool) error
}

// Loader holds one collection and its loading flag.
type Loader struct {
	lister     Lister
	collection string
	log        *logger.Logger

	mu      sync.RWMutex
	data    []Record
	loading bool
}

// NewLoader creates a Loader. It starts in the loading state until the first
// Refresh returns.
func NewLoader(lister Lister, collection string, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		lister:     lister,
		collection: collection,
		log:        log,
		data:       []Record{},
		loading:    true,
	}
}

// Refresh fetches the collection. On success the held data is replaced; on
// failure the error is logged, the previous data is kept and the error is
// returned. Loading is false once Refresh returns.
func (l *Loader) Refresh(ctx context.Context, showLoader bool) error {
	if showLoader {
		l.mu.Lock()
		l.loading = true
		l.mu.Unlock()
	}

	rows, err := l.lister.List(ctx, l.collection)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.log.Error("operation failed", "op", "list", "collection", l.collection, "error", err)
		return err
	}
	l.data = Records(rows)
	return nil
}

// Data returns the held collection.
func (l *Loader) Data() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.data))
	copy(out, l.data)
	return out
}

// Loading reports whether a shown refresh is in flight.
func (l *Loader) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Find returns the held record with the given id.
func (l *Loader) Find(id string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.data {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Collection returns the collection name.
func (l *Loader) Collection() string {
	return l.collection
}
