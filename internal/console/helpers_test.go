package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kartik-turing/repo-scanner-frontend/internal/infra/apiclient"
)

var testNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// testSchema is a small partner-like entity with one related selector.
func testSchema() *Schema {
	return &Schema{
		Name:       "vendors",
		Title:      "Vendors",
		Singular:   "Vendor",
		Collection: "vendors",
		Columns: []Column{
			{Key: "id", Header: "ID"},
			{Key: "name", Header: "Company Name"},
			{Key: "city", Header: "City"},
			{Key: "employees", Header: "Employees"},
			{Key: "active", Header: "Active"},
			{Key: "website", Header: "Website", Format: FormatLink},
			{Key: "createdAt", Header: "Creation Time", Format: FormatDateTime},
			ActionsColumn,
		},
		Fields: []Field{
			{Key: "name", Label: "Name", Kind: KindText, Required: true},
			{Key: "city", Label: "City", Kind: KindText},
			{Key: "contactEmail", Label: "Contact Email", Kind: KindText, Rules: "email"},
			{Key: "employees", Label: "Employees", Kind: KindNumber, Required: true},
			{Key: "active", Label: "Active", Kind: KindBool},
			{Key: "tags", Label: "Tags", Kind: KindList},
			{Key: "partnerId", Label: "Partner", Kind: KindSelect, Required: true, CreateOnly: true,
				OptionsFrom: &OptionsSource{Collection: "partners", LabelKey: "name"}},
		},
		Stamps: []Stamp{
			{Key: "createdAt", Kind: StampKeep},
			{Key: "updatedAt", Kind: StampNow},
		},
	}
}

func vendorRows() []map[string]any {
	return []map[string]any{
		{"id": "v1", "name": "Acme", "city": "Paris", "employees": float64(120), "active": true, "createdAt": "2024-01-02T09:15:00.000Z"},
		{"id": "v2", "name": "Globex", "city": "Oslo", "employees": float64(45), "active": false},
		{"id": "v3", "name": "initech", "city": "Austin", "employees": float64(300), "active": true},
	}
}

type call struct {
	Op         string
	Collection string
	ID         string
	Payload    map[string]any
}

// fakeBackend records every call and serves canned collections.
type fakeBackend struct {
	mu        sync.Mutex
	data      map[string][]map[string]any
	listErr   map[string]error
	message   string
	writeErr  error
	deleteErr error
	onList    func(collection string)
	calls     []call
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		data: map[string][]map[string]any{
			"vendors":  vendorRows(),
			"partners": {{"id": "p1", "name": "Northwind"}, {"id": "p2"}},
		},
		listErr: map[string]error{},
		message: "ok",
	}
}

func (f *fakeBackend) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) List(_ context.Context, collection string) ([]map[string]any, error) {
	f.record(call{Op: "list", Collection: collection})
	if f.onList != nil {
		f.onList(collection)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[collection]; err != nil {
		return nil, err
	}
	rows := f.data[collection]
	out := make([]map[string]any, len(rows))
	copy(out, rows)
	return out, nil
}

func (f *fakeBackend) Create(_ context.Context, collection string, payload map[string]any) (*apiclient.WriteResult, error) {
	f.record(call{Op: "create", Collection: collection, Payload: payload})
	return f.writeResult()
}

func (f *fakeBackend) Update(_ context.Context, collection, id string, payload map[string]any) (*apiclient.WriteResult, error) {
	f.record(call{Op: "update", Collection: collection, ID: id, Payload: payload})
	return f.writeResult()
}

func (f *fakeBackend) Delete(_ context.Context, collection, id string) error {
	f.record(call{Op: "delete", Collection: collection, ID: id})
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	rows := f.data[collection][:0:0]
	for _, r := range f.data[collection] {
		if r["id"] != id {
			rows = append(rows, r)
		}
	}
	f.data[collection] = rows
	return nil
}

func (f *fakeBackend) writeResult() (*apiclient.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &apiclient.WriteResult{Message: f.message}, nil
}

// count returns how many calls match op and collection.
func (f *fakeBackend) count(op, collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op && c.Collection == collection {
			n++
		}
	}
	return n
}

func (f *fakeBackend) last(op string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Op == op {
			return f.calls[i], true
		}
	}
	return call{}, false
}

// spyRefresher records every refresh request.
type spyRefresher struct {
	mu    sync.Mutex
	shown []bool
	err   error
}

func (s *spyRefresher) Refresh(_ context.Context, showLoader bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, showLoader)
	return s.err
}

func (s *spyRefresher) calls() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.shown...)
}

var errBackendDown = errors.New("backend down")
