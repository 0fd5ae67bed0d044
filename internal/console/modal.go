package console

import (
	"context"
	"sync"
)

// Default delete dialog copy.
const (
	DeleteTitle       = "Delete Item"
	DeleteDescription = "Are you sure you want to delete this item?"
	DeleteConfirmText = "Delete"
	DeleteCancelText  = "Cancel"
)

// DeleteModal is the generic yes/no dialog guarding a delete.
type DeleteModal struct {
	Title       string
	Description string
	ConfirmText string
	CancelText  string

	mu     sync.Mutex
	open   bool
	busy   bool
	target Record
}

// NewDeleteModal creates a closed modal with the default copy.
func NewDeleteModal() *DeleteModal {
	return &DeleteModal{
		Title:       DeleteTitle,
		Description: DeleteDescription,
		ConfirmText: DeleteConfirmText,
		CancelText:  DeleteCancelText,
	}
}

// Open shows the modal for target.
func (m *DeleteModal) Open(target Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.target = target
}

// Close hides the modal and clears the target.
func (m *DeleteModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.target = nil
}

// Confirm runs action against the target while showing the busy state, then
// clears the target and closes.
func (m *DeleteModal) Confirm(ctx context.Context, action func(ctx context.Context, target Record) error) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrNotOpen
	}
	if m.busy {
		m.mu.Unlock()
		return ErrBusy
	}
	m.busy = true
	target := m.target
	m.mu.Unlock()

	err := action(ctx, target)

	m.mu.Lock()
	m.busy = false
	m.open = false
	m.target = nil
	m.mu.Unlock()
	return err
}

// IsOpen reports whether the modal is shown.
func (m *DeleteModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Busy reports whether the delete is in flight.
func (m *DeleteModal) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Target returns the pending-delete record.
func (m *DeleteModal) Target() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}
