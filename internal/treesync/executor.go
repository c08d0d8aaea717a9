package treesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"belongings/internal/client"
	"belongings/internal/domain/models/inventory"
)

// GenericFailure is the alert shown when the move request never got an answer.
const GenericFailure = "an error occurred"

// State is the drag state of the executor.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateDroppedValid
	StateDroppedInvalid
	StatePending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateDroppedValid:
		return "dropped-valid"
	case StateDroppedInvalid:
		return "dropped-invalid"
	case StatePending:
		return "pending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome reports what a drop did.
type Outcome int

const (
	// OutcomeIgnored means the validator rejected the drop; nothing was sent
	OutcomeIgnored Outcome = iota
	// OutcomeNoop means the folder was dropped on its current parent
	OutcomeNoop
	// OutcomeMoved means the backend accepted the move
	OutcomeMoved
	// OutcomeFailed means the backend rejected the move or could not be reached
	OutcomeFailed
)

var (
	// ErrBusy is returned by BeginDrag while another drag or move is in flight.
	ErrBusy = errors.New("a drag is already in progress")
	// ErrNotDragging is returned by Drop when no drag was started.
	ErrNotDragging = errors.New("no drag in progress")
	// ErrUnknownFolder is returned by BeginDrag for a folder not in the snapshot.
	ErrUnknownFolder = errors.New("folder is not in the tree")
)

// Mover is the write side of the API.
type Mover interface {
	MoveFolder(ctx context.Context, folderID string, parentID *string) (*inventory.Folder, error)
}

// Alerter shows a message to the user.
type Alerter interface {
	Alert(message string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(message string)

// Alert implements Alerter.
func (f AlertFunc) Alert(message string) { f(message) }

// Executor runs one drag at a time against the store's snapshot.
type Executor struct {
	store   *Store
	mover   Mover
	alerter Alerter
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	dragging   string
	transition func(from, to State)
}

// NewExecutor creates an idle executor.
func NewExecutor(store *Store, mover Mover, alerter Alerter, logger *slog.Logger) *Executor {
	return &Executor{
		store:   store,
		mover:   mover,
		alerter: alerter,
		logger:  logger,
	}
}

// OnTransition registers fn to observe every state change. fn runs with the
// executor locked and must not call back into it.
func (e *Executor) OnTransition(fn func(from, to State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transition = fn
}

// State returns the current drag state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// BeginDrag starts dragging folderID.
func (e *Executor) BeginDrag(folderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return ErrBusy
	}
	if !e.store.Snapshot().Contains(folderID) {
		return ErrUnknownFolder
	}
	e.dragging = folderID
	e.setState(StateDragging)
	return nil
}

// DragOver reports whether dropping on target would be accepted. It reads
// the current snapshot on every call.
func (e *Executor) DragOver(target *string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateDragging {
		return false
	}
	return e.store.Snapshot().IsValidMove(e.dragging, target)
}

// Cancel ends the drag without a request, as when the folder is released
// outside any target.
func (e *Executor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateDragging {
		e.reset()
	}
}

// Drop releases the dragged folder on target (nil = root). An invalid drop
// is ignored silently. A valid drop sends the move and then reloads the
// store whatever the outcome; failures are reported through the Alerter.
func (e *Executor) Drop(ctx context.Context, target *string) (Outcome, error) {
	e.mu.Lock()
	if e.state != StateDragging {
		e.mu.Unlock()
		return OutcomeIgnored, ErrNotDragging
	}
	folderID := e.dragging
	snapshot := e.store.Snapshot()

	if !snapshot.IsValidMove(folderID, target) {
		e.setState(StateDroppedInvalid)
		e.reset()
		e.mu.Unlock()
		return OutcomeIgnored, nil
	}
	if snapshot.IsNoop(folderID, target) {
		e.reset()
		e.mu.Unlock()
		return OutcomeNoop, nil
	}

	e.setState(StateDroppedValid)
	e.setState(StatePending)
	e.mu.Unlock()

	outcome := OutcomeMoved
	if _, err := e.mover.MoveFolder(ctx, folderID, target); err != nil {
		outcome = OutcomeFailed
		e.alerter.Alert(alertMessage(err))
		e.logger.Warn("folder move failed", "folder_id", folderID, "error", err)
	}

	if err := e.store.Reload(ctx); err != nil {
		e.logger.Warn("tree reload after move failed", "error", err)
	}

	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
	return outcome, nil
}

func (e *Executor) setState(to State) {
	from := e.state
	e.state = to
	if e.transition != nil && from != to {
		e.transition(from, to)
	}
}

func (e *Executor) reset() {
	e.dragging = ""
	e.setState(StateIdle)
}

// alertMessage shows the server's message for backend rejections and a
// generic one for everything else.
func alertMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericFailure
}
