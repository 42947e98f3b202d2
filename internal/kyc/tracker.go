package kyc

import (
	"encoding/json"
	"sync"
)

// Tracker is a pure state container for per-check progress. It performs no
// I/O and permits any status transition, including re-entry into in_progress
// for retries. The check set is fixed at construction; only statuses and
// messages mutate afterward.
//
// SetStatus is safe for concurrent use: the two sanctions checks may resolve
// concurrently and their writes are serialized here.
type Tracker struct {
	mu       sync.Mutex
	order    []Check
	statuses map[Check]Status
	messages map[Check]string
}

// Step is a point-in-time view of one check for transport and logging.
type Step struct {
	Check   Check  `json:"check"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewTracker registers the full check set for a session as pending.
func NewTracker(requiresSelfie bool) *Tracker {
	order := CheckSequence(requiresSelfie)
	statuses := make(map[Check]Status, len(order))
	for _, check := range order {
		statuses[check] = StatusPending
	}
	return &Tracker{
		order:    order,
		statuses: statuses,
		messages: make(map[Check]string, len(order)),
	}
}

// SetStatus overwrites status and message for one check. The message is
// always replaced, so a retried check never keeps its previous failure text.
// Unknown checks are ignored: the key set never grows after construction.
func (t *Tracker) SetStatus(check Check, status Status, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.statuses[check]; !ok {
		return
	}
	t.statuses[check] = status
	t.messages[check] = message
}

// Status returns the current status for a check, or pending for unknown ones.
func (t *Tracker) Status(check Check) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if status, ok := t.statuses[check]; ok {
		return status
	}
	return StatusPending
}

// Message returns the human-readable message for a check.
func (t *Tracker) Message(check Check) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.messages[check]
}

// IsComplete reports whether every registered check reached a terminal state.
func (t *Tracker) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, check := range t.order {
		if !t.statuses[check].IsTerminal() {
			return false
		}
	}
	return true
}

// AllPassed reports whether every check is success or warning. Warnings count
// as passed for unblocking the flow but stay distinguished for review queues.
func (t *Tracker) AllPassed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, check := range t.order {
		status := t.statuses[check]
		if status != StatusSuccess && status != StatusWarning {
			return false
		}
	}
	return true
}

// FirstError returns the first check in insertion order currently in error
// state, used to surface the single most relevant message to the applicant.
func (t *Tracker) FirstError() (Check, string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, check := range t.order {
		if t.statuses[check] == StatusError {
			return check, t.messages[check], true
		}
	}
	return "", "", false
}

// Steps returns a snapshot of every check in insertion order.
func (t *Tracker) Steps() []Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	steps := make([]Step, 0, len(t.order))
	for _, check := range t.order {
		steps = append(steps, Step{
			Check:   check,
			Status:  t.statuses[check],
			Message: t.messages[check],
		})
	}
	return steps
}

// Checks returns the registered check set in execution order.
func (t *Tracker) Checks() []Check {
	t.mu.Lock()
	defer t.mu.Unlock()
	checks := make([]Check, len(t.order))
	copy(checks, t.order)
	return checks
}

// trackerJSON is the serialized form used by session stores.
type trackerJSON struct {
	Steps []Step `json:"steps"`
}

// MarshalJSON serializes the tracker as an ordered step list.
func (t *Tracker) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackerJSON{Steps: t.Steps()})
}

// UnmarshalJSON restores a tracker from its serialized step list.
func (t *Tracker) UnmarshalJSON(data []byte) error {
	var decoded trackerJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.order = make([]Check, 0, len(decoded.Steps))
	t.statuses = make(map[Check]Status, len(decoded.Steps))
	t.messages = make(map[Check]string, len(decoded.Steps))
	for _, step := range decoded.Steps {
		t.order = append(t.order, step.Check)
		t.statuses[step.Check] = step.Status
		if step.Message != "" {
			t.messages[step.Check] = step.Message
		}
	}
	return nil
}
