package intake

import (
	"context"
	"sync"

	"github.com/bilgisen/addconnect/internal/logger"
	"github.com/bilgisen/addconnect/internal/models"
)

// State is the position of a form in its submit cycle:
// Idle → Validating → Submitting (Uploading for files) → Success|Failure → Idle
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Uploading
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Uploading:
		return "uploading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// Outcome of the last attempt as shown to the user
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeOK
	OutcomeFailed
)

// Status is the last confirmation a form produced
type Status struct {
	Outcome Outcome
	Message string
	Err     error
}

// Observer is notified on every state or progress change. It runs on the
// goroutine that drives the form and must not block.
type Observer func(state State, progress int)

// Form is the shared surface of the three intake paths
type Form interface {
	Kind() models.SourceType
	Validate() error
	Submit(ctx context.Context) error
	State() State
	Status() Status
	Errors() *ValidationError
	Busy() bool
	Reset()
}

// machine holds the state every form shares. All fields are guarded by mu.
type machine struct {
	mu       sync.Mutex
	state    State
	progress int
	status   Status
	errs     *ValidationError
	inFlight bool
	observer Observer
}

// SetObserver installs fn as the change listener
func (m *machine) SetObserver(fn Observer) {
	m.mu.Lock()
	m.observer = fn
	m.mu.Unlock()
}

func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *machine) Errors() *ValidationError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs
}

// Busy reports whether a submission is outstanding; the submit control is
// disabled while it is true.
func (m *machine) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// Progress is the upload percentage, 0 outside Uploading
func (m *machine) Progress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// begin claims the single in-flight slot and enters Validating
func (m *machine) begin() error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	m.inFlight = true
	m.errs = nil
	m.mu.Unlock()

	m.transition(Validating)
	return nil
}

// end releases the in-flight slot and returns to Idle
func (m *machine) end() {
	m.mu.Lock()
	m.inFlight = false
	m.progress = 0
	m.mu.Unlock()

	m.transition(Idle)
}

func (m *machine) rejected(verr *ValidationError) {
	m.mu.Lock()
	m.errs = verr
	m.mu.Unlock()
}

func (m *machine) transition(s State) {
	m.mu.Lock()
	m.state = s
	obs, pct := m.observer, m.progress
	m.mu.Unlock()

	if obs != nil {
		obs(s, pct)
	}
}

// setProgress only moves forward within one upload
func (m *machine) setProgress(pct int) {
	m.mu.Lock()
	if pct <= m.progress {
		m.mu.Unlock()
		return
	}
	m.progress = pct
	m.state = Uploading
	obs := m.observer
	m.mu.Unlock()

	if obs != nil {
		obs(Uploading, pct)
	}
}

func (m *machine) succeed(kind models.SourceType, msg string) {
	m.mu.Lock()
	m.status = Status{Outcome: OutcomeOK, Message: msg}
	m.progress = 0
	m.mu.Unlock()

	logger.Info().Str("source_type", string(kind)).Msg(msg)
	m.transition(Success)
}

func (m *machine) fail(kind models.SourceType, msg string, err error) {
	m.mu.Lock()
	m.status = Status{Outcome: OutcomeFailed, Message: msg, Err: err}
	m.progress = 0
	m.mu.Unlock()

	logger.Error().Err(err).Str("source_type", string(kind)).Msg(msg)
	m.transition(Failure)
}

func (m *machine) clearOutcome() {
	m.mu.Lock()
	m.status = Status{}
	m.errs = nil
	m.progress = 0
	m.mu.Unlock()
}
