package upload

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/uicapture/internal/infrastructure/monitoring"
)

// APIState is a point-in-time view of collector reachability
type APIState struct {
	Online     bool      `json:"online" yaml:"online"`
	LastOnline time.Time `json:"lastOnline,omitzero" yaml:"lastOnline,omitempty"`
}

// APIStatus holds the api-status signal. Wire MarkOnline and MarkOffline to
// Options.OnOnline and Options.OnOffline.
type APIStatus struct {
	mu      sync.RWMutex
	state   APIState
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewAPIStatus creates an offline status. metrics may be nil.
func NewAPIStatus(metrics *monitoring.Metrics) *APIStatus {
	return &APIStatus{metrics: metrics, now: time.Now}
}

// MarkOnline records an accepted batch
func (s *APIStatus) MarkOnline() {
	s.mu.Lock()
	s.state = APIState{Online: true, LastOnline: s.now()}
	state := s.state
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetAPIStatus(state.Online, state.LastOnline)
	}
}

// MarkOffline records a pass that could not deliver its batch
func (s *APIStatus) MarkOffline() {
	s.mu.Lock()
	s.state.Online = false
	state := s.state
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetAPIStatus(state.Online, state.LastOnline)
	}
}

// State returns the current status
func (s *APIStatus) State() APIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
