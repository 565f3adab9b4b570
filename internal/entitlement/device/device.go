// Package device holds the platform-facing adapters of a single device: SIM
// states reported over the API, the Wi-Fi Calling settings store, the boot
// counter and the running actor.
package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
	"imsse/pkg/platform/sentinel"
)

// SimStates remembers the last reported SIM state per subscription. Unknown
// subscriptions report models.SimStateUnknown.
type SimStates struct {
	mu     sync.RWMutex
	states map[domain.SubID]models.SimState
}

func NewSimStates() *SimStates {
	return &SimStates{states: make(map[domain.SubID]models.SimState)}
}

func (s *SimStates) SimState(_ context.Context, sub domain.SubID) models.SimState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[sub]; ok {
		return st
	}
	return models.SimStateUnknown
}

// Set records the state reported for sub.
func (s *SimStates) Set(sub domain.SubID, state models.SimState) error {
	if !sub.IsValid() {
		return fmt.Errorf("set sim state for sub %d: %w", sub, sentinel.ErrInvalidState)
	}
	if !state.IsValid() {
		return fmt.Errorf("unknown sim state %q: %w", state, sentinel.ErrInvalidState)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sub] = state
	return nil
}

// Actor is a fixed answer to "is this the primary system user".
type Actor bool

func (a Actor) IsSystemUser(context.Context) bool {
	return bool(a)
}

// WfcSettings is the per-subscription Wi-Fi Calling setting. It can be marked
// unavailable to model a settings provider that is not reachable.
type WfcSettings struct {
	mu          sync.RWMutex
	settings    map[domain.SubID]models.WfcSettings
	unavailable bool
}

func NewWfcSettings() *WfcSettings {
	return &WfcSettings{settings: make(map[domain.SubID]models.WfcSettings)}
}

// SetAvailable toggles whether reads and writes succeed.
func (w *WfcSettings) SetAvailable(available bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unavailable = !available
}

// Get returns the current settings of sub.
func (w *WfcSettings) Get(_ context.Context, sub domain.SubID) (models.WfcSettings, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.unavailable {
		return models.WfcSettings{}, sentinel.ErrUnavailable
	}
	return w.settings[sub], nil
}

func (w *WfcSettings) EnabledByUser(ctx context.Context, sub domain.SubID) (bool, error) {
	st, err := w.Get(ctx, sub)
	return st.Enabled, err
}

func (w *WfcSettings) SetEnabled(_ context.Context, sub domain.SubID, enabled bool) error {
	return w.update(sub, func(st *models.WfcSettings) { st.Enabled = enabled })
}

func (w *WfcSettings) SetMode(_ context.Context, sub domain.SubID, mode models.WfcMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("wfc mode %d: %w", mode, sentinel.ErrInvalidState)
	}
	return w.update(sub, func(st *models.WfcSettings) { st.Mode = mode })
}

func (w *WfcSettings) SetRoamingMode(_ context.Context, sub domain.SubID, mode models.WfcMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("wfc roaming mode %d: %w", mode, sentinel.ErrInvalidState)
	}
	return w.update(sub, func(st *models.WfcSettings) { st.RoamingMode = mode })
}

func (w *WfcSettings) update(sub domain.SubID, fn func(*models.WfcSettings)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.unavailable {
		return sentinel.ErrUnavailable
	}
	st := w.settings[sub]
	fn(&st)
	w.settings[sub] = st
	return nil
}

// BootCountFile reads the boot counter from a file holding one integer. A
// missing or unreadable file reports models.NoBootCount.
type BootCountFile struct {
	path string
}

func NewBootCountFile(path string) *BootCountFile {
	return &BootCountFile{path: path}
}

func (b *BootCountFile) BootCount(context.Context) int {
	n, err := ReadBootCount(b.path)
	if err != nil {
		return models.NoBootCount
	}
	return n
}

// ReadBootCount parses the counter at path.
func ReadBootCount(path string) (int, error) {
	if path == "" {
		return models.NoBootCount, errors.New("boot count path not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.NoBootCount, fmt.Errorf("read boot count: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return models.NoBootCount, fmt.Errorf("malformed boot count %q", strings.TrimSpace(string(data)))
	}
	return n, nil
}
