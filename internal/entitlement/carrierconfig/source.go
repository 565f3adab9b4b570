// Package carrierconfig serves carrier configuration from a YAML file and
// turns edits of that file into trigger events.
//
//	defaults:
//	  entitlement_version: 2
//	  entitlement_check_required: false
//	  wfc_mode: 1
//	  wfc_roaming_mode: 2
//	subscriptions:
//	  1:
//	    slot: 0
//	    entitlement_version: 8
//	    entitlement_check_required: true
package carrierconfig

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
)

const (
	defaultWfcMode        = models.WfcModeCellularPreferred
	defaultWfcRoamingMode = models.WfcModeWifiPreferred
)

// Values are the settings one subscription (or the defaults) may carry.
// Nil fields inherit.
type Values struct {
	EntitlementVersion       *int            `yaml:"entitlement_version"`
	EntitlementCheckRequired *bool           `yaml:"entitlement_check_required"`
	WfcMode                  *models.WfcMode `yaml:"wfc_mode"`
	WfcRoamingMode           *models.WfcMode `yaml:"wfc_roaming_mode"`
}

// Subscription is one subscription's block.
type Subscription struct {
	Slot   *int `yaml:"slot"`
	Values `yaml:",inline"`
}

// File is the on-disk document.
type File struct {
	Defaults      Values               `yaml:"defaults"`
	Subscriptions map[int]Subscription `yaml:"subscriptions"`
}

// Parse decodes and validates a carrier config document.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode carrier config: %w", err)
	}
	if err := f.Defaults.validate(); err != nil {
		return File{}, fmt.Errorf("defaults: %w", err)
	}
	for id, sub := range f.Subscriptions {
		if !domain.SubID(id).IsValid() {
			return File{}, fmt.Errorf("subscription %d: invalid id", id)
		}
		if sub.Slot != nil && *sub.Slot < 0 {
			return File{}, fmt.Errorf("subscription %d: slot must not be negative", id)
		}
		if err := sub.Values.validate(); err != nil {
			return File{}, fmt.Errorf("subscription %d: %w", id, err)
		}
	}
	return f, nil
}

func (v Values) validate() error {
	if v.EntitlementVersion != nil && *v.EntitlementVersion < 0 {
		return errors.New("entitlement_version must not be negative")
	}
	if v.WfcMode != nil && !v.WfcMode.IsValid() {
		return fmt.Errorf("invalid wfc_mode %d", *v.WfcMode)
	}
	if v.WfcRoamingMode != nil && !v.WfcRoamingMode.IsValid() {
		return fmt.Errorf("invalid wfc_roaming_mode %d", *v.WfcRoamingMode)
	}
	return nil
}

// FileSource implements ports.CarrierConfigSource over a YAML file. A missing
// file behaves like an empty one: every subscription gets the built-in
// defaults and none counts as loaded.
type FileSource struct {
	path string

	mu   sync.RWMutex
	file File
}

// Load reads path once. Reload picks up later edits.
func Load(path string) (*FileSource, error) {
	s := &FileSource{path: path}
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	s.file = f
	return s, nil
}

// NewStatic serves f without a backing file.
func NewStatic(f File) *FileSource {
	return &FileSource{file: f}
}

// Path is the watched file, empty for a static source.
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) read() (File, error) {
	if s.path == "" {
		return File{}, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read carrier config: %w", err)
	}
	return Parse(data)
}

// Reload rereads the file and reports the trigger events the change implies.
// Subscriptions whose effective entitlement version moved get
// EntitlementVersionChanged; every other subscription with a known slot gets
// CarrierConfigChanged. A file that fails to parse leaves the old config in
// place.
func (s *FileSource) Reload() ([]models.TriggerEvent, error) {
	next, err := s.read()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	prev := s.file
	s.file = next
	s.mu.Unlock()

	if reflect.DeepEqual(prev, next) {
		return nil, nil
	}
	return diff(prev, next), nil
}

func diff(prev, next File) []models.TriggerEvent {
	ids := make([]int, 0, len(prev.Subscriptions)+len(next.Subscriptions))
	for id := range prev.Subscriptions {
		ids = append(ids, id)
	}
	for id := range next.Subscriptions {
		if _, ok := prev.Subscriptions[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	var events []models.TriggerEvent
	for _, id := range ids {
		sub := domain.SubID(id)
		oldVersion := prev.entitlementVersion(sub)
		newVersion := next.entitlementVersion(sub)
		if oldVersion != newVersion {
			events = append(events, models.EntitlementVersionChanged(sub, oldVersion, newVersion))
			continue
		}
		if slot, ok := next.slot(sub); ok {
			events = append(events, models.CarrierConfigChanged(sub, slot))
		}
	}
	return events
}

func (s *FileSource) snapshot() File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file
}

// EntitlementVersion returns the configured version, falling back to the
// file defaults and then to domain.DefaultEntitlementVersion.
func (s *FileSource) EntitlementVersion(sub domain.SubID) domain.EntitlementVersion {
	return s.snapshot().entitlementVersion(sub)
}

// EntitlementCheckRequired defaults to false.
func (s *FileSource) EntitlementCheckRequired(sub domain.SubID) bool {
	f := s.snapshot()
	if v := f.Subscriptions[int(sub)].EntitlementCheckRequired; v != nil {
		return *v
	}
	if v := f.Defaults.EntitlementCheckRequired; v != nil {
		return *v
	}
	return false
}

// DefaultWfcModes reports false unless the file has a block for sub.
func (s *FileSource) DefaultWfcModes(sub domain.SubID) (models.WfcModes, bool) {
	f := s.snapshot()
	cfg, ok := f.Subscriptions[int(sub)]
	if !ok {
		return models.WfcModes{}, false
	}
	modes := models.WfcModes{Mode: defaultWfcMode, RoamingMode: defaultWfcRoamingMode}
	if v := f.Defaults.WfcMode; v != nil {
		modes.Mode = *v
	}
	if v := f.Defaults.WfcRoamingMode; v != nil {
		modes.RoamingMode = *v
	}
	if v := cfg.WfcMode; v != nil {
		modes.Mode = *v
	}
	if v := cfg.WfcRoamingMode; v != nil {
		modes.RoamingMode = *v
	}
	return modes, true
}

// Slot reports the slot the file assigns to sub.
func (s *FileSource) Slot(sub domain.SubID) (domain.SlotID, bool) {
	return s.snapshot().slot(sub)
}

func (f File) entitlementVersion(sub domain.SubID) domain.EntitlementVersion {
	if v := f.Subscriptions[int(sub)].EntitlementVersion; v != nil {
		return domain.EntitlementVersion(*v)
	}
	if v := f.Defaults.EntitlementVersion; v != nil {
		return domain.EntitlementVersion(*v)
	}
	return domain.DefaultEntitlementVersion
}

func (f File) slot(sub domain.SubID) (domain.SlotID, bool) {
	cfg, ok := f.Subscriptions[int(sub)]
	if !ok || cfg.Slot == nil {
		return domain.InvalidSlotID, false
	}
	return domain.SlotID(*cfg.Slot), true
}
