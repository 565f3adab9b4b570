package carrierconfig

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imsse/internal/entitlement/models"
)

func TestWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carrier.yaml")
	writeConfig(t, path, baseConfig)
	src, err := Load(path)
	require.NoError(t, err)

	got := make(chan []models.TriggerEvent, 4)
	w, err := NewWatcher(src, func(_ context.Context, events []models.TriggerEvent) {
		got <- events
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Give the watcher time to register before editing.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, path, baseConfig+"  4:\n    slot: 2\n")

	select {
	case events := <-got:
		assert.Contains(t, events, models.CarrierConfigChanged(4, 2))
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher(NewStatic(File{}), func(context.Context, []models.TriggerEvent) {})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "carrier.yaml")
	src, err := Load(path)
	require.NoError(t, err)
	_, err = NewWatcher(src, nil)
	assert.Error(t, err)
}
