package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one recorded call and what the breaker must report after it.
type step struct {
	fail     bool
	trusted  bool
	change   StateChange
	wantOpen bool
}

func replay(t *testing.T, b *Breaker, steps []step) {
	t.Helper()
	for i, st := range steps {
		var (
			trusted bool
			change  StateChange
		)
		if st.fail {
			var fallback bool
			fallback, change = b.RecordFailure()
			trusted = !fallback
		} else {
			trusted, change = b.RecordSuccess()
		}
		require.Equal(t, st.trusted, trusted, "step %d trusted", i)
		require.Equal(t, st.change, change, "step %d change", i)
		require.Equal(t, st.wantOpen, b.IsOpen(), "step %d open", i)
	}
}

func TestBreaker(t *testing.T) {
	fail := func(trusted, open bool, change StateChange) step {
		return step{fail: true, trusted: trusted, change: change, wantOpen: open}
	}
	ok := func(trusted, open bool, change StateChange) step {
		return step{trusted: trusted, change: change, wantOpen: open}
	}
	opened := StateChange{Opened: true}
	closed := StateChange{Closed: true}
	none := StateChange{}

	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "opens on the threshold failure",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				fail(true, false, none),
				fail(true, false, none),
				fail(false, true, opened),
			},
		},
		{
			name: "success between failures restarts the count",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				fail(true, false, none),
				fail(true, false, none),
				ok(true, false, none),
				fail(true, false, none),
				fail(true, false, none),
				fail(false, true, opened),
			},
		},
		{
			name: "closes after consecutive successes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				fail(false, true, opened),
				ok(false, true, none),
				ok(true, false, closed),
			},
		},
		{
			name: "failed trial call while open restarts recovery",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				fail(false, true, opened),
				ok(false, true, none),
				fail(false, true, none),
				ok(false, true, none),
				ok(true, false, closed),
			},
		},
		{
			name: "non-positive thresholds keep defaults",
			opts: []Option{WithFailureThreshold(0), WithSuccessThreshold(-1)},
			steps: []step{
				fail(true, false, none),
				fail(true, false, none),
				fail(true, false, none),
				fail(true, false, none),
				fail(false, true, opened),
				ok(false, true, none),
				ok(true, false, closed),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replay(t, New("entitlement-dispatch", tt.opts...), tt.steps)
		})
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := New("entitlement-dispatch", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, "entitlement-dispatch", b.Name())
	assert.Equal(t, "closed", b.State().String())
	assert.Equal(t, "open", StateOpen.String())
}
