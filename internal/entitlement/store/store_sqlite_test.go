package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"imsse/internal/entitlement/ports"
	"imsse/pkg/domain"
	"imsse/pkg/testutil"
)

// Justification: SQLite is the default durable backend on a device; the
// contract runs against a private in-memory database per subtest.
type SQLiteStoreSuite struct {
	contractSuite
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.newStore = func() ports.Store {
		st, err := OpenSQLite(context.Background(), ":memory:")
		s.Require().NoError(err)
		s.T().Cleanup(func() { _ = st.Close() })
		return st
	}
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imsse.db")
	ctx := testutil.Context(testutil.FixedNow)

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	written, err := st.Update(ctx, 1, domain.EntitlementVersionTwo, payloadV2)
	require.NoError(t, err)
	require.NoError(t, st.BindSubscription(ctx, 0, 1))
	require.NoError(t, st.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, written, got)

	slot, err := reopened.Slot(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, domain.SubID(1), slot.SubID)
}
