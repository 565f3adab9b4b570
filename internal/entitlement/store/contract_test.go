package store

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/ports"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
	"imsse/pkg/platform/sentinel"
	"imsse/pkg/testutil"
)

const payloadV2 = `<wap-provisioningdoc version="1.1">
    <characteristic type="VERS">
        <parm name="version" value="2"/>
        <parm name="validity" value="172800"/>
    </characteristic>
    <characteristic type="APPLICATION">
        <parm name="AppID" value="ap2004"/>
        <parm name="EntitlementStatus" value="1"/>
    </characteristic>
</wap-provisioningdoc>`

// contractSuite holds the behaviour every backend shares. Backend suites embed
// it and assign newStore in SetupTest.
type contractSuite struct {
	suite.Suite
	newStore func() ports.Store
}

func (s *contractSuite) TestRecordRoundTrip() {
	s.Run("missing record reads as empty", func() {
		st := s.newStore()
		rec, err := st.Get(testutil.Context(testutil.FixedNow), 3)
		s.Require().NoError(err)
		s.Equal(models.EmptyRecord(3), rec)
		s.False(rec.HasPayload())
	})

	s.Run("update then get returns the written record", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		written, err := st.Update(ctx, 1, domain.EntitlementVersionTwo, payloadV2)
		s.Require().NoError(err)
		s.Equal(testutil.FixedNow.Add(48*time.Hour), written.ValidUntil)
		s.Equal(testutil.FixedNow, written.UpdatedAt)

		got, err := st.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(written, got)
	})

	s.Run("version without payload carries no validity", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		_, err := st.Update(ctx, 1, domain.EntitlementVersionEight, "")
		s.Require().NoError(err)

		got, err := st.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(domain.EntitlementVersionEight, got.Version)
		s.False(got.HasPayload())
		s.True(got.ValidUntil.IsZero())
	})

	s.Run("repeated update at the same instant is idempotent", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		first, err := st.Update(ctx, 2, domain.EntitlementVersionTwo, payloadV2)
		s.Require().NoError(err)
		second, err := st.Update(ctx, 2, domain.EntitlementVersionTwo, payloadV2)
		s.Require().NoError(err)
		s.Equal(first, second)

		got, err := st.Get(ctx, 2)
		s.Require().NoError(err)
		s.Equal(first, got)
	})

	s.Run("update replaces an earlier payload", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		_, err := st.Update(ctx, 1, domain.EntitlementVersionTwo, payloadV2)
		s.Require().NoError(err)
		_, err = st.Update(ctx, 1, domain.EntitlementVersionEight, "")
		s.Require().NoError(err)

		got, err := st.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(domain.EntitlementVersionEight, got.Version)
		s.Empty(got.RawXML)
	})
}

func (s *contractSuite) TestRecordInvariants() {
	s.Run("payload without a positive version is rejected", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		_, err := st.Update(ctx, 1, domain.EntitlementVersionUnset, payloadV2)
		s.Require().Error(err)
		s.ErrorIs(err, sentinel.ErrInvalidState)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		got, err := st.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(models.EmptyRecord(1), got)
	})

	s.Run("invalid subscription is rejected", func() {
		st := s.newStore()
		_, err := st.Update(testutil.Context(testutil.FixedNow), domain.InvalidSubID, 2, payloadV2)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *contractSuite) TestReset() {
	s.Run("reset clears only the named subscription", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		_, err := st.Update(ctx, 1, domain.EntitlementVersionTwo, payloadV2)
		s.Require().NoError(err)
		_, err = st.Update(ctx, 2, domain.EntitlementVersionTwo, payloadV2)
		s.Require().NoError(err)

		s.Require().NoError(st.Reset(ctx, 1))

		cleared, err := st.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(models.EmptyRecord(1), cleared)

		kept, err := st.Get(ctx, 2)
		s.Require().NoError(err)
		s.True(kept.HasPayload())
	})

	s.Run("reset of a missing record succeeds", func() {
		st := s.newStore()
		s.NoError(st.Reset(testutil.Context(testutil.FixedNow), 9))
	})
}

func (s *contractSuite) TestSlots() {
	s.Run("unknown slot reads as unbound", func() {
		st := s.newStore()
		got, err := st.Slot(testutil.Context(testutil.FixedNow), 0)
		s.Require().NoError(err)
		s.Equal(models.EmptySlot(0), got)
		s.False(got.Bound())
		s.Equal(models.NoBootCount, got.LastBootCount)
	})

	s.Run("bind and boot count are independent fields", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		s.Require().NoError(st.RecordBootCount(ctx, 1, 4))
		got, err := st.Slot(ctx, 1)
		s.Require().NoError(err)
		s.Equal(domain.InvalidSubID, got.SubID)
		s.Equal(4, got.LastBootCount)

		s.Require().NoError(st.BindSubscription(ctx, 1, 7))
		got, err = st.Slot(ctx, 1)
		s.Require().NoError(err)
		s.Equal(models.SlotState{SlotID: 1, SubID: 7, LastBootCount: 4}, got)
	})

	s.Run("slots do not share state", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		s.Require().NoError(st.BindSubscription(ctx, 0, 1))
		s.Require().NoError(st.BindSubscription(ctx, 1, 2))

		first, err := st.Slot(ctx, 0)
		s.Require().NoError(err)
		second, err := st.Slot(ctx, 1)
		s.Require().NoError(err)
		s.Equal(domain.SubID(1), first.SubID)
		s.Equal(domain.SubID(2), second.SubID)
	})

	s.Run("invalid slot is rejected", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		_, err := st.Slot(ctx, domain.InvalidSlotID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(st.BindSubscription(ctx, domain.InvalidSlotID, 1), dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(st.RecordBootCount(ctx, domain.InvalidSlotID, 1), dErrors.CodeInvalidInput))
	})
}

func (s *contractSuite) TestRunInTx() {
	errAbort := errors.New("abort")

	seed := func(st ports.Store, ctx context.Context) {
		_, err := st.Update(ctx, 1, domain.EntitlementVersionTwo, payloadV2)
		s.Require().NoError(err)
		s.Require().NoError(st.RecordBootCount(ctx, 0, 3))
	}

	s.Run("failed transaction discards every write", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)
		seed(st, ctx)

		err := st.RunInTx(ctx, func(txCtx context.Context) error {
			s.Require().NoError(st.Reset(txCtx, 1))
			s.Require().NoError(st.BindSubscription(txCtx, 0, 2))
			s.Require().NoError(st.RecordBootCount(txCtx, 0, 9))
			return errAbort
		})
		s.Require().ErrorIs(err, errAbort)

		rec, err := st.Get(ctx, 1)
		s.Require().NoError(err)
		s.True(rec.HasPayload())
		slot, err := st.Slot(ctx, 0)
		s.Require().NoError(err)
		s.Equal(models.SlotState{SlotID: 0, SubID: domain.InvalidSubID, LastBootCount: 3}, slot)
	})

	s.Run("committed transaction keeps every write", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)
		seed(st, ctx)

		err := st.RunInTx(ctx, func(txCtx context.Context) error {
			if err := st.Reset(txCtx, 1); err != nil {
				return err
			}
			if err := st.BindSubscription(txCtx, 0, 2); err != nil {
				return err
			}
			return st.RecordBootCount(txCtx, 0, 9)
		})
		s.Require().NoError(err)

		rec, err := st.Get(ctx, 1)
		s.Require().NoError(err)
		s.Equal(models.EmptyRecord(1), rec)
		slot, err := st.Slot(ctx, 0)
		s.Require().NoError(err)
		s.Equal(models.SlotState{SlotID: 0, SubID: 2, LastBootCount: 9}, slot)
	})

	s.Run("write outside the transaction is unaffected by its rollback", func() {
		st := s.newStore()
		ctx := testutil.Context(testutil.FixedNow)

		err := st.RunInTx(ctx, func(txCtx context.Context) error {
			s.Require().NoError(st.BindSubscription(txCtx, 0, 2))
			return errAbort
		})
		s.Require().ErrorIs(err, errAbort)
		s.Require().NoError(st.BindSubscription(ctx, 1, 4))

		first, err := st.Slot(ctx, 0)
		s.Require().NoError(err)
		s.False(first.Bound())
		second, err := st.Slot(ctx, 1)
		s.Require().NoError(err)
		s.Equal(domain.SubID(4), second.SubID)
	})
}
