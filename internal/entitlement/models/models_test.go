package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"imsse/pkg/domain"
)

func TestRecord_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, EmptyRecord(1).Expired(now), "no payload is always expired")
	assert.True(t, Record{RawXML: "<x/>", ValidUntil: now}.Expired(now), "expiry instant itself is expired")
	assert.False(t, Record{RawXML: "<x/>", ValidUntil: now.Add(time.Second)}.Expired(now))
}

func TestSlotState_Bound(t *testing.T) {
	assert.False(t, EmptySlot(0).Bound())
	assert.Equal(t, NoBootCount, EmptySlot(0).LastBootCount)
	assert.True(t, SlotState{SlotID: 0, SubID: 0}.Bound(), "subscription zero is a real binding")
}

func TestTriggerEvent_Key(t *testing.T) {
	assert.Equal(t, CarrierConfigChanged(2, 1).Key(), CarrierConfigChanged(2, 1).Key())
	assert.NotEqual(t, CarrierConfigChanged(2, 1).Key(), SimLoaded(2, 1).Key())
	assert.NotEqual(t, CarrierConfigChanged(2, 1).Key(), CarrierConfigChanged(2, 0).Key())
	assert.NotEqual(t,
		EntitlementVersionChanged(2, 2, 8).Key(),
		EntitlementVersionChanged(2, 0, 8).Key())
	assert.Equal(t, domain.InvalidSubID, BootCompleted(0).SubID)
}

func TestSimState_IsValid(t *testing.T) {
	assert.True(t, SimStateLoaded.IsValid())
	assert.False(t, SimState("half_loaded").IsValid())
}

func TestOutcome_Constructors(t *testing.T) {
	o := ApplyWfc(3, false, true, ReasonEntitlementRevoked).WithCarrierDefaultReset()
	assert.Equal(t, OutcomeApplyWfc, o.Kind)
	assert.True(t, o.Forced)
	assert.True(t, o.ResetToCarrierDefault)
	assert.Equal(t, domain.SubID(3), o.SubID)

	assert.Equal(t, domain.InvalidSubID, NoAction(ReasonValid).SubID)
}
