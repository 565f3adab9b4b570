package evaluator

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
)

// =============================================================================
// Evaluator Test Suite
// =============================================================================
// Justification for unit tests: the evaluator is the pure rule chain of the
// engine. Every precedence edge is reachable here without stores, locks or
// goroutines, which the router tests then take for granted.

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func versDoc(version, validity int) string {
	return fmt.Sprintf(`<wap-provisioningdoc version="1.1">
    <characteristic type="VERS">
        <parm name="version" value="%d"/>
        <parm name="validity" value="%d"/>
    </characteristic>
</wap-provisioningdoc>`, version, validity)
}

func appDoc(status int) string {
	return fmt.Sprintf(`<wap-provisioningdoc version="1.1">
    <characteristic type="APPLICATION">
        <parm name="AppID" value="ap2004"/>
        <parm name="EntitlementStatus" value="%d"/>
    </characteristic>
</wap-provisioningdoc>`, status)
}

func validRecord(sub domain.SubID, version domain.EntitlementVersion) models.Record {
	return models.Record{
		SubID:      sub,
		Version:    version,
		RawXML:     versDoc(int(version), 3600),
		ValidUntil: now.Add(time.Hour),
	}
}

func expiredRecord(sub domain.SubID, version domain.EntitlementVersion) models.Record {
	return models.Record{
		SubID:      sub,
		Version:    version,
		RawXML:     versDoc(int(version), 0),
		ValidUntil: now,
	}
}

func boundSlot(slot domain.SlotID, sub domain.SubID, bootCount int) models.SlotState {
	return models.SlotState{SlotID: slot, SubID: sub, LastBootCount: bootCount}
}

// authorized is an input that passes every rule 1 and rule 2 gate.
func authorized(ev models.TriggerEvent) Input {
	return Input{
		Event:             ev,
		Record:            models.EmptyRecord(ev.SubID),
		Slot:              models.EmptySlot(ev.SlotID),
		SimState:          models.SimStateLoaded,
		SystemUser:        true,
		CheckRequired:     true,
		ConfiguredVersion: domain.EntitlementVersionTwo,
		BootCount:         7,
		Now:               now,
	}
}

type EvaluatorSuite struct {
	suite.Suite
	eval *Evaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.eval = New(domain.DefaultVersionSet())
}

func (s *EvaluatorSuite) assertVerdict(want, got Verdict) {
	s.T().Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		s.Failf("verdict mismatch", "(-want +got):\n%s", diff)
	}
}

// =============================================================================
// Rule 1: identity and authorization gates
// =============================================================================
// Justification: any of these must short-circuit before state effects, even
// when the record would otherwise demand a query.

func (s *EvaluatorSuite) TestGates() {
	base := func() Input { return authorized(models.SimLoaded(1, 0)) }

	tests := []struct {
		name   string
		mutate func(*Input)
		reason models.Reason
	}{
		{"invalid subscription", func(in *Input) { in.Event.SubID = domain.InvalidSubID }, models.ReasonInvalidSubscription},
		{"default subscription placeholder", func(in *Input) { in.Event.SubID = domain.DefaultSubID }, models.ReasonInvalidSubscription},
		{"sim event without a slot", func(in *Input) { in.Event.SlotID = domain.InvalidSlotID }, models.ReasonUnbound},
		{"not system user", func(in *Input) { in.SystemUser = false }, models.ReasonNotSystemUser},
		{"sim pin locked", func(in *Input) { in.SimState = models.SimStatePinRequired }, models.ReasonSimNotLoaded},
		{"sim absent", func(in *Input) { in.SimState = models.SimStateAbsent }, models.ReasonSimNotLoaded},
		{"carrier does not require checks", func(in *Input) { in.CheckRequired = false }, models.ReasonCheckNotRequired},
		{"unsupported configured version", func(in *Input) { in.ConfiguredVersion = 1 }, models.ReasonUnsupportedVersion},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := base()
			tt.mutate(&in)
			got := s.eval.Evaluate(in)
			s.assertVerdict(noAction(tt.reason), got)
			s.False(got.HasEffects())
		})
	}
}

func (s *EvaluatorSuite) TestBootCompletedOnUnboundSlot() {
	in := authorized(models.BootCompleted(0))
	s.assertVerdict(noAction(models.ReasonUnbound), s.eval.Evaluate(in))
}

// =============================================================================
// Rule 2: SIM change detection
// =============================================================================

func (s *EvaluatorSuite) TestSimChange() {
	s.Run("first subscription seen on slot resets and schedules", func() {
		in := authorized(models.SimLoaded(1, 0))

		got := s.eval.Evaluate(in)

		s.assertVerdict(Verdict{
			Outcome:       models.ScheduleQuery(1, models.ReasonSimChanged),
			ResetRecord:   true,
			BindSlot:      true,
			PreviousSubID: domain.InvalidSubID,
		}, got)
	})

	s.Run("different subscription on slot also clears the previous one", func() {
		in := authorized(models.CarrierConfigChanged(1, 0))
		in.Slot = boundSlot(0, 2, 7)
		in.Record = validRecord(1, 2)

		got := s.eval.Evaluate(in)

		s.assertVerdict(Verdict{
			Outcome:       models.ScheduleQuery(1, models.ReasonSimChanged),
			ResetRecord:   true,
			BindSlot:      true,
			PreviousSubID: 2,
		}, got)
	})

	s.Run("same subscription carrier config change is a no-op", func() {
		in := authorized(models.CarrierConfigChanged(2, 1))
		in.Slot = boundSlot(1, 2, 7)
		in.Record = expiredRecord(2, 2)

		s.assertVerdict(noAction(models.ReasonSameSubscription), s.eval.Evaluate(in))
	})

	s.Run("same subscription sim loaded falls through to validity", func() {
		in := authorized(models.SimLoaded(2, 1))
		in.Slot = boundSlot(1, 2, 7)
		in.Record = expiredRecord(2, 2)

		s.assertVerdict(schedule(2, models.ReasonExpired), s.eval.Evaluate(in))
	})

	s.Run("same subscription sim loaded with valid record", func() {
		in := authorized(models.SimLoaded(2, 1))
		in.Slot = boundSlot(1, 2, 7)
		in.Record = validRecord(2, 2)

		s.assertVerdict(noAction(models.ReasonValid), s.eval.Evaluate(in))
	})
}

// =============================================================================
// Rule 3: reboot detection
// =============================================================================

func (s *EvaluatorSuite) TestBootCompleted() {
	s.Run("unchanged boot count is a no-op even for an expired record", func() {
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, 7)
		in.Record = expiredRecord(2, 2)

		got := s.eval.Evaluate(in)

		s.assertVerdict(noAction(models.ReasonNoReboot), got)
		s.False(got.RecordBootCount)
	})

	s.Run("reboot with expired record schedules and remembers the count", func() {
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, 6)
		in.Record = expiredRecord(2, 2)

		got := s.eval.Evaluate(in)

		want := schedule(2, models.ReasonExpired)
		want.RecordBootCount = true
		want.BootCount = 7
		s.assertVerdict(want, got)
	})

	s.Run("first observed boot counts as a reboot", func() {
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, models.NoBootCount)
		in.Record = validRecord(2, 2)

		got := s.eval.Evaluate(in)

		s.Equal(models.OutcomeNoAction, got.Outcome.Kind)
		s.Equal(models.ReasonValid, got.Outcome.Reason)
		s.True(got.RecordBootCount, "the new count is stored even when nothing is scheduled")
	})
}

// =============================================================================
// Rule 4: validity
// =============================================================================

func (s *EvaluatorSuite) TestValidity() {
	evc := func(old, next domain.EntitlementVersion, rec models.Record) Input {
		in := authorized(models.EntitlementVersionChanged(rec.SubID, old, next))
		in.Record = rec
		return in
	}

	s.Run("no payload schedules", func() {
		got := s.eval.Evaluate(evc(2, 2, models.EmptyRecord(2)))
		s.assertVerdict(schedule(2, models.ReasonNoRecord), got)
	})

	s.Run("expiry instant itself is expired", func() {
		got := s.eval.Evaluate(evc(2, 2, expiredRecord(2, 2)))
		s.assertVerdict(schedule(2, models.ReasonExpired), got)
	})

	s.Run("upgrade invalidates an unexpired record", func() {
		rec := validRecord(2, 0)
		got := s.eval.Evaluate(evc(0, 8, rec))
		s.assertVerdict(schedule(2, models.ReasonVersionUpgrade), got)
	})

	s.Run("numeric upgrade below the upgrade version keeps the record", func() {
		got := s.eval.Evaluate(evc(0, 2, validRecord(2, 0)))
		s.assertVerdict(noAction(models.ReasonValid), got)
	})

	s.Run("upgrade version is configurable", func() {
		eval := New(domain.DefaultVersionSet(), WithUpgradeVersion(domain.EntitlementVersionTwo))
		got := eval.Evaluate(evc(0, 2, validRecord(2, 0)))
		s.assertVerdict(schedule(2, models.ReasonVersionUpgrade), got)
	})

	s.Run("downgrade keeps an unexpired record", func() {
		got := s.eval.Evaluate(evc(8, 2, validRecord(2, 8)))
		s.assertVerdict(noAction(models.ReasonValid), got)
	})

	s.Run("equal version keeps an unexpired record", func() {
		got := s.eval.Evaluate(evc(8, 8, validRecord(2, 8)))
		s.assertVerdict(noAction(models.ReasonValid), got)
	})

	s.Run("malformed payload degrades to expired", func() {
		rec := models.Record{SubID: 2, Version: 2, RawXML: "<wap-provisioningdoc><characteristic", ValidUntil: now}
		got := s.eval.Evaluate(evc(2, 2, rec))
		s.assertVerdict(schedule(2, models.ReasonExpired), got)
	})

	s.Run("server disabled payload is not re-queried", func() {
		rec := models.Record{SubID: 2, Version: 2, RawXML: versDoc(-1, -1), ValidUntil: now}
		got := s.eval.Evaluate(evc(2, 2, rec))
		s.assertVerdict(noAction(models.ReasonServerDisabled), got)
	})

	s.Run("server disabled payload is re-queried after an upgrade", func() {
		rec := models.Record{SubID: 2, Version: 0, RawXML: versDoc(-1, -1), ValidUntil: now}
		got := s.eval.Evaluate(evc(0, 8, rec))
		s.assertVerdict(schedule(2, models.ReasonVersionUpgrade), got)
	})

	s.Run("new version is checked against the recognized set", func() {
		in := evc(2, 9, validRecord(2, 2))
		s.assertVerdict(noAction(models.ReasonUnsupportedVersion), s.eval.Evaluate(in))
	})
}

// =============================================================================
// Scenarios
// =============================================================================
// Justification: the end-to-end verdicts a reviewer checks first.

func (s *EvaluatorSuite) TestScenarios() {
	s.Run("no record and empty binding schedules after reset", func() {
		in := authorized(models.SimLoaded(1, 0))

		got := s.eval.Evaluate(in)

		s.Equal(models.ScheduleQuery(1, models.ReasonSimChanged), got.Outcome)
		s.True(got.ResetRecord)
	})

	s.Run("expired record but no reboot", func() {
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, 7)
		in.Record = expiredRecord(2, 2)

		s.Equal(models.OutcomeNoAction, s.eval.Evaluate(in).Outcome.Kind)
	})

	s.Run("upgrade from zero to eight schedules", func() {
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, 6)
		in.Record = validRecord(2, 0)
		in.ConfiguredVersion = domain.EntitlementVersionEight

		s.Equal(models.ScheduleQuery(2, models.ReasonVersionUpgrade), s.eval.Evaluate(in).Outcome)
	})

	s.Run("upgrade from zero to two keeps a server disabled record", func() {
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, 6)
		in.Record = models.Record{SubID: 2, Version: 0, RawXML: versDoc(-1, -1), ValidUntil: now}
		in.ConfiguredVersion = domain.EntitlementVersionTwo

		got := s.eval.Evaluate(in)

		s.Equal(models.NoAction(models.ReasonServerDisabled), got.Outcome)
		s.True(got.RecordBootCount)
	})

	s.Run("upgrade from zero to eight re-queries a server disabled record", func() {
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, 6)
		in.Record = models.Record{SubID: 2, Version: 0, RawXML: versDoc(-1, -1), ValidUntil: now}
		in.ConfiguredVersion = domain.EntitlementVersionEight

		got := s.eval.Evaluate(in)

		s.Equal(models.ScheduleQuery(2, models.ReasonVersionUpgrade), got.Outcome)
		s.True(got.RecordBootCount)
	})

	s.Run("upgrade to a version outside the recognized set is ignored", func() {
		eval := New(domain.NewVersionSet(domain.EntitlementVersionEight))
		in := authorized(models.BootCompleted(0))
		in.Event.SubID = 2
		in.Slot = boundSlot(0, 2, 6)
		in.Record = validRecord(2, 0)
		in.ConfiguredVersion = domain.EntitlementVersionTwo

		got := eval.Evaluate(in)

		s.assertVerdict(noAction(models.ReasonUnsupportedVersion), got)
	})

	s.Run("carrier config change on an already bound slot", func() {
		in := authorized(models.CarrierConfigChanged(2, 1))
		in.Slot = boundSlot(1, 2, 7)
		in.Record = validRecord(2, 2)

		got := s.eval.Evaluate(in)

		s.assertVerdict(noAction(models.ReasonSameSubscription), got)
		s.False(got.ResetRecord)
	})
}

// =============================================================================
// Properties
// =============================================================================

func (s *EvaluatorSuite) TestMissingOrExpiredAlwaysSchedules() {
	records := []models.Record{
		models.EmptyRecord(3),
		expiredRecord(3, 2),
		{SubID: 3, Version: 8, RawXML: versDoc(8, 60), ValidUntil: now.Add(-time.Second)},
	}
	for i, rec := range records {
		s.Run(fmt.Sprintf("sim loaded on bound slot #%d", i), func() {
			in := authorized(models.SimLoaded(3, 0))
			in.Slot = boundSlot(0, 3, 7)
			in.Record = rec
			s.Equal(models.OutcomeScheduleQuery, s.eval.Evaluate(in).Outcome.Kind)
		})
		s.Run(fmt.Sprintf("sim loaded on fresh slot #%d", i), func() {
			in := authorized(models.SimLoaded(3, 0))
			in.Record = rec
			s.Equal(models.OutcomeScheduleQuery, s.eval.Evaluate(in).Outcome.Kind)
		})
		s.Run(fmt.Sprintf("boot after reboot #%d", i), func() {
			in := authorized(models.BootCompleted(0))
			in.Event.SubID = 3
			in.Slot = boundSlot(0, 3, 1)
			in.Record = rec
			s.Equal(models.OutcomeScheduleQuery, s.eval.Evaluate(in).Outcome.Kind)
		})
	}
}

func (s *EvaluatorSuite) TestRepeatedCarrierConfigChangeIsStable() {
	for _, configured := range []domain.EntitlementVersion{2, 8} {
		in := authorized(models.CarrierConfigChanged(4, 1))
		in.Slot = boundSlot(1, 4, 7)
		in.Record = validRecord(4, 8)
		in.ConfiguredVersion = configured
		for i := 0; i < 3; i++ {
			s.assertVerdict(noAction(models.ReasonSameSubscription), s.eval.Evaluate(in))
		}
	}
}

// =============================================================================
// Response evaluation
// =============================================================================

func (s *EvaluatorSuite) TestEvaluateResponse() {
	tests := []struct {
		name    string
		raw     string
		userOn  bool
		want    models.Outcome
		subject domain.SubID
	}{
		{"revoked while user has wfc on", appDoc(0), true,
			models.ApplyWfc(5, false, true, models.ReasonEntitlementRevoked).WithCarrierDefaultReset(), 5},
		{"incompatible while user has wfc on", appDoc(2), true,
			models.ApplyWfc(5, false, true, models.ReasonEntitlementRevoked).WithCarrierDefaultReset(), 5},
		{"revoked while user has wfc off", appDoc(0), false, models.NoAction(models.ReasonWfcAlreadyOff), 5},
		{"granted", appDoc(1), true, models.NoAction(models.ReasonEntitlementGranted), 5},
		{"no application characteristic", versDoc(2, 60), true, models.NoAction(models.ReasonNoRecord), 5},
		{"malformed payload", "<nope", true, models.NoAction(models.ReasonNoRecord), 5},
		{"invalid subscription", appDoc(0), true, models.NoAction(models.ReasonInvalidSubscription), domain.InvalidSubID},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			got := s.eval.EvaluateResponse(ResponseInput{
				SubID:            tt.subject,
				Record:           models.Record{SubID: tt.subject, Version: 2, RawXML: tt.raw},
				WfcEnabledByUser: tt.userOn,
			})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				s.Failf("outcome mismatch", "(-want +got):\n%s", diff)
			}
		})
	}
}

func (s *EvaluatorSuite) TestNewDefaultsEmptyVersionSet() {
	eval := New(nil)
	in := authorized(models.SimLoaded(1, 0))
	in.ConfiguredVersion = domain.EntitlementVersionEight
	s.Equal(models.OutcomeScheduleQuery, eval.Evaluate(in).Outcome.Kind)
}
