package store

import (
	"context"
	"sync"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
	"imsse/pkg/requestcontext"
)

type memTxKey struct{}

// memTx journals how to restore every entry a transaction overwrote.
type memTx struct {
	undo []func()
}

// InMemoryStore keeps records and slots in maps guarded by one lock.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.SubID]models.Record
	slots   map[domain.SlotID]models.SlotState
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[domain.SubID]models.Record),
		slots:   make(map[domain.SlotID]models.SlotState),
	}
}

func (s *InMemoryStore) Get(_ context.Context, sub domain.SubID) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[sub]; ok {
		return rec, nil
	}
	return models.EmptyRecord(sub), nil
}

func (s *InMemoryStore) Update(ctx context.Context, sub domain.SubID, version domain.EntitlementVersion, rawXML string) (models.Record, error) {
	rec, err := buildRecord(sub, version, rawXML, requestcontext.Now(ctx))
	if err != nil {
		return models.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalRecordLocked(ctx, sub)
	s.records[sub] = rec
	return rec, nil
}

func (s *InMemoryStore) Reset(ctx context.Context, sub domain.SubID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalRecordLocked(ctx, sub)
	delete(s.records, sub)
	return nil
}

func (s *InMemoryStore) Slot(_ context.Context, slot domain.SlotID) (models.SlotState, error) {
	if !slot.IsValid() {
		return models.SlotState{}, dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.slots[slot]; ok {
		return st, nil
	}
	return models.EmptySlot(slot), nil
}

func (s *InMemoryStore) BindSubscription(ctx context.Context, slot domain.SlotID, sub domain.SubID) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalSlotLocked(ctx, slot)
	st := s.slotLocked(slot)
	st.SubID = sub
	s.slots[slot] = st
	return nil
}

func (s *InMemoryStore) RecordBootCount(ctx context.Context, slot domain.SlotID, count int) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalSlotLocked(ctx, slot)
	st := s.slotLocked(slot)
	st.LastBootCount = count
	s.slots[slot] = st
	return nil
}

func (s *InMemoryStore) slotLocked(slot domain.SlotID) models.SlotState {
	if st, ok := s.slots[slot]; ok {
		return st
	}
	return models.EmptySlot(slot)
}

// RunInTx applies writes as they happen and reverts them, newest first, when
// fn fails. A nested call joins the outer transaction.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}
	t := &memTx{}
	if err := fn(context.WithValue(ctx, memTxKey{}, t)); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		return err
	}
	return nil
}

func (s *InMemoryStore) journalRecordLocked(ctx context.Context, sub domain.SubID) {
	t, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return
	}
	prev, existed := s.records[sub]
	t.undo = append(t.undo, func() {
		if existed {
			s.records[sub] = prev
			return
		}
		delete(s.records, sub)
	})
}

func (s *InMemoryStore) journalSlotLocked(ctx context.Context, slot domain.SlotID) {
	t, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return
	}
	prev, existed := s.slots[slot]
	t.undo = append(t.undo, func() {
		if existed {
			s.slots[slot] = prev
			return
		}
		delete(s.slots, slot)
	})
}
