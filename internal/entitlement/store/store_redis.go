package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"imsse/internal/entitlement/models"
	"imsse/pkg/domain"
	dErrors "imsse/pkg/domain-errors"
	"imsse/pkg/requestcontext"
)

const (
	recordKeyPrefix = "imsse:entitlement:"
	slotKeyPrefix   = "imsse:slot:"

	fieldVersion    = "version"
	fieldRawXML     = "raw_xml"
	fieldValidUntil = "valid_until"
	fieldUpdatedAt  = "updated_at"
	fieldLastSubID  = "last_sub_id"
	fieldLastBoot   = "last_boot_count"
)

// RedisStore keeps each record and slot in its own hash. Updates replace the
// whole hash inside MULTI/EXEC so readers never see a partial record.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

type redisTxKey struct{}

// RunInTx queues the writes fn makes into one MULTI/EXEC. Nothing is sent when
// fn fails. Reads inside fn see the state before the transaction.
func (s *RedisStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(redisTxKey{}).(redis.Pipeliner); ok {
		return fn(ctx)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return fn(context.WithValue(ctx, redisTxKey{}, pipe))
	})
	return err
}

// writer returns the queue of an enclosing transaction, or the client.
func (s *RedisStore) writer(ctx context.Context) redis.Cmdable {
	if pipe, ok := ctx.Value(redisTxKey{}).(redis.Pipeliner); ok {
		return pipe
	}
	return s.client
}

func recordKey(sub domain.SubID) string { return recordKeyPrefix + sub.String() }
func slotKey(slot domain.SlotID) string { return slotKeyPrefix + slot.String() }

func (s *RedisStore) Get(ctx context.Context, sub domain.SubID) (models.Record, error) {
	fields, err := s.client.HGetAll(ctx, recordKey(sub)).Result()
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "read entitlement record")
	}
	if len(fields) == 0 {
		return models.EmptyRecord(sub), nil
	}
	rec := models.EmptyRecord(sub)
	version, err := strconv.Atoi(fields[fieldVersion])
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode entitlement version")
	}
	rec.Version = domain.EntitlementVersion(version)
	rec.RawXML = fields[fieldRawXML]
	if rec.ValidUntil, err = parseMillis(fields[fieldValidUntil]); err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode validity")
	}
	if rec.UpdatedAt, err = parseMillis(fields[fieldUpdatedAt]); err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode update time")
	}
	return rec, nil
}

func (s *RedisStore) Update(ctx context.Context, sub domain.SubID, version domain.EntitlementVersion, rawXML string) (models.Record, error) {
	rec, err := buildRecord(sub, version, rawXML, requestcontext.Now(ctx))
	if err != nil {
		return models.Record{}, err
	}
	values := []any{
		fieldVersion, int(rec.Version),
		fieldUpdatedAt, toMillis(rec.UpdatedAt),
	}
	if rec.HasPayload() {
		values = append(values, fieldRawXML, rec.RawXML, fieldValidUntil, toMillis(rec.ValidUntil))
	}
	key := recordKey(sub)
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		w := s.writer(ctx)
		w.Del(ctx, key)
		w.HSet(ctx, key, values...)
		return nil
	})
	if err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "write entitlement record")
	}
	return rec, nil
}

func (s *RedisStore) Reset(ctx context.Context, sub domain.SubID) error {
	if err := s.writer(ctx).Del(ctx, recordKey(sub)).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "reset entitlement record")
	}
	return nil
}

func (s *RedisStore) Slot(ctx context.Context, slot domain.SlotID) (models.SlotState, error) {
	if !slot.IsValid() {
		return models.SlotState{}, dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	vals, err := s.client.HMGet(ctx, slotKey(slot), fieldLastSubID, fieldLastBoot).Result()
	if err != nil {
		return models.SlotState{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "read slot binding")
	}
	st := models.EmptySlot(slot)
	if sub, ok, err := intField(vals[0]); err != nil {
		return models.SlotState{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode slot binding")
	} else if ok {
		st.SubID = domain.SubID(sub)
	}
	if boot, ok, err := intField(vals[1]); err != nil {
		return models.SlotState{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode boot count")
	} else if ok {
		st.LastBootCount = boot
	}
	return st, nil
}

func (s *RedisStore) BindSubscription(ctx context.Context, slot domain.SlotID, sub domain.SubID) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	if err := s.writer(ctx).HSet(ctx, slotKey(slot), fieldLastSubID, int(sub)).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "write slot binding")
	}
	return nil
}

func (s *RedisStore) RecordBootCount(ctx context.Context, slot domain.SlotID, count int) error {
	if !slot.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid slot id")
	}
	if err := s.writer(ctx).HSet(ctx, slotKey(slot), fieldLastBoot, count).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "write boot count")
	}
	return nil
}

func parseMillis(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return fromMillis(ms), nil
}

func intField(v any) (int, bool, error) {
	if v == nil {
		return 0, false, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, false, fmt.Errorf("unexpected redis value %T", v)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
