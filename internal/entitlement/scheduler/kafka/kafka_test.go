package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"imsse/internal/entitlement/models"
	"imsse/pkg/testutil"
)

func TestEncodeRequest(t *testing.T) {
	req := models.QueryRequest{ID: uuid.New(), SubID: 3, RequestedAt: testutil.FixedNow}

	t.Run("keys by subscription and carries the request id", func(t *testing.T) {
		rec, err := encodeRequest("requests", req, "req-1")
		require.NoError(t, err)
		assert.Equal(t, "requests", rec.Topic)
		assert.Equal(t, "3", string(rec.Key))
		require.Len(t, rec.Headers, 1)
		assert.Equal(t, kgo.RecordHeader{Key: headerRequestID, Value: []byte("req-1")}, rec.Headers[0])

		var decoded models.QueryRequest
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, req.ID, decoded.ID)
		assert.True(t, req.RequestedAt.Equal(decoded.RequestedAt))
	})

	t.Run("omits the header without a request id", func(t *testing.T) {
		rec, err := encodeRequest("requests", req, "")
		require.NoError(t, err)
		assert.Empty(t, rec.Headers)
	})
}

func TestDecodeResult(t *testing.T) {
	t.Run("decodes a server answer", func(t *testing.T) {
		id := uuid.New()
		rec := &kgo.Record{Value: []byte(`{"request_id":"` + id.String() + `","sub_id":1,"entitlement_version":8,"raw_xml":"<x/>"}`)}
		got, err := decodeResult(rec)
		require.NoError(t, err)
		assert.Equal(t, models.QueryResult{RequestID: id, SubID: 1, Version: 8, RawXML: "<x/>"}, got)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		_, err := decodeResult(&kgo.Record{Value: []byte(`{`), Timestamp: time.Now()})
		assert.Error(t, err)
	})

	t.Run("rejects invalid subscription", func(t *testing.T) {
		_, err := decodeResult(&kgo.Record{Value: []byte(`{"sub_id":-1}`)})
		assert.Error(t, err)
	})
}
