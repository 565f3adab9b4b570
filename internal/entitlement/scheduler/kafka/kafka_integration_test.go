//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/scheduler"
	platformkafka "imsse/internal/platform/kafka"
	"imsse/pkg/testutil"
	"imsse/pkg/testutil/containers"
)

const (
	requestTopic = "imsse.test.requests"
	resultTopic  = "imsse.test.results"
)

// TestRoundTrip plays the entitlement server: it answers every request on the
// request topic, and the scheduler task resolves through the result consumer.
func TestRoundTrip(t *testing.T) {
	broker := containers.NewKafkaContainer(t)
	ctx, cancel := context.WithTimeout(testutil.Context(testutil.FixedNow), 60*time.Second)
	defer cancel()

	admin, err := platformkafka.NewClient(broker.Brokers)
	require.NoError(t, err)
	defer admin.Close()
	require.NoError(t, platformkafka.EnsureTopics(ctx, admin, 1, requestTopic, resultTopic))

	producer, err := platformkafka.NewClient(broker.Brokers)
	require.NoError(t, err)
	defer producer.Close()
	dispatcher, err := NewDispatcher(producer, requestTopic)
	require.NoError(t, err)

	sched, err := scheduler.New(dispatcher)
	require.NoError(t, err)
	defer func() { _ = sched.Close() }()

	results, err := platformkafka.NewClient(broker.Brokers,
		kgo.ConsumerGroup("imsse-test"),
		kgo.ConsumeTopics(resultTopic),
	)
	require.NoError(t, err)
	defer results.Close()
	consumer, err := NewResultConsumer(results, sched, nil)
	require.NoError(t, err)

	server, err := platformkafka.NewClient(broker.Brokers,
		kgo.ConsumeTopics(requestTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer server.Close()

	runCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = consumer.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		for runCtx.Err() == nil {
			server.PollFetches(runCtx).EachRecord(func(rec *kgo.Record) {
				var req models.QueryRequest
				if json.Unmarshal(rec.Value, &req) != nil {
					return
				}
				payload, _ := json.Marshal(models.QueryResult{
					RequestID: req.ID,
					SubID:     req.SubID,
					Version:   2,
					RawXML:    "<wap-provisioningdoc/>",
				})
				server.Produce(runCtx, &kgo.Record{Topic: resultTopic, Value: payload}, nil)
			})
		}
	}()

	got, err := sched.Schedule(ctx, 5).Wait(ctx)
	stop()
	wg.Wait()

	require.NoError(t, err)
	require.Equal(t, 5, int(got.SubID))
	require.Equal(t, "<wap-provisioningdoc/>", got.RawXML)
}
