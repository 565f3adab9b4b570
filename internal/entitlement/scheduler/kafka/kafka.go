// Package kafka carries entitlement queries over Kafka: requests are produced
// keyed by subscription, results are consumed from a reply topic and handed to
// the scheduler.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"imsse/internal/entitlement/models"
	"imsse/pkg/platform/sentinel"
	"imsse/pkg/requestcontext"
)

const headerRequestID = "request_id"

// Dispatcher produces query requests. It implements scheduler.Dispatcher.
type Dispatcher struct {
	client *kgo.Client
	topic  string
}

// NewDispatcher creates a producer for topic.
func NewDispatcher(client *kgo.Client, topic string) (*Dispatcher, error) {
	if client == nil {
		return nil, errors.New("kafka client is required")
	}
	if topic == "" {
		return nil, errors.New("request topic is required")
	}
	return &Dispatcher{client: client, topic: topic}, nil
}

// Dispatch blocks until the broker acknowledged the request.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.QueryRequest) error {
	rec, err := encodeRequest(d.topic, req, requestcontext.RequestID(ctx))
	if err != nil {
		return err
	}
	if err := d.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce query %s: %w", req.ID, err)
	}
	return nil
}

func encodeRequest(topic string, req models.QueryRequest, requestID string) (*kgo.Record, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode query request: %w", err)
	}
	rec := &kgo.Record{
		Topic: topic,
		Key:   []byte(req.SubID.String()),
		Value: payload,
	}
	if requestID != "" {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: headerRequestID, Value: []byte(requestID)})
	}
	return rec, nil
}

func decodeResult(rec *kgo.Record) (models.QueryResult, error) {
	var result models.QueryResult
	if err := json.Unmarshal(rec.Value, &result); err != nil {
		return models.QueryResult{}, fmt.Errorf("decode query result at %s/%d@%d: %w", rec.Topic, rec.Partition, rec.Offset, err)
	}
	if !result.SubID.IsValid() {
		return models.QueryResult{}, fmt.Errorf("query result at %s/%d@%d has invalid sub_id %d", rec.Topic, rec.Partition, rec.Offset, result.SubID)
	}
	return result, nil
}

// Resolver settles a pending query.
type Resolver interface {
	Resolve(result models.QueryResult) error
}

// ResultConsumer polls the result topic until its context ends or the client
// closes. The client must be created with kgo.ConsumeTopics for that topic.
type ResultConsumer struct {
	client   *kgo.Client
	resolver Resolver
	logger   *slog.Logger
}

// NewResultConsumer creates a consumer that resolves results through resolver.
func NewResultConsumer(client *kgo.Client, resolver Resolver, logger *slog.Logger) (*ResultConsumer, error) {
	if client == nil {
		return nil, errors.New("kafka client is required")
	}
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultConsumer{client: client, resolver: resolver, logger: logger}, nil
}

// Run blocks until ctx is cancelled. Malformed and unmatched results are
// logged and skipped.
func (c *ResultConsumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.WarnContext(ctx, "kafka fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			c.handle(ctx, rec)
		})
	}
}

func (c *ResultConsumer) handle(ctx context.Context, rec *kgo.Record) {
	result, err := decodeResult(rec)
	if err != nil {
		c.logger.WarnContext(ctx, "skipping query result", "error", err)
		return
	}
	if err := c.resolver.Resolve(result); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, sentinel.ErrNotFound) {
			level = slog.LevelDebug
		}
		c.logger.Log(ctx, level, "query result not applied",
			"sub_id", result.SubID,
			"query_id", result.RequestID,
			"error", err,
		)
	}
}
