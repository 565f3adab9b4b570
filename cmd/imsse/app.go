package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"

	"imsse/internal/entitlement/carrierconfig"
	"imsse/internal/entitlement/device"
	"imsse/internal/entitlement/evaluator"
	"imsse/internal/entitlement/handler"
	entitlementmetrics "imsse/internal/entitlement/metrics"
	"imsse/internal/entitlement/models"
	"imsse/internal/entitlement/ports"
	"imsse/internal/entitlement/router"
	"imsse/internal/entitlement/scheduler"
	"imsse/internal/entitlement/scheduler/kafka"
	"imsse/internal/entitlement/store"
	"imsse/internal/platform/config"
	platformkafka "imsse/internal/platform/kafka"
	platformmetrics "imsse/internal/platform/metrics"
	"imsse/pkg/platform/circuit"
	"imsse/pkg/platform/httputil"
	"imsse/pkg/platform/middleware/request"
	"imsse/pkg/platform/middleware/requesttime"
)

const (
	batchConcurrency = 4
	topicPartitions  = 1
)

// app is the assembled engine. Components are built in dependency order and
// closed in reverse.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	store    ports.Store
	ping     func(context.Context) error
	sched    *scheduler.Scheduler
	router   *router.Router
	carrier  *carrierconfig.FileSource
	watcher  *carrierconfig.Watcher
	sims     *device.SimStates
	wfc      *device.WfcSettings
	consumer *kafka.ResultConsumer

	httpMetrics *platformmetrics.Metrics
	gatherer    prometheus.Gatherer
	closers     []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{
		cfg:         cfg,
		logger:      logger,
		sims:        device.NewSimStates(),
		wfc:         device.NewWfcSettings(),
		httpMetrics: platformmetrics.NewWithRegisterer(reg),
		gatherer:    reg,
	}
	m := entitlementmetrics.NewWithRegisterer(reg)

	be, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	a.closers = append(a.closers, be.close)
	a.store = store.Instrument(be.store, cfg.Store, m)
	a.ping = be.ping

	dispatcher, err := a.dispatcher(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.sched, err = scheduler.New(dispatcher,
		scheduler.WithTimeout(cfg.QueryTimeout),
		scheduler.WithBreaker(circuit.New("entitlement-dispatch")),
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(m),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, a.sched.Close)

	if cfg.CarrierConfigPath == "" {
		a.carrier = carrierconfig.NewStatic(carrierconfig.File{})
	} else if a.carrier, err = carrierconfig.Load(cfg.CarrierConfigPath); err != nil {
		a.close()
		return nil, fmt.Errorf("load carrier config: %w", err)
	}

	a.router, err = router.New(router.Deps{
		Store:         a.store,
		Scheduler:     a.sched,
		SimStates:     a.sims,
		CarrierConfig: a.carrier,
		BootCounter:   device.NewBootCountFile(cfg.BootCountPath),
		WfcSetting:    a.wfc,
		Actor:         device.Actor(cfg.SystemUser),
	}, evaluator.New(cfg.Versions(), evaluator.WithUpgradeVersion(cfg.Upgrade())),
		router.WithLogger(logger),
		router.WithMetrics(m),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	// Router closes before the scheduler so in-flight completions drain first.
	a.closers = append(a.closers, a.router.Close)

	if a.carrier.Path() != "" {
		a.watcher, err = carrierconfig.NewWatcher(a.carrier, a.onCarrierConfigChanged, carrierconfig.WithLogger(logger))
		if err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

// dispatcher publishes queries to Kafka when brokers are configured. Without
// them queries are only logged and results arrive over HTTP.
func (a *app) dispatcher(ctx context.Context) (scheduler.Dispatcher, error) {
	kc := a.cfg.Kafka
	if !kc.Enabled() {
		return scheduler.NewLogDispatcher(a.logger), nil
	}
	client, err := platformkafka.NewClient(kc.Brokers,
		kgo.ConsumerGroup(kc.Group),
		kgo.ConsumeTopics(kc.ResultTopic),
	)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { client.Close(); return nil })

	if err := platformkafka.EnsureTopics(ctx, client, topicPartitions, kc.RequestTopic, kc.ResultTopic); err != nil {
		return nil, err
	}
	d, err := kafka.NewDispatcher(client, kc.RequestTopic)
	if err != nil {
		return nil, err
	}
	// The scheduler resolves through a closure since it is built after the
	// dispatcher.
	a.consumer, err = kafka.NewResultConsumer(client, resolverFunc(func(r models.QueryResult) error {
		return a.sched.Resolve(r)
	}), a.logger)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type resolverFunc func(models.QueryResult) error

func (f resolverFunc) Resolve(r models.QueryResult) error { return f(r) }

func (a *app) onCarrierConfigChanged(ctx context.Context, events []models.TriggerEvent) {
	for i, outcome := range a.router.HandleBatch(ctx, events, batchConcurrency) {
		a.logger.InfoContext(ctx, "carrier config change evaluated",
			"event", events[i].Kind,
			"sub_id", events[i].SubID,
			"outcome", outcome.Kind,
			"reason", outcome.Reason,
		)
	}
}

// httpHandler mounts the API with the shared middleware stack.
func (a *app) httpHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Logger(a.logger))
	r.Use(requesttime.Middleware)
	r.Use(a.httpMetrics.Middleware)

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	handler.New(a.router, a.store, a.sched, a.sims, a.wfc, a.logger).Register(r)
	return r
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.ping != nil {
		if err := a.ping(r.Context()); err != nil {
			a.logger.WarnContext(r.Context(), "store health check failed", "store", a.cfg.Store, "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// background runs the long-lived loops until ctx ends.
func (a *app) background() []func(context.Context) error {
	var loops []func(context.Context) error
	if a.consumer != nil {
		loops = append(loops, a.consumer.Run)
	}
	if a.watcher != nil {
		loops = append(loops, a.watcher.Run)
	}
	return loops
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
