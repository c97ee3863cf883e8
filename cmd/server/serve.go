package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/thejerf/suture/v4"

	annhandler "github.com/leynos/wildside-sub003/internal/annotations/handler"
	annservice "github.com/leynos/wildside-sub003/internal/annotations/service"
	annstore "github.com/leynos/wildside-sub003/internal/annotations/store"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/enrichment"
	enrichhandler "github.com/leynos/wildside-sub003/internal/enrichment/handler"
	enrichmetrics "github.com/leynos/wildside-sub003/internal/enrichment/metrics"
	enrichstore "github.com/leynos/wildside-sub003/internal/enrichment/store"
	"github.com/leynos/wildside-sub003/internal/overpass"
	"github.com/leynos/wildside-sub003/internal/platform/config"
	"github.com/leynos/wildside-sub003/internal/platform/httpserver"
	"github.com/leynos/wildside-sub003/internal/platform/kafka"
	"github.com/leynos/wildside-sub003/internal/platform/logger"
	"github.com/leynos/wildside-sub003/internal/platform/metrics"
	"github.com/leynos/wildside-sub003/internal/platform/redis"
	"github.com/leynos/wildside-sub003/internal/platform/sqldb"
	"github.com/leynos/wildside-sub003/internal/routes/cache"
	routeshandler "github.com/leynos/wildside-sub003/internal/routes/handler"
	routemetrics "github.com/leynos/wildside-sub003/internal/routes/metrics"
	"github.com/leynos/wildside-sub003/internal/routes/models"
	"github.com/leynos/wildside-sub003/internal/routes/queue"
	routeservice "github.com/leynos/wildside-sub003/internal/routes/service"
	routestore "github.com/leynos/wildside-sub003/internal/routes/store"
	httptransport "github.com/leynos/wildside-sub003/internal/transport/http"
	usershandler "github.com/leynos/wildside-sub003/internal/users/handler"
	usersservice "github.com/leynos/wildside-sub003/internal/users/service"
	usersstore "github.com/leynos/wildside-sub003/internal/users/store"
	"github.com/leynos/wildside-sub003/pkg/platform/tx"
)

func serveCmd() *cobra.Command {
	var (
		configPath   string
		ensureSchema bool
		ensureTopic  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the enrichment consumer and the idempotency purger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, ensureSchema, ensureTopic)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default $"+config.PathEnvVar+")")
	cmd.Flags().BoolVar(&ensureSchema, "ensure-schema", false, "create missing tables before serving")
	cmd.Flags().BoolVar(&ensureTopic, "ensure-topic", false, "create the route job topic before serving")
	return cmd
}

// app holds what serve has opened so it can be released in one place.
type app struct {
	closers []io.Closer
}

func (a *app) onClose(c io.Closer) { a.closers = append(a.closers, c) }

func (a *app) close(log zerolog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("shutdown: close failed")
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func serve(ctx context.Context, cfg *config.Config, ensureSchema, ensureTopic bool) error {
	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	a := &app{}
	defer a.close(log)

	db, err := sqldb.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	a.onClose(db)
	if ensureSchema {
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	reg := metrics.New()
	routeMetrics := routemetrics.New(reg.Registry)
	health := map[string]httptransport.HealthCheck{"database": db.PingContext}

	planCache, err := newRouteCache(ctx, cfg, a, health)
	if err != nil {
		return err
	}

	producerClient, err := kafka.NewProducerClient(cfg.Kafka)
	if err != nil {
		return err
	}
	a.onClose(closerFunc(func() error { producerClient.Close(); return nil }))
	if ensureTopic {
		if err := kafka.EnsureTopic(ctx, producerClient, cfg.Kafka); err != nil {
			return err
		}
	}
	health["kafka"] = producerClient.Ping
	routeQueue := queue.New(kafka.NewProducer(producerClient, cfg.Kafka.Topic))

	plans := routestore.NewPlanStore(db)
	idempotency := routestore.NewIdempotencyStore(db)
	runner := tx.Runner{DB: db.DB}

	routeSvc, err := routeservice.New(routeQueue, plans, idempotency,
		routeservice.WithLogger(log),
		routeservice.WithMetrics(routeMetrics),
		routeservice.WithTransactor(runner),
	)
	if err != nil {
		return err
	}

	source, err := overpass.New(cfg.Overpass, overpass.WithLogger(log))
	if err != nil {
		return err
	}
	provenance := enrichstore.NewProvenanceStore(db)
	worker, err := enrichment.New[models.Plan](source, plans, planCache, provenance, routeMetrics,
		models.Merger(time.Now), cfg.Enrichment,
		enrichment.WithLogger(log),
		enrichment.WithMetrics(enrichmetrics.New(reg.Registry)),
	)
	if err != nil {
		return err
	}
	a.onClose(closerFunc(func() error { worker.Close(); return nil }))

	jobs, err := queue.NewJobHandler(worker, routeQueue,
		queue.WithRetryDelay(cfg.Kafka.RetryDelay),
		queue.WithMaxDeliveries(cfg.Kafka.MaxDeliveries),
		queue.WithLogger(log),
		queue.WithMetrics(routeMetrics),
	)
	if err != nil {
		return err
	}
	consumerClient, err := kafka.NewConsumerClient(cfg.Kafka)
	if err != nil {
		return err
	}
	a.onClose(closerFunc(func() error { consumerClient.Close(); return nil }))
	consumer := kafka.NewConsumer(consumerClient, jobs,
		kafka.WithConcurrency(cfg.Kafka.Concurrency),
		kafka.WithLogger(log),
	)

	annotationSvc, err := annservice.New(annstore.New(db), idempotency,
		annservice.WithLogger(log),
		annservice.WithTransactor(runner),
	)
	if err != nil {
		return err
	}
	registrar, err := usersservice.NewRegistrar(usersservice.NewOnboarding(), usersstore.New(db),
		usersservice.WithLogger(log),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Server:  cfg.Server,
		Logger:  log,
		Metrics: reg,
		Health:  health,
		Modules: []httptransport.Module{
			routeshandler.New(routeSvc, log),
			annhandler.New(annotationSvc, log),
			enrichhandler.New(provenance, log),
			usershandler.New(registrar, log),
			usershandler.NewSocket(registrar, cfg.Server.CORSOrigins, log),
		},
	})

	root := suture.New("wildside", suture.Spec{EventHook: eventHook(log), Timeout: cfg.Server.ShutdownTimeout})
	api := suture.NewSimple("api")
	background := suture.NewSimple("background")
	root.Add(api)
	root.Add(background)
	api.Add(httpserver.New(cfg.Server, router, log))
	background.Add(named{Service: consumer, name: "route-consumer"})
	background.Add(named{
		Service: routeservice.NewPurger(routeSvc, cfg.Idempotency.TTL, cfg.Idempotency.PurgeInterval, log),
		name:    "idempotency-purger",
	})

	log.Info().Str("addr", cfg.Server.Addr).Str("cache", cfg.Cache.Backend).Msg("wildside starting")
	err = root.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("wildside stopped")
		return nil
	}
	return err
}

// newRouteCache builds the configured plan cache and registers its health
// check when the backend is remote.
func newRouteCache(ctx context.Context, cfg *config.Config, a *app, health map[string]httptransport.HealthCheck) (ports.RouteCache[models.Plan], error) {
	switch cfg.Cache.Backend {
	case "redis":
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.onClose(client)
		health["redis"] = client.Health
		return cache.NewRedis[models.Plan](client.Client, cfg.Cache.KeyPrefix, cfg.Cache.TTL), nil
	case "badger":
		db, err := cache.OpenBadger(cfg.Cache.BadgerPath)
		if err != nil {
			return nil, err
		}
		a.onClose(closerFunc(db.Close))
		return cache.NewBadger[models.Plan](db, cfg.Cache.KeyPrefix, cfg.Cache.TTL), nil
	case "memory":
		return cache.NewMemory[models.Plan](cfg.Cache.TTL, time.Now), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// named gives a service a stable name in supervisor events.
type named struct {
	suture.Service
	name string
}

func (n named) String() string { return n.name }

func eventHook(log zerolog.Logger) suture.EventHook {
	return func(e suture.Event) {
		log.Warn().Fields(e.Map()).Msg(e.String())
	}
}
