package carriersync

import (
	"fmt"
	"net/http"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-carrier-sync/adapters/gologger"
	"github.com/goliatone/go-carrier-sync/carrier"
	"github.com/goliatone/go-carrier-sync/core"
	sqlstore "github.com/goliatone/go-carrier-sync/store/sql"
	workflowsync "github.com/goliatone/go-carrier-sync/sync"
	"github.com/goliatone/go-carrier-sync/transport"
)

// Service wires the carrier client, the workflow stores, and the sequencer
// into one ready-to-use composition. Every collaborator can be swapped
// through an Option; anything left unset gets the production default.
type Service struct {
	config core.Config

	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder

	adapter   core.TransportAdapter
	client    *carrier.Client
	workflows core.WorkflowStore
	mirror    core.WorkItemMirror
	counter   StatusCounter
	locker    core.WorkItemLocker
	enqueuer  core.JobEnqueuer

	orchestrator *workflowsync.Orchestrator
	planner      *workflowsync.RequeuePlanner
}

type Option func(*serviceOptions)

type serviceOptions struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	metrics        core.MetricsRecorder

	persistenceClient any
	workflows         core.WorkflowStore
	mirror            core.WorkItemMirror
	counter           StatusCounter
	cacheService      repositorycache.CacheService

	adapter    core.TransportAdapter
	httpClient transport.HTTPDoer

	locker   core.WorkItemLocker
	enqueuer core.JobEnqueuer
	now      func() time.Time
}

func WithLogger(logger core.Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(o *serviceOptions) { o.loggerProvider = provider }
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(o *serviceOptions) { o.metrics = metrics }
}

// WithPersistenceClient accepts a *bun.DB or anything exposing one, the
// go-persistence-bun client included. The sql stores are built from it.
func WithPersistenceClient(client any) Option {
	return func(o *serviceOptions) { o.persistenceClient = client }
}

// WithWorkflowStore bypasses the sql store entirely, for tests or custom
// persistence.
func WithWorkflowStore(store core.WorkflowStore) Option {
	return func(o *serviceOptions) { o.workflows = store }
}

func WithWorkItemMirror(mirror core.WorkItemMirror) Option {
	return func(o *serviceOptions) { o.mirror = mirror }
}

func WithStatusCounter(counter StatusCounter) Option {
	return func(o *serviceOptions) { o.counter = counter }
}

// WithCacheService layers the read-through workflow cache over the store.
func WithCacheService(cacheService repositorycache.CacheService) Option {
	return func(o *serviceOptions) { o.cacheService = cacheService }
}

func WithTransportAdapter(adapter core.TransportAdapter) Option {
	return func(o *serviceOptions) { o.adapter = adapter }
}

func WithHTTPClient(client transport.HTTPDoer) Option {
	return func(o *serviceOptions) { o.httpClient = client }
}

func WithWorkItemLocker(locker core.WorkItemLocker) Option {
	return func(o *serviceOptions) { o.locker = locker }
}

// WithJobEnqueuer enables the stuck-workflow resync planner.
func WithJobEnqueuer(enqueuer core.JobEnqueuer) Option {
	return func(o *serviceOptions) { o.enqueuer = enqueuer }
}

func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

func NewService(cfg core.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := serviceOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	provider, logger := gologger.Resolve(cfg.ServiceName, options.loggerProvider, options.logger)

	service := &Service{
		config:         cfg,
		logger:         logger,
		loggerProvider: provider,
		metrics:        options.metrics,
		mirror:         options.mirror,
		counter:        options.counter,
		locker:         options.locker,
		enqueuer:       options.enqueuer,
	}
	if service.metrics == nil {
		service.metrics = core.NopMetricsRecorder{}
	}
	if service.locker == nil {
		service.locker = core.NewMemoryWorkItemLocker()
	}

	service.adapter = options.adapter
	if service.adapter == nil {
		httpClient := options.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Carrier.Timeout}
		}
		service.adapter = transport.NewRetryingAdapter(
			transport.NewRESTAdapter(httpClient),
			cfg.Carrier.MaxRetries,
		)
	}

	if err := service.buildStores(options); err != nil {
		return nil, err
	}

	clientOpts := []carrier.ClientOption{carrier.WithClientLogger(logger)}
	if options.now != nil {
		clientOpts = append(clientOpts, carrier.WithClock(options.now))
	}
	client, err := carrier.NewClient(service.adapter, cfg.Carrier, clientOpts...)
	if err != nil {
		return nil, err
	}
	service.client = client

	orchestrator := workflowsync.NewOrchestrator(service.workflows, client, service.locker)
	orchestrator.Mirror = service.mirror
	orchestrator.Logger = logger
	orchestrator.Metrics = service.metrics
	orchestrator.LockTTL = cfg.Sync.LockTTL
	if options.now != nil {
		orchestrator.Now = options.now
	}
	service.orchestrator = orchestrator

	if service.enqueuer != nil {
		planner := workflowsync.NewRequeuePlanner(service.workflows, service.enqueuer)
		planner.StuckAfter = cfg.Sync.StuckAfter
		planner.MaxAutoRetries = cfg.Sync.MaxAutoRetries
		planner.Logger = logger
		if options.now != nil {
			planner.Now = options.now
		}
		service.planner = planner
	}

	return service, nil
}

func (s *Service) buildStores(options serviceOptions) error {
	s.workflows = options.workflows
	if s.workflows == nil {
		if options.persistenceClient == nil {
			return fmt.Errorf("carriersync: a workflow store or persistence client is required")
		}
		factory := sqlstore.NewRepositoryFactory()
		if err := factory.BuildStores(options.persistenceClient); err != nil {
			return err
		}
		s.workflows = factory.WorkflowStore()
		if s.mirror == nil {
			s.mirror = factory.WorkItemStore()
		}
		if s.counter == nil {
			s.counter = factory.WorkflowStore()
		}
	}
	if s.counter == nil {
		if counter, ok := s.workflows.(StatusCounter); ok {
			s.counter = counter
		}
	}

	if options.cacheService != nil {
		cached, err := sqlstore.NewCachedWorkflowStore(s.workflows, options.cacheService)
		if err != nil {
			return err
		}
		s.workflows = cached
	}
	return nil
}

func (s *Service) Config() core.Config {
	if s == nil {
		return core.Config{}
	}
	return s.config
}

func (s *Service) Logger() core.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

func (s *Service) LoggerProvider() core.LoggerProvider {
	if s == nil {
		return nil
	}
	return s.loggerProvider
}

// Client exposes the composite carrier client, mostly for health checks.
func (s *Service) Client() *carrier.Client {
	if s == nil {
		return nil
	}
	return s.client
}

func (s *Service) Workflows() core.WorkflowStore {
	if s == nil {
		return nil
	}
	return s.workflows
}

func (s *Service) Orchestrator() *workflowsync.Orchestrator {
	if s == nil {
		return nil
	}
	return s.orchestrator
}

// Planner returns the stuck-workflow requeue planner, nil unless a job
// enqueuer was configured.
func (s *Service) Planner() *workflowsync.RequeuePlanner {
	if s == nil {
		return nil
	}
	return s.planner
}
