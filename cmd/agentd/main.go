package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sentinelstack/sentinel-agents/internal/agents"
	"github.com/sentinelstack/sentinel-agents/internal/api"
	"github.com/sentinelstack/sentinel-agents/internal/bus"
	"github.com/sentinelstack/sentinel-agents/internal/cache"
	"github.com/sentinelstack/sentinel-agents/internal/config"
	"github.com/sentinelstack/sentinel-agents/internal/llm"
	"github.com/sentinelstack/sentinel-agents/internal/metrics"
	"github.com/sentinelstack/sentinel-agents/internal/models"
	"github.com/sentinelstack/sentinel-agents/internal/pipeline"
	"github.com/sentinelstack/sentinel-agents/internal/repo"
	"github.com/sentinelstack/sentinel-agents/internal/utils"
)

func main() {
	var agentName, configPath, host string
	flag.StringVar(&agentName, "agent", "", "Agent identity to run (classifier, grounding, ...)")
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&host, "host", "localhost", "Hostname advertised on the agent card")
	flag.Parse()

	if !agents.KnownAgent(agentName) {
		slog.Error("unknown or missing -agent", slog.String("agent", agentName))
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting sentinel agent", slog.String("agent", agentName))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	deps, err := buildDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to build dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.close()

	methods, background, err := buildAgent(agentName, cfg, deps, logger)
	if err != nil {
		logger.Error("failed to build agent", slog.String("agent", agentName), slog.Any("error", err))
		os.Exit(1)
	}

	ports := agents.DefaultPorts[agentName]
	rpcAddr := cfg.Server.RPCAddress
	if rpcAddr == "" {
		rpcAddr = fmt.Sprintf(":%d", ports.RPC)
	}
	cardAddr := cfg.Server.CardAddress
	if cardAddr == "" {
		cardAddr = fmt.Sprintf(":%d", ports.Card)
	}

	card, err := agents.CardFor(agentName, host)
	if err != nil {
		logger.Error("failed to build agent card", slog.Any("error", err))
		os.Exit(1)
	}

	rpcServer := api.NewRPCServer(agentName, rpcAddr, methods, logger)
	cardServer := api.NewCardServer(cardAddr, card, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if serveErr := cardServer.Start(); serveErr != nil {
			logger.Error("card server exited", slog.Any("error", serveErr))
			stop()
		}
	}()
	go func() {
		if serveErr := rpcServer.Start(); serveErr != nil {
			logger.Error("rpc server exited", slog.Any("error", serveErr))
			stop()
		}
	}()
	if background != nil {
		go func() {
			if bgErr := background(ctx); bgErr != nil {
				logger.Error("background loop exited", slog.Any("error", bgErr))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := rpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("rpc server shutdown", slog.Any("error", err))
	}
	if err := cardServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("card server shutdown", slog.Any("error", err))
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("sentinel agent stopped", slog.String("agent", agentName))
}

// dependencies holds the shared collaborator clients an agent process
// may need. Construction is cheap; unused clients simply sit idle.
type dependencies struct {
	cacheProvider cache.Provider
	runner        llm.Runner
	policy        *repo.PolicyClient
	webhook       *repo.WebhookClient
	search        *repo.SearchClient
	warehouse     *repo.WarehouseClient
	cluster       *repo.ClusterClient
	store         repo.EnvelopeStore
	source        bus.Source
	closers       []func() error
}

func (d *dependencies) close() {
	for _, closeFn := range d.closers {
		closeFn()
	}
}

func buildDependencies(cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{cacheProvider: cache.NoopProvider{}}

	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("valkey cache unavailable", slog.Any("error", err))
		} else {
			deps.cacheProvider = provider
			deps.closers = append(deps.closers, provider.Close)
		}
	}

	if cfg.LLM.Enabled && cfg.LLM.Command != "" {
		deps.runner = llm.NewCommandRunner(cfg.LLM.Command, cfg.LLM.Args, cfg.LLM.Timeout, logger)
	}

	deps.policy = repo.NewPolicyClient(cfg.Policy.URL, cfg.Policy.Timeout)
	deps.webhook = repo.NewWebhookClient(cfg.Webhook.URL, cfg.Webhook.Timeout)
	deps.search = repo.NewSearchClient(
		cfg.Search.Endpoint, cfg.Search.APIKey, cfg.Search.Limit,
		cfg.Search.Timeout, cfg.Search.SnippetTTL, deps.cacheProvider, logger,
	)
	deps.warehouse = repo.NewWarehouseClient(cfg.Warehouse.Endpoint, cfg.Warehouse.Timeout)
	deps.cluster = repo.NewClusterClient(cfg.Cluster.Endpoint, cfg.Cluster.Timeout)

	switch cfg.Store.Driver {
	case "sqlite":
		store, err := repo.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		deps.store = store
		deps.closers = append(deps.closers, store.Close)
	default:
		if cfg.Store.Endpoint != "" {
			deps.store = repo.NewHTTPStore(cfg.Store.Endpoint, cfg.Store.Timeout)
		}
	}

	return deps, nil
}

func buildSource(cfg *config.Config, logger *slog.Logger) (bus.Source, error) {
	switch cfg.Bus.Driver {
	case "kafka":
		return bus.NewKafkaSource(cfg.Bus.Brokers, cfg.Bus.Topic, cfg.Bus.GroupID, logger)
	default:
		return bus.NewNATSSource(cfg.Bus.URL, cfg.Bus.Subject, cfg.Bus.Durable, logger)
	}
}

// buildAgent assembles the method table for one agent identity plus an
// optional background loop (the watcher's bus subscription).
func buildAgent(agentName string, cfg *config.Config, deps *dependencies, logger *slog.Logger) (map[string]api.Method, func(context.Context) error, error) {
	switch agentName {
	case "classifier":
		classifier, err := buildClassifier(cfg, deps, logger)
		if err != nil {
			return nil, nil, err
		}
		return map[string]api.Method{"classify": api.ClassifyMethod(classifier)}, nil, nil

	case "grounding":
		grounding := agents.NewGrounding(deps.search, logger)
		return map[string]api.Method{"ground": api.GroundMethod(grounding)}, nil, nil

	case "personalization":
		personalization := agents.NewPersonalization(nil, logger)
		return map[string]api.Method{"personalize": api.PersonalizeMethod(personalization)}, nil, nil

	case "orchestrator":
		orchestrator := agents.NewOrchestrator(deps.store, nil, logger)
		return map[string]api.Method{"orchestrate": api.OrchestrateMethod(orchestrator)}, nil, nil

	case "reasoning":
		reasoning := agents.NewReasoning(deps.runner, logger)
		return map[string]api.Method{"reason": api.ReasonMethod(reasoning)}, nil, nil

	case "policy":
		policy := agents.NewPolicy(deps.policy, logger)
		return map[string]api.Method{"policy_check": api.PolicyCheckMethod(policy)}, nil, nil

	case "executor":
		executor, err := buildExecutor(logger)
		if err != nil {
			return nil, nil, err
		}
		return map[string]api.Method{"execute": api.ExecuteMethod(executor)}, nil, nil

	case "validator":
		validator := agents.NewValidator(buildChecks(deps), logger)
		return map[string]api.Method{"validate": api.ValidateMethod(validator)}, nil, nil

	case "notification":
		notification := agents.NewNotification(deps.webhook, logger)
		return map[string]api.Method{
			"notify":               api.NotifyMethod(notification),
			"notify_with_solution": api.NotifyWithSolutionMethod(notification),
		}, nil, nil

	case "watcher":
		return buildWatcher(cfg, deps, logger)

	case "llmjudge":
		judge := agents.NewJudge(deps.runner, logger)
		return map[string]api.Method{"judge": api.JudgeMethod(judge)}, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown agent: %s", agentName)
}

func buildClassifier(cfg *config.Config, deps *dependencies, logger *slog.Logger) (*agents.Classifier, error) {
	rules := agents.DefaultRules()
	extra, err := agents.LoadRules(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}
	return agents.NewClassifier(append(rules, extra...), deps.runner, logger), nil
}

func buildChecks(deps *dependencies) []agents.Check {
	return []agents.Check{
		agents.WarehouseCheck(deps.warehouse),
		agents.ClusterCheck(deps.cluster),
	}
}

// buildExecutor registers the remediation handlers. The handlers here
// log the intended operation; real integrations replace them per
// deployment.
func buildExecutor(logger *slog.Logger) (*agents.Executor, error) {
	executor := agents.NewExecutor(logger)
	handlers := map[string]agents.ActionHandler{
		"scale": func(_ context.Context, params map[string]any) (any, error) {
			return map[string]any{"status": "scaled", "params": params}, nil
		},
		"restart": func(_ context.Context, params map[string]any) (any, error) {
			return map[string]any{"status": "restarted", "params": params}, nil
		},
		"investigate": func(_ context.Context, params map[string]any) (any, error) {
			return map[string]any{"status": "investigation opened", "params": params}, nil
		},
	}
	for actionType, handler := range handlers {
		if err := executor.Register(actionType, handler); err != nil {
			return nil, err
		}
	}
	return executor, nil
}

// buildWatcher wires the full in-process pipeline as the watcher's
// downstream callback and subscribes to the bus in the background.
func buildWatcher(cfg *config.Config, deps *dependencies, logger *slog.Logger) (map[string]api.Method, func(context.Context) error, error) {
	classifier, err := buildClassifier(cfg, deps, logger)
	if err != nil {
		return nil, nil, err
	}
	executor, err := buildExecutor(logger)
	if err != nil {
		return nil, nil, err
	}

	driver := pipeline.NewDriver(pipeline.Config{
		Classifier:      classifier,
		Grounding:       agents.NewGrounding(deps.search, logger),
		Personalization: agents.NewPersonalization(nil, logger),
		Orchestrator:    agents.NewOrchestrator(deps.store, nil, logger),
		Reasoning:       agents.NewReasoning(deps.runner, logger),
		Policy:          agents.NewPolicy(deps.policy, logger),
		Executor:        executor,
		Validator:       agents.NewValidator(buildChecks(deps), logger),
		Notification:    agents.NewNotification(deps.webhook, logger),
		FlowTimeout:     cfg.Pipeline.FlowTimeout,
		Logger:          logger,
	})

	callback := func(ctx context.Context, signal models.Signal, incident models.Context) error {
		flow, err := driver.Run(ctx, signal, incident)
		if err != nil {
			return err
		}
		if flow.Verdict.Admit {
			metrics.ObserveFlow("executed")
		} else {
			metrics.ObserveFlow("escalated")
		}
		return nil
	}

	source, err := buildSource(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	deps.closers = append(deps.closers, source.Close)

	watcher := agents.NewWatcher(source, callback, logger)
	methods := map[string]api.Method{"ingest": api.IngestMethod(watcher)}
	return methods, watcher.Listen, nil
}
