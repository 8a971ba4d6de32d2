package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/themvf/PredictionMarkets/config"
	"github.com/themvf/PredictionMarkets/internal/adapters/kalshi"
	"github.com/themvf/PredictionMarkets/internal/adapters/notify"
	"github.com/themvf/PredictionMarkets/internal/adapters/openai"
	"github.com/themvf/PredictionMarkets/internal/adapters/polymarket"
	"github.com/themvf/PredictionMarkets/internal/adapters/storage"
	"github.com/themvf/PredictionMarkets/internal/agent"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run every agent once and exit")
	agentName := flag.String("agent", "", "run a single agent once and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print alerts as a table on the console notifier")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "backend", cfg.Storage.Backend)
		os.Exit(1)
	}
	defer store.Close()

	slog.Info("agentd starting",
		"config", *configPath,
		"storage", cfg.Storage.Backend,
		"kalshi_enabled", cfg.Kalshi.Enabled(),
		"llm_enabled", cfg.OpenAI.APIKey != "",
		"once", *once,
	)

	newContext := contextFactory(cfg, store)

	registry := agent.NewRegistry()
	registry.Register(agent.NewDiscoveryAgent())
	registry.Register(agent.NewCollectionAgent())
	registry.Register(agent.NewAnalyzerAgent())
	registry.Register(agent.NewAlertAgent())
	registry.Register(agent.NewInsightAgent())
	registry.Register(agent.NewTraderAgent())
	registry.Register(agent.NewWhaleAgent())

	var notifier ports.Notifier
	if cfg.Notify.SlackWebhookURL != "" {
		notifier = notify.NewSlack(cfg.Notify.SlackWebhookURL)
	} else {
		notifier = notify.NewConsole(*table || cfg.Notify.ConsoleTable)
	}

	scheduler := agent.NewScheduler(registry, buildSchedule(cfg.Agents), newContext, notifier)

	switch {
	case *agentName != "":
		scheduler.RunAgent(ctx, *agentName)
	case *once:
		for _, name := range registry.Names() {
			scheduler.RunAgent(ctx, name)
		}
	default:
		scheduler.Run(ctx)
	}

	slog.Info("agentd stopped cleanly")
}

// openStore abre el backend de persistencia configurado.
func openStore(ctx context.Context, cfg config.StorageConfig) (ports.Store, error) {
	if cfg.Backend == "postgres" {
		return storage.NewPostgresStore(ctx, cfg.DSN)
	}
	return storage.NewSQLiteStore(cfg.DSN)
}

// contextFactory construye la función que produce un RunContext fresco por
// ejecución, con los colaboradores que la configuración habilita. Un venue
// sin credenciales queda en nil y sus agentes saltan ese trabajo.
func contextFactory(cfg *config.Config, store ports.Store) func() *agent.RunContext {
	poly := polymarket.NewClient(cfg.Polymarket.GammaBase, cfg.Polymarket.CLOBBase, cfg.Polymarket.DataBase)

	var kalshiClient *kalshi.Client
	if cfg.Kalshi.Enabled() {
		signer, err := kalshi.NewSigner(cfg.Kalshi.APIKeyID, cfg.Kalshi.PrivateKeyPath)
		if err != nil {
			slog.Warn("kalshi disabled: could not load credentials", "err", err)
		} else {
			kalshiClient = kalshi.NewClient(cfg.Kalshi.BaseURL, signer)
		}
	}

	var llmClient ports.LLM
	if cfg.OpenAI.APIKey != "" {
		llmClient = openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model,
			cfg.OpenAI.Temperature, cfg.OpenAI.MaxTokens)
	}

	rules := agent.Rules{
		PriceMoveThreshold: cfg.Rules.PriceMoveThreshold,
		VolumeSpikePct:     cfg.Rules.VolumeSpikePct,
		ArbGapThreshold:    cfg.Rules.ArbitrageGapThreshold,
		CloseHours:         cfg.Rules.CloseHoursThreshold,
		Keywords:           cfg.Rules.Keywords,
		WhaleThresholdUSD:  cfg.Rules.WhaleTradeUSDC,
	}

	return func() *agent.RunContext {
		rc := agent.NewRunContext(store)
		rc.Polymarket = poly
		rc.Trades = poly
		rc.Leaderboard = poly
		if kalshiClient != nil {
			rc.Kalshi = kalshiClient
		}
		rc.LLM = llmClient
		rc.Rules = rules
		rc.Workers = cfg.Agents.Workers
		return rc
	}
}

// buildSchedule traduce los intervalos de la configuración al Schedule
// del paquete agent.
func buildSchedule(a config.AgentsConfig) agent.Schedule {
	return agent.Schedule{
		"discovery":  a.DiscoveryInterval(),
		"collection": a.CollectionInterval(),
		"analyzer":   a.AnalyzerInterval(),
		"alert":      a.AlertInterval(),
		"insight":    a.InsightInterval(),
		"trader":     a.TraderInterval(),
		"whale":      a.WhaleInterval(),
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
