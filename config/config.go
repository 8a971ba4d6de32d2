package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del daemon de agentes.
type Config struct {
	Agents     AgentsConfig     `yaml:"agents"`
	Rules      RulesConfig      `yaml:"rules"`
	Kalshi     KalshiConfig     `yaml:"kalshi"`
	Polymarket PolymarketConfig `yaml:"polymarket"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Storage    StorageConfig    `yaml:"storage"`
	Notify     NotifyConfig     `yaml:"notify"`
	Log        LogConfig        `yaml:"log"`
}

// AgentsConfig controla los intervalos de ejecución y la concurrencia.
type AgentsConfig struct {
	Workers                   int `yaml:"workers"`
	DiscoveryIntervalMinutes  int `yaml:"discovery_interval_minutes"`
	CollectionIntervalMinutes int `yaml:"collection_interval_minutes"`
	AnalyzerIntervalMinutes   int `yaml:"analyzer_interval_minutes"`
	AlertIntervalMinutes      int `yaml:"alert_interval_minutes"`
	InsightIntervalMinutes    int `yaml:"insight_interval_minutes"`
	TraderIntervalMinutes     int `yaml:"trader_interval_minutes"`
	WhaleIntervalMinutes      int `yaml:"whale_interval_minutes"`
}

// RulesConfig son los umbrales del motor de alertas.
type RulesConfig struct {
	PriceMoveThreshold    float64  `yaml:"price_move_threshold"`    // 0.05 = 5 centavos
	VolumeSpikePct        float64  `yaml:"volume_spike_pct"`        // 0.50 = +50%
	ArbitrageGapThreshold float64  `yaml:"arbitrage_gap_threshold"` // 0.05 = 5 centavos
	CloseHoursThreshold   float64  `yaml:"close_hours_threshold"`   // horas antes del cierre
	Keywords              []string `yaml:"keywords"`
	WhaleTradeUSDC        float64  `yaml:"whale_trade_usdc"` // trade mínimo para registrar
}

// KalshiConfig contiene las credenciales y el base URL de Kalshi.
// Sin api_key_id o private_key_path el venue queda deshabilitado.
type KalshiConfig struct {
	APIKeyID       string `yaml:"api_key_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
	BaseURL        string `yaml:"base_url"`
}

// Enabled indica si hay credenciales suficientes para usar el venue.
func (k KalshiConfig) Enabled() bool {
	return k.APIKeyID != "" && k.PrivateKeyPath != ""
}

// PolymarketConfig contiene los base URLs de las tres APIs públicas.
type PolymarketConfig struct {
	GammaBase string `yaml:"gamma_base"`
	CLOBBase  string `yaml:"clob_base"`
	DataBase  string `yaml:"data_base"`
}

// OpenAIConfig configura el cliente LLM. Sin api_key los agentes que
// dependen del LLM saltan su parte cualitativa.
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// StorageConfig selecciona el backend de persistencia.
type StorageConfig struct {
	Backend string `yaml:"backend"` // sqlite | postgres
	DSN     string `yaml:"dsn"`     // ruta SQLite o URL postgres://
}

// NotifyConfig configura la entrega de notificaciones por run.
type NotifyConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
	ConsoleTable    bool   `yaml:"console_table"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno sobreescriben el YAML: las credenciales
// nunca viven en el archivo versionado.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

// Intervalo de cada agente como time.Duration.
func (a AgentsConfig) DiscoveryInterval() time.Duration {
	return time.Duration(a.DiscoveryIntervalMinutes) * time.Minute
}
func (a AgentsConfig) CollectionInterval() time.Duration {
	return time.Duration(a.CollectionIntervalMinutes) * time.Minute
}
func (a AgentsConfig) AnalyzerInterval() time.Duration {
	return time.Duration(a.AnalyzerIntervalMinutes) * time.Minute
}
func (a AgentsConfig) AlertInterval() time.Duration {
	return time.Duration(a.AlertIntervalMinutes) * time.Minute
}
func (a AgentsConfig) InsightInterval() time.Duration {
	return time.Duration(a.InsightIntervalMinutes) * time.Minute
}
func (a AgentsConfig) TraderInterval() time.Duration {
	return time.Duration(a.TraderIntervalMinutes) * time.Minute
}
func (a AgentsConfig) WhaleInterval() time.Duration {
	return time.Duration(a.WhaleIntervalMinutes) * time.Minute
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KALSHI_API_KEY_ID"); v != "" {
		cfg.Kalshi.APIKeyID = v
	}
	if v := os.Getenv("KALSHI_PRIVATE_KEY_PATH"); v != "" {
		cfg.Kalshi.PrivateKeyPath = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notify.SlackWebhookURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.Backend = "postgres"
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	a := &cfg.Agents
	if a.Workers <= 0 {
		a.Workers = 10
	}
	if a.DiscoveryIntervalMinutes <= 0 {
		a.DiscoveryIntervalMinutes = 30
	}
	if a.CollectionIntervalMinutes <= 0 {
		a.CollectionIntervalMinutes = 5
	}
	if a.AnalyzerIntervalMinutes <= 0 {
		a.AnalyzerIntervalMinutes = 15
	}
	if a.AlertIntervalMinutes <= 0 {
		a.AlertIntervalMinutes = 5
	}
	if a.InsightIntervalMinutes <= 0 {
		a.InsightIntervalMinutes = 60
	}
	if a.TraderIntervalMinutes <= 0 {
		a.TraderIntervalMinutes = 30
	}
	if a.WhaleIntervalMinutes <= 0 {
		a.WhaleIntervalMinutes = 5
	}

	r := &cfg.Rules
	if r.PriceMoveThreshold <= 0 {
		r.PriceMoveThreshold = 0.05
	}
	if r.VolumeSpikePct <= 0 {
		r.VolumeSpikePct = 0.50
	}
	if r.ArbitrageGapThreshold <= 0 {
		r.ArbitrageGapThreshold = 0.05
	}
	if r.CloseHoursThreshold <= 0 {
		r.CloseHoursThreshold = 24
	}
	if len(r.Keywords) == 0 {
		r.Keywords = []string{"election", "fed", "rate", "bitcoin", "trump"}
	}
	if r.WhaleTradeUSDC <= 0 {
		r.WhaleTradeUSDC = 5000
	}

	if cfg.Kalshi.BaseURL == "" {
		cfg.Kalshi.BaseURL = "https://api.elections.kalshi.com/trade-api/v2"
	}
	if cfg.Polymarket.GammaBase == "" {
		cfg.Polymarket.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Polymarket.CLOBBase == "" {
		cfg.Polymarket.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.Polymarket.DataBase == "" {
		cfg.Polymarket.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.Temperature <= 0 {
		cfg.OpenAI.Temperature = 0.3
	}
	if cfg.OpenAI.MaxTokens <= 0 {
		cfg.OpenAI.MaxTokens = 2000
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "markets.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
