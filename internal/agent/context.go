package agent

// context.go — contexto de ejecución compartido por un batch de agentes.
//
// Reemplaza el dict mutable clásico por un struct tipado: colaboradores
// explícitos, reglas de alertas y un mapa de resultados con accessor por
// identidad de agente.

import (
	"sync"

	"github.com/themvf/PredictionMarkets/internal/ports"
)

// Venue agrupa las dos capacidades mínimas de un cliente de venue:
// descubrir mercados y cotizar uno concreto.
type Venue interface {
	ports.MarketSource
	ports.QuoteSource
}

// Rules son los umbrales del motor de alertas.
type Rules struct {
	PriceMoveThreshold float64  // movimiento base en precio (0.05 = 5c)
	VolumeSpikePct     float64  // subida relativa sobre la media (0.50 = +50%)
	ArbGapThreshold    float64  // gap efectivo base (0.05 = 5c)
	CloseHours         float64  // ventana de closing-soon en horas
	Keywords           []string // watchlist de títulos
	WhaleThresholdUSD  float64  // valor mínimo de un whale trade
}

// DefaultRules devuelve los umbrales de producción.
func DefaultRules() Rules {
	return Rules{
		PriceMoveThreshold: 0.05,
		VolumeSpikePct:     0.50,
		ArbGapThreshold:    0.05,
		CloseHours:         24,
		Keywords:           []string{"election", "fed", "rate", "bitcoin", "trump"},
		WhaleThresholdUSD:  5000,
	}
}

// RunContext transporta los colaboradores y los resultados de agentes
// ya ejecutados dentro del mismo batch. Los colaboradores opcionales
// (venues, LLM) pueden ser nil: el agente correspondiente se salta su
// trabajo y lo reporta en el summary.
type RunContext struct {
	Store       ports.Store
	Kalshi      Venue
	Polymarket  Venue
	Trades      ports.TradeSource
	Leaderboard ports.LeaderboardSource
	LLM         ports.LLM
	Rules       Rules
	Workers     int // tamaño del worker pool para fan-out; <=0 = default

	mu      sync.RWMutex
	results map[string]*Result
}

// NewRunContext crea un contexto con las reglas por defecto y sin
// colaboradores; el caller inyecta los que tenga.
func NewRunContext(store ports.Store) *RunContext {
	return &RunContext{
		Store: store,
		Rules: DefaultRules(),
	}
}

// ResultOf devuelve el resultado de un agente ya ejecutado en este batch,
// o nil si ese agente aún no corrió.
func (rc *RunContext) ResultOf(agentName string) *Result {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.results[agentName]
}

func (rc *RunContext) setResult(agentName string, r *Result) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.results == nil {
		rc.results = make(map[string]*Result)
	}
	rc.results[agentName] = r
}
