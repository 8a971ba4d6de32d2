package agent

// discovery.go — agente de descubrimiento de mercados.
//
// Pide a cada venue sus mercados activos ya normalizados, deduplica por
// clave natural dentro del batch y persiste con un único upsert batch.

import (
	"context"
	"fmt"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

const discoveryMaxPages = 5

// DiscoveryAgent escanea los venues configurados en paralelo.
type DiscoveryAgent struct{}

// NewDiscoveryAgent crea el agente de discovery.
func NewDiscoveryAgent() *DiscoveryAgent { return &DiscoveryAgent{} }

// Name devuelve el identificador del agente.
func (a *DiscoveryAgent) Name() string { return "discovery" }

// Execute descubre mercados de todos los venues disponibles. Un venue que
// falla cuenta como "sin update este ciclo" y se anota, sin abortar el resto.
func (a *DiscoveryAgent) Execute(ctx context.Context, rc *RunContext) (*Result, error) {
	type source struct {
		platform string
		venue    Venue
	}
	var sources []source
	if rc.Kalshi != nil {
		sources = append(sources, source{domain.PlatformKalshi, rc.Kalshi})
	}
	if rc.Polymarket != nil {
		sources = append(sources, source{domain.PlatformPolymarket, rc.Polymarket})
	}
	if len(sources) == 0 {
		return &Result{Summary: "Skipped -- no venue clients configured."}, nil
	}

	outcomes := FanOut(ctx, sources, rc.Workers, func(ctx context.Context, s source) ([]domain.Market, error) {
		return s.venue.GetAllActiveMarkets(ctx, discoveryMaxPages)
	})

	// Dedupe por (platform, platform_id): primera ocurrencia gana.
	seen := make(map[string]bool)
	var batch []domain.Market
	perPlatform := make(map[string]int)
	var errs []string

	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Sprintf("%s discovery: %v", o.Item.platform, o.Err))
			continue
		}
		for _, m := range o.Result {
			key := m.Platform + "/" + m.PlatformID
			if m.PlatformID == "" || seen[key] {
				continue
			}
			seen[key] = true
			batch = append(batch, m)
			perPlatform[m.Platform]++
		}
	}

	stored := 0
	if len(batch) > 0 {
		n, err := rc.Store.UpsertMarketsBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("agent.Discovery: upsert batch: %w", err)
		}
		stored = n
	}

	errSummary := ""
	if len(errs) > 0 {
		errSummary = fmt.Sprintf(" (%d errors)", len(errs))
	}
	return &Result{
		ItemsProcessed: stored,
		Summary:        fmt.Sprintf("Discovered %d markets%s.", stored, errSummary),
		Data: map[string]any{
			"per_platform": perPlatform,
			"errors":       capErrors(errs),
		},
	}, nil
}
