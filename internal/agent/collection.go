package agent

// collection.go — agente de colección de precios.
//
// Este es el fan-out grande: una llamada de quote por mercado tracked,
// acotada por el worker pool. Los fallos individuales se anotan y el
// mercado queda sin update hasta el siguiente ciclo; al final hay
// exactamente dos escrituras batch (markets actualizados + snapshots).

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

// errSkip marca un mercado sin venue configurado: se salta sin contarlo
// como error.
var errSkip = errors.New("venue not configured")

// CollectionAgent captura snapshots de precio para todos los mercados activos.
type CollectionAgent struct{}

// NewCollectionAgent crea el agente de collection.
func NewCollectionAgent() *CollectionAgent { return &CollectionAgent{} }

// Name devuelve el identificador del agente.
func (a *CollectionAgent) Name() string { return "collection" }

// Execute cotiza cada mercado activo contra su venue y persiste el batch.
func (a *CollectionAgent) Execute(ctx context.Context, rc *RunContext) (*Result, error) {
	markets, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{Status: domain.MarketStatusActive})
	if err != nil {
		return nil, fmt.Errorf("agent.Collection: load markets: %w", err)
	}

	type quoted struct {
		market domain.Market
		quote  ports.Quote
	}

	outcomes := FanOut(ctx, markets, rc.Workers, func(ctx context.Context, m domain.Market) (quoted, error) {
		venue := a.venueFor(rc, m.Platform)
		if venue == nil {
			return quoted{}, errSkip
		}
		q, err := venue.GetQuote(ctx, m)
		if err != nil {
			return quoted{}, err
		}
		return quoted{market: m, quote: q}, nil
	})

	var updated []domain.Market
	var snapshots []domain.Snapshot
	var errs []string
	capturedAt := time.Now().UTC()

	for _, o := range outcomes {
		if errors.Is(o.Err, errSkip) {
			continue // venue no configurado: no es un error
		}
		if o.Err != nil {
			errs = append(errs, fmt.Sprintf("%s %s: %v", o.Item.Platform, o.Item.PlatformID, o.Err))
			continue
		}

		m, q := o.Result.market, o.Result.quote
		if q.YesPrice != nil {
			m.YesPrice = q.YesPrice
		}
		if q.NoPrice != nil {
			m.NoPrice = q.NoPrice
		}
		if q.Volume != nil {
			m.Volume = q.Volume
		}
		m.LastUpdated = capturedAt
		updated = append(updated, m)

		var spread *float64
		if q.BestBid != nil && q.BestAsk != nil {
			s := *q.BestAsk - *q.BestBid
			spread = &s
		}
		snapshots = append(snapshots, domain.Snapshot{
			MarketID:     m.ID,
			YesPrice:     m.YesPrice,
			NoPrice:      m.NoPrice,
			Volume:       m.Volume,
			OpenInterest: q.OpenInterest,
			BestBid:      q.BestBid,
			BestAsk:      q.BestAsk,
			Spread:       spread,
			CapturedAt:   capturedAt,
		})
	}

	if len(updated) > 0 {
		if _, err := rc.Store.UpsertMarketsBatch(ctx, updated); err != nil {
			return nil, fmt.Errorf("agent.Collection: upsert markets: %w", err)
		}
	}
	stored := 0
	if len(snapshots) > 0 {
		n, err := rc.Store.InsertSnapshotsBatch(ctx, snapshots)
		if err != nil {
			return nil, fmt.Errorf("agent.Collection: insert snapshots: %w", err)
		}
		stored = n
	}

	errSummary := ""
	if len(errs) > 0 {
		errSummary = fmt.Sprintf(" (%d errors)", len(errs))
	}
	return &Result{
		ItemsProcessed: stored,
		Summary:        fmt.Sprintf("Collected %d price snapshots%s.", stored, errSummary),
		Data: map[string]any{
			"snapshots_created": stored,
			"errors":            capErrors(errs),
		},
	}, nil
}

// venueFor resuelve el cliente de venue para una plataforma.
func (a *CollectionAgent) venueFor(rc *RunContext, platform string) Venue {
	switch platform {
	case domain.PlatformKalshi:
		if rc.Kalshi != nil {
			return rc.Kalshi
		}
	case domain.PlatformPolymarket:
		if rc.Polymarket != nil {
			return rc.Polymarket
		}
	}
	return nil
}
