package polymarket

// clob.go — quotes puntuales vía CLOB API.
// El token YES se resuelve desde el clobTokenIds guardado en RawData
// durante discovery; sin token no hay quote y el ciclo de collection
// conserva los precios de Gamma.

import (
	"context"
	"fmt"
	"strconv"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

// GetQuote obtiene midpoint y mejor bid/ask del token YES del mercado.
func (c *Client) GetQuote(ctx context.Context, m domain.Market) (ports.Quote, error) {
	tokenID := yesTokenID(m)
	if tokenID == "" {
		// Sin token CLOB: el quote son los precios que ya trae el mercado
		return ports.Quote{
			YesPrice: m.YesPrice,
			NoPrice:  m.NoPrice,
			Volume:   m.Volume,
		}, nil
	}

	q := ports.Quote{NoPrice: m.NoPrice, Volume: m.Volume}

	var mid midpointResponse
	url := fmt.Sprintf("%s/midpoint?token_id=%s", c.clobBase, tokenID)
	if err := c.get(ctx, c.clobLimiter, url, &mid); err != nil {
		return ports.Quote{}, fmt.Errorf("polymarket.GetQuote: midpoint %s: %w", m.PlatformID, err)
	}
	if f, err := strconv.ParseFloat(mid.Mid, 64); err == nil {
		yes := f
		q.YesPrice = &yes
		no := 1 - f
		q.NoPrice = &no
	}

	// El book es best-effort: sin book sigue habiendo quote de midpoint
	var book bookResponse
	url = fmt.Sprintf("%s/book?token_id=%s", c.clobBase, tokenID)
	if err := c.get(ctx, c.clobLimiter, url, &book); err == nil {
		q.BestBid = bestLevel(book.Bids)
		q.BestAsk = bestLevel(book.Asks)
	}

	if q.YesPrice == nil {
		q.YesPrice = m.YesPrice
	}
	return q, nil
}

// yesTokenID extrae el primer clobTokenId del payload raw de discovery.
func yesTokenID(m domain.Market) string {
	if m.RawData == "" {
		return ""
	}
	var gm gammaMarket
	if err := unmarshalRaw(m.RawData, &gm); err != nil {
		return ""
	}
	tokens := asStringSlice(gm.ClobTokenIDs)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

func bestLevel(levels []bookLevel) *float64 {
	if len(levels) == 0 {
		return nil
	}
	f, err := strconv.ParseFloat(levels[0].Price, 64)
	if err != nil {
		return nil
	}
	return &f
}
