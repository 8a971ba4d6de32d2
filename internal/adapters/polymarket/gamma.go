package polymarket

// gamma.go — discovery de mercados vía Gamma API.
// Todos los campos de texto se sanean en esta frontera: es la defensa
// primaria contra prompt injection vía datos del API antes de que cualquier
// título o descripción llegue a un prompt del LLM.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/llm"
)

const (
	gammaPageSize = 100

	maxTitleLen       = 500
	maxDescriptionLen = 2000
	maxIDLen          = 100
)

// GetAllActiveMarkets pagina por los mercados activos de Gamma y los
// devuelve normalizados. Una página que falla corta la paginación y
// devuelve lo acumulado hasta ahí.
func (c *Client) GetAllActiveMarkets(ctx context.Context, maxPages int) ([]domain.Market, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var markets []domain.Market
	for page := 0; page < maxPages; page++ {
		url := fmt.Sprintf("%s/markets?active=true&closed=false&limit=%d&offset=%d",
			c.gammaBase, gammaPageSize, page*gammaPageSize)

		var batch []gammaMarket
		if err := c.get(ctx, c.gammaLimiter, url, &batch); err != nil {
			if page == 0 {
				return nil, fmt.Errorf("polymarket.GetAllActiveMarkets: page 0: %w", err)
			}
			slog.Warn("gamma page failed, stopping pagination",
				"page", page, "collected", len(markets), "err", err)
			break
		}
		if len(batch) == 0 {
			break
		}
		for _, gm := range batch {
			if m, ok := c.normalizeMarket(gm); ok {
				markets = append(markets, m)
			}
		}
		if len(batch) < gammaPageSize {
			break
		}
	}
	return markets, nil
}

// normalizeMarket convierte un gammaMarket al schema común. Devuelve
// false si el mercado no tiene identidad utilizable.
func (c *Client) normalizeMarket(gm gammaMarket) (domain.Market, bool) {
	conditionID := llm.SanitizeText(gm.ConditionID, maxIDLen)
	if conditionID == "" {
		conditionID = llm.SanitizeText(gm.ID, maxIDLen)
	}
	if conditionID == "" {
		return domain.Market{}, false
	}

	title := llm.SanitizeText(gm.Question, maxTitleLen)
	if title == "" {
		return domain.Market{}, false
	}

	prices := asFloatSlice(gm.OutcomePrices)
	var yes, no *float64
	if len(prices) >= 1 {
		yes = prices[0]
	}
	if len(prices) >= 2 {
		no = prices[1]
	}

	status := domain.MarketStatusActive
	if !gm.Active || gm.Closed {
		status = domain.MarketStatusClosed
	}

	// Resolución de categoría: API category, luego seriesSlug, luego
	// groupItemTitle, con fallback por keywords del título.
	rawCategory := gm.Category
	if rawCategory == "" {
		rawCategory = llm.SanitizeText(gm.SeriesSlug, maxIDLen)
	}
	if rawCategory == "" {
		rawCategory = llm.SanitizeText(gm.GroupItemTitle, maxIDLen)
	}

	var closeTime *time.Time
	if gm.EndDate != "" {
		if t, err := time.Parse(time.RFC3339, gm.EndDate); err == nil {
			u := t.UTC()
			closeTime = &u
		}
	}

	slug := gm.Slug
	if slug == "" {
		slug = conditionID
	}

	rawData, _ := json.Marshal(gm)

	return domain.Market{
		Platform:    domain.PlatformPolymarket,
		PlatformID:  conditionID,
		Title:       title,
		Description: llm.SanitizeText(gm.Description, maxDescriptionLen),
		Category:    domain.NormalizeCategory(rawCategory, title),
		Status:      status,
		YesPrice:    yes,
		NoPrice:     no,
		Volume:      asFloat(gm.Volume),
		Liquidity:   asFloat(gm.Liquidity),
		CloseTime:   closeTime,
		URL:         "https://polymarket.com/event/" + slug,
		RawData:     string(rawData),
		LastUpdated: time.Now().UTC(),
	}, true
}
