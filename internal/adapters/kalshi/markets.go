package kalshi

// markets.go — discovery y quotes de mercados Kalshi.
// Kalshi cotiza en centavos enteros (1-99); todo precio > 1 se normaliza
// a dólares dividiendo entre 100 para que el resto del sistema trabaje
// siempre en [0, 1].

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/llm"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

const marketsPageSize = 200

type marketsResponse struct {
	Markets []kalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

type marketResponse struct {
	Market kalshiMarket `json:"market"`
}

type kalshiMarket struct {
	Ticker       string   `json:"ticker"`
	EventTicker  string   `json:"event_ticker"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	Status       string   `json:"status"`
	YesBid       *float64 `json:"yes_bid"`
	YesAsk       *float64 `json:"yes_ask"`
	NoBid        *float64 `json:"no_bid"`
	NoAsk        *float64 `json:"no_ask"`
	LastPrice    *float64 `json:"last_price"`
	Volume       *float64 `json:"volume"`
	OpenInterest *float64 `json:"open_interest"`
	Liquidity    *float64 `json:"liquidity"`
	CloseTime    string   `json:"close_time"`
	Category     string   `json:"category"`
	RulesPrimary string   `json:"rules_primary"`
}

type orderbookResponse struct {
	Orderbook struct {
		Yes [][]float64 `json:"yes"`
		No  [][]float64 `json:"no"`
	} `json:"orderbook"`
}

// GetAllActiveMarkets pagina por todos los mercados abiertos.
func (c *Client) GetAllActiveMarkets(ctx context.Context, maxPages int) ([]domain.Market, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var markets []domain.Market
	cursor := ""
	for page := 0; page < maxPages; page++ {
		params := url.Values{
			"limit":  {strconv.Itoa(marketsPageSize)},
			"status": {"open"},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp marketsResponse
		if err := c.get(ctx, "/markets", params, &resp); err != nil {
			if page == 0 {
				return nil, fmt.Errorf("kalshi.GetAllActiveMarkets: page 0: %w", err)
			}
			break
		}
		if len(resp.Markets) == 0 {
			break
		}
		for _, km := range resp.Markets {
			if m, ok := normalizeMarket(km); ok {
				markets = append(markets, m)
			}
		}
		cursor = resp.Cursor
		if cursor == "" {
			break
		}
	}
	return markets, nil
}

// GetQuote refresca el precio de un mercado individual y añade el mejor
// bid/ask del orderbook. El orderbook es best-effort.
func (c *Client) GetQuote(ctx context.Context, m domain.Market) (ports.Quote, error) {
	var resp marketResponse
	if err := c.get(ctx, "/markets/"+m.PlatformID, nil, &resp); err != nil {
		return ports.Quote{}, fmt.Errorf("kalshi.GetQuote: %s: %w", m.PlatformID, err)
	}
	km := resp.Market

	yes := centsToDollars(firstNonNil(km.YesAsk, km.LastPrice, m.YesPrice))
	no := centsToDollars(firstNonNil(km.NoAsk, m.NoPrice))

	q := ports.Quote{
		YesPrice:     yes,
		NoPrice:      no,
		Volume:       firstNonNil(km.Volume, m.Volume),
		OpenInterest: km.OpenInterest,
	}

	var ob orderbookResponse
	if err := c.get(ctx, "/markets/"+m.PlatformID+"/orderbook", nil, &ob); err == nil {
		if len(ob.Orderbook.Yes) > 0 && len(ob.Orderbook.Yes[0]) > 0 {
			q.BestBid = centsToDollars(&ob.Orderbook.Yes[0][0])
		}
		if len(ob.Orderbook.No) > 0 && len(ob.Orderbook.No[0]) > 0 {
			// El mejor bid de NO implica el mejor ask de YES
			ask := 1 - *centsToDollars(&ob.Orderbook.No[0][0])
			q.BestAsk = &ask
		}
	}
	return q, nil
}

// normalizeMarket convierte un kalshiMarket al schema común.
func normalizeMarket(km kalshiMarket) (domain.Market, bool) {
	ticker := llm.SanitizeText(km.Ticker, 100)
	if ticker == "" {
		return domain.Market{}, false
	}
	title := llm.SanitizeText(km.Title, 500)
	if title == "" {
		return domain.Market{}, false
	}
	if sub := llm.SanitizeText(km.Subtitle, 200); sub != "" {
		title = title + " " + sub
	}

	status := domain.MarketStatusActive
	switch km.Status {
	case "closed", "determined":
		status = domain.MarketStatusClosed
	case "finalized", "settled":
		status = domain.MarketStatusSettled
	}

	var closeTime *time.Time
	if km.CloseTime != "" {
		if t, err := time.Parse(time.RFC3339, km.CloseTime); err == nil {
			u := t.UTC()
			closeTime = &u
		}
	}

	rawCategory := km.Category
	if rawCategory == "" {
		rawCategory = km.EventTicker
	}
	if rawCategory == "" {
		rawCategory = ticker
	}

	rawData, _ := json.Marshal(km)

	return domain.Market{
		Platform:    domain.PlatformKalshi,
		PlatformID:  ticker,
		Title:       title,
		Description: llm.SanitizeText(km.RulesPrimary, 2000),
		Category:    domain.NormalizeCategory(rawCategory, title),
		Status:      status,
		YesPrice:    centsToDollars(firstNonNil(km.YesAsk, km.LastPrice)),
		NoPrice:     centsToDollars(km.NoAsk),
		Volume:      km.Volume,
		Liquidity:   km.OpenInterest,
		CloseTime:   closeTime,
		URL:         "https://kalshi.com/markets/" + strings.ToLower(ticker),
		RawData:     string(rawData),
		LastUpdated: time.Now().UTC(),
	}, true
}

// centsToDollars normaliza un precio de Kalshi. Valores > 1 son centavos.
func centsToDollars(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if v > 1 {
		v = v / 100.0
	}
	return &v
}

func firstNonNil(ps ...*float64) *float64 {
	for _, p := range ps {
		if p != nil {
			return p
		}
	}
	return nil
}
