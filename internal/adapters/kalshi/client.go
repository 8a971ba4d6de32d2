package kalshi

// client.go — HTTP client del API de Kalshi con rate limiting y retries.
// Mismo esquema de backoff que el client de Polymarket; la diferencia es
// que aquí todos los requests van firmados.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBase = "https://api.elections.kalshi.com/trade-api/v2"

	// Límite documentado: 20 req/s. 16/s deja margen.
	requestsPerSec = 16

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client autenticado de Kalshi.
type Client struct {
	http    *http.Client
	base    string
	signer  *Signer
	limiter *rate.Limiter
	now     func() time.Time
}

// NewClient crea un Client contra el base URL dado (vacío = producción).
func NewClient(base string, signer *Signer) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		base:    base,
		signer:  signer,
		limiter: rate.NewLimiter(requestsPerSec, 5),
		now:     time.Now,
	}
}

// get hace un GET firmado con rate limiting y retries.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := c.newRequest(ctx, path, params)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("status %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("kalshi request retrying", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// newRequest construye el GET con los headers de autenticación. La firma
// cubre el path sin query string, igual que espera el servidor.
func (c *Client) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	full := c.base + path
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if c.signer != nil {
		timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
		sig, err := c.signer.Sign(timestamp, http.MethodGet, req.URL.Path)
		if err != nil {
			return nil, err
		}
		req.Header.Set("KALSHI-ACCESS-KEY", c.signer.apiKeyID)
		req.Header.Set("KALSHI-ACCESS-SIGNATURE", sig)
		req.Header.Set("KALSHI-ACCESS-TIMESTAMP", timestamp)
	}
	return req, nil
}

func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
