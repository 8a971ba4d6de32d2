// Package openai implementa ports.LLM sobre el API de chat completions.
//
// El contrato del port: Chat reintenta internamente (red y JSON inválido
// cuentan igual) y solo devuelve error tras agotar los intentos. Los
// callers tratan ese error como no-fatal para su batch.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/themvf/PredictionMarkets/internal/ports"
)

const (
	maxAttempts   = 3
	retryWait     = 2 * time.Second
	defaultSystem = "You are a prediction market analyst. Respond precisely and concisely."
)

// Client llama al API de OpenAI con retries y coerción de JSON.
type Client struct {
	api         *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
}

var _ ports.LLM = (*Client)(nil)

// NewClient crea un Client para el modelo dado.
func NewClient(apiKey, model string, temperature float64, maxTokens int) *Client {
	if model == "" {
		model = goopenai.GPT4oMini
	}
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	return &Client{
		api:         goopenai.NewClient(apiKey),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
	}
}

// Model devuelve el identificador del modelo configurado.
func (c *Client) Model() string {
	return c.model
}

// Chat envía un prompt y devuelve la respuesta en texto plano.
func (c *Client) Chat(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := c.call(ctx, system, prompt)
		if err != nil {
			lastErr = err
			c.wait(ctx)
			continue
		}
		return raw, nil
	}
	return "", fmt.Errorf("openai.Chat: all %d attempts failed: %w", maxAttempts, lastErr)
}

// ChatJSON envía un prompt y parsea la respuesta como JSON en out,
// tolerando fences de markdown. Una respuesta no parseable consume un
// intento igual que un error de red.
func (c *Client) ChatJSON(ctx context.Context, system, prompt string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := c.call(ctx, system, prompt)
		if err != nil {
			lastErr = err
			c.wait(ctx)
			continue
		}
		if err := json.Unmarshal([]byte(CoerceJSON(raw)), out); err != nil {
			lastErr = fmt.Errorf("invalid JSON (attempt %d): %w", attempt, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("openai.ChatJSON: all %d attempts failed: %w", maxAttempts, lastErr)
}

func (c *Client) call(ctx context.Context, system, prompt string) (string, error) {
	if system == "" {
		system = defaultSystem
	}
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) wait(ctx context.Context) {
	select {
	case <-time.After(retryWait):
	case <-ctx.Done():
	}
}

// CoerceJSON quita los fences de markdown que los modelos suelen poner
// alrededor de un payload JSON ("```json\n{...}\n```").
func CoerceJSON(text string) string {
	stripped := strings.TrimSpace(text)
	if !strings.HasPrefix(stripped, "```") {
		return stripped
	}
	for _, part := range strings.Split(stripped, "```") {
		candidate := strings.TrimSpace(part)
		if candidate == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(candidate), "json") {
			candidate = strings.TrimSpace(candidate[4:])
		}
		if candidate != "" {
			return candidate
		}
	}
	return stripped
}
