package notify

// slack.go — notificaciones vía Slack Incoming Webhook.
// Envía un mensaje Block Kit por run de agente con el resumen y hasta
// 5 alertas nuevas. Un fallo de entrega se devuelve como error para que
// el scheduler lo loguee, nunca interrumpe el pipeline.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

const slackMaxAlerts = 5

var agentEmoji = map[string]string{
	"discovery":  ":mag:",
	"collection": ":bar_chart:",
	"analyzer":   ":scales:",
	"alert":      ":bell:",
	"insight":    ":brain:",
	"trader":     ":trophy:",
	"whale":      ":whale:",
}

var severityEmoji = map[domain.Severity]string{
	domain.SeverityCritical: ":rotating_light:",
	domain.SeverityWarning:  ":warning:",
	domain.SeverityInfo:     ":information_source:",
}

// Slack implementa ports.Notifier contra un Incoming Webhook.
type Slack struct {
	webhookURL string
	http       *http.Client
}

var _ ports.Notifier = (*Slack)(nil)

// NewSlack crea un notificador para el webhook dado.
func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// NotifyRun envía el resumen del run al canal configurado.
func (s *Slack) NotifyRun(ctx context.Context, run domain.AgentLog, alerts []domain.Alert) error {
	payload, err := json.Marshal(map[string]any{"blocks": s.buildBlocks(run, alerts)})
	if err != nil {
		return fmt.Errorf("notify.Slack: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify.Slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify.Slack: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notify.Slack: webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (s *Slack) buildBlocks(run domain.AgentLog, alerts []domain.Alert) []slackBlock {
	emoji := agentEmoji[run.AgentName]
	if emoji == "" {
		emoji = ":robot_face:"
	}
	statusEmoji := ":white_check_mark:"
	if run.Status == "error" {
		statusEmoji = ":x:"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: run.AgentName + " agent run", Emoji: true},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf(
				"%s *Agent:* %s\n%s *Status:* %s\n:stopwatch: *Duration:* %.1fs\n:package: *Items:* %d\n:memo: %s",
				emoji, run.AgentName, statusEmoji, run.Status,
				run.DurationSeconds, run.ItemsProcessed, run.Summary)},
		},
	}

	if run.Error != "" {
		blocks = append(blocks,
			slackBlock{Type: "divider"},
			slackBlock{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: ":x: *Error:* ```" + compactText(run.Error, 500) + "```"},
			})
	}

	if len(alerts) > 0 {
		blocks = append(blocks,
			slackBlock{Type: "divider"},
			slackBlock{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf(":bell: *Alerts generated (%d):*", len(alerts))},
			})
		for i, a := range alerts {
			if i >= slackMaxAlerts {
				blocks = append(blocks, slackBlock{
					Type:     "context",
					Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("_...and %d more alerts_", len(alerts)-slackMaxAlerts)}},
				})
				break
			}
			sev := severityEmoji[a.Severity]
			if sev == "" {
				sev = ":grey_question:"
			}
			blocks = append(blocks, slackBlock{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("%s *%s*\n%s", sev, a.Title, compactText(a.Message, 200))},
			})
		}
	}

	blocks = append(blocks,
		slackBlock{Type: "divider"},
		slackBlock{
			Type: "context",
			Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf(
				":clock1: %s UTC | run %s", run.CompletedAt.UTC().Format(time.RFC3339), run.RunID)}},
		})
	return blocks
}
