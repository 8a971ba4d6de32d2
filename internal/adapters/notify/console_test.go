package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

func sampleRun() domain.AgentLog {
	return domain.AgentLog{
		RunID:           "run-1",
		AgentName:       "alert",
		Status:          "success",
		DurationSeconds: 1.5,
		ItemsProcessed:  7,
		Summary:         "Generated 7 alerts.",
	}
}

func sampleAlert(i int, sev domain.Severity) domain.Alert {
	return domain.Alert{
		AlertType:   domain.AlertPriceMove,
		Severity:    sev,
		Title:       fmt.Sprintf("Price up %d%%", i),
		Message:     "some market moved",
		TriggeredAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestConsole_PrintsRunSummary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	err := c.NotifyRun(context.Background(), sampleRun(), nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "alert success")
	assert.Contains(t, out, "items:7")
	assert.Contains(t, out, "Generated 7 alerts.")
}

func TestConsole_PrintsErrorLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	run := sampleRun()
	run.Status = "error"
	run.Error = "venue timeout"
	require.NoError(t, c.NotifyRun(context.Background(), run, nil))
	assert.Contains(t, buf.String(), "error: venue timeout")
}

func TestConsole_CompactCapsAtFive(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	alerts := make([]domain.Alert, 8)
	for i := range alerts {
		alerts[i] = sampleAlert(i, domain.SeverityWarning)
	}
	require.NoError(t, c.NotifyRun(context.Background(), sampleRun(), alerts))

	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "...and 3 more alerts")
}

func TestConsole_TableModeRendersAllAlerts(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	alerts := []domain.Alert{
		sampleAlert(1, domain.SeverityCritical),
		sampleAlert(2, domain.SeverityInfo),
	}
	require.NoError(t, c.NotifyRun(context.Background(), sampleRun(), alerts))

	out := buf.String()
	assert.Contains(t, out, "[CRIT]")
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "price_move")
}

func TestSeverityBadge(t *testing.T) {
	assert.Equal(t, "[CRIT]", severityBadge(domain.SeverityCritical))
	assert.Equal(t, "[WARN]", severityBadge(domain.SeverityWarning))
	assert.Equal(t, "[INFO]", severityBadge(domain.SeverityInfo))
	assert.Equal(t, "[INFO]", severityBadge(domain.Severity("unknown")))
}

func TestCompactText(t *testing.T) {
	assert.Equal(t, "short", compactText("  short  ", 10))
	long := compactText("a very long alert title that will not fit", 20)
	assert.Len(t, long, 20)
	assert.Contains(t, long, "...")
}

func TestCompactText_DoesNotSplitRunes(t *testing.T) {
	// El corte en 10 bytes caería dentro de una "é" de dos bytes.
	out := compactText(strings.Repeat("é", 12), 10)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("é", 3)+"...", out)
}
