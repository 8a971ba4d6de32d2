package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

var _ ports.Notifier = (*Console)(nil)

// NewConsole crea un notificador de consola. Con table=true imprime las
// alertas en tabla; si no, una línea compacta por run.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyRun imprime el resumen del run y sus alertas nuevas.
func (c *Console) NotifyRun(_ context.Context, run domain.AgentLog, alerts []domain.Alert) error {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "[%s] %s %s %.1fs items:%d alerts:%d %s\n",
		now, run.AgentName, run.Status, run.DurationSeconds,
		run.ItemsProcessed, len(alerts), run.Summary)

	if run.Error != "" {
		fmt.Fprintf(c.out, "  error: %s\n", run.Error)
	}
	if len(alerts) == 0 {
		return nil
	}

	if c.table {
		c.printTable(alerts)
	} else {
		c.printCompact(alerts)
	}
	return nil
}

// printCompact imprime hasta 5 alertas en una línea cada una.
func (c *Console) printCompact(alerts []domain.Alert) {
	for i, a := range alerts {
		if i >= 5 {
			fmt.Fprintf(c.out, "  ...and %d more alerts\n", len(alerts)-5)
			break
		}
		fmt.Fprintf(c.out, "  %s %s %s\n",
			severityBadge(a.Severity), a.AlertType, compactText(a.Title, 60))
	}
}

// printTable imprime todas las alertas en tabla.
func (c *Console) printTable(alerts []domain.Alert) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Sev", "Type", "Title", "Message", "At")

	for _, a := range alerts {
		table.Append(
			severityBadge(a.Severity),
			a.AlertType,
			compactText(a.Title, 40),
			compactText(a.Message, 60),
			a.TriggeredAt.Format("15:04:05"),
		)
	}
	table.Render()
}

func severityBadge(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "[CRIT]"
	case domain.SeverityWarning:
		return "[WARN]"
	default:
		return "[INFO]"
	}
}

// compactText recorta el texto a max bytes sin partir runes.
func compactText(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
