package ports

import (
	"context"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

// Notifier presenta el resultado de una ejecución de agente al operador,
// junto con las alertas nuevas generadas durante esa ejecución. Un fallo
// de entrega nunca se propaga al pipeline de agentes.
type Notifier interface {
	NotifyRun(ctx context.Context, run domain.AgentLog, alerts []domain.Alert) error
}
