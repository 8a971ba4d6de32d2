package agent

// agent.go — abstracción Agent y su wrapper de ciclo de vida.
//
// Un Agent es una unidad de trabajo planificable con un nombre único.
// Run envuelve Execute con transiciones de estado, timing, captura de
// errores y audit logging; es idéntico para todos los agentes, solo
// Execute varía por tipo.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/themvf/PredictionMarkets/internal/domain"
)

// Status es el estado de ciclo de vida de un agente.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result es el desenlace de una invocación de Run. Se crea fresco al
// inicio de cada Run, se finaliza exactamente una vez y es inmutable
// después.
type Result struct {
	RunID           string
	AgentName       string
	Status          Status
	StartedAt       time.Time
	CompletedAt     time.Time
	DurationSeconds float64
	ItemsProcessed  int
	Summary         string
	Err             string
	Data            map[string]any
}

// Agent es una unidad de trabajo independiente. Execute contiene la
// lógica propia del agente; devuelve un Result parcial (items, summary,
// data) que el wrapper completa con identidad, estado y timing.
type Agent interface {
	Name() string
	Execute(ctx context.Context, rc *RunContext) (*Result, error)
}

// Run ejecuta el agente con el ciclo de vida completo:
//
//  1. estado running, startedAt
//  2. Execute: cualquier error o panic se convierte en Result{error},
//     nunca se propaga: un agente que falla no tumba el batch
//  3. completedAt, duración
//  4. AgentLog vía el Store del contexto (fallos de logging se tragan)
//  5. publica el Result en el contexto para los agentes posteriores
//
// Run nunca devuelve nil ni hace panic.
func Run(ctx context.Context, a Agent, rc *RunContext) *Result {
	started := time.Now().UTC()
	runID := uuid.New().String()

	result := execute(ctx, a, rc)
	if result == nil {
		result = &Result{}
	}

	completed := time.Now().UTC()
	result.RunID = runID
	result.AgentName = a.Name()
	result.StartedAt = started
	result.CompletedAt = completed
	result.DurationSeconds = completed.Sub(started).Seconds()
	if result.Status != StatusError {
		result.Status = StatusSuccess
	}

	logRun(ctx, rc, result)
	rc.setResult(a.Name(), result)

	return result
}

// execute invoca Execute aislando errores y panics.
func execute(ctx context.Context, a Agent, rc *RunContext) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent panicked", "agent", a.Name(), "panic", r)
			result = &Result{Status: StatusError, Err: panicError(r).Error()}
		}
	}()

	result, err := a.Execute(ctx, rc)
	if err != nil {
		if result == nil {
			result = &Result{}
		}
		result.Status = StatusError
		result.Err = err.Error()
	}
	return result
}

// logRun persiste el AgentLog. Un fallo aquí se traga: el audit log no
// puede enmascarar ni reemplazar el resultado real.
func logRun(ctx context.Context, rc *RunContext, r *Result) {
	if rc == nil || rc.Store == nil {
		return
	}
	_, err := rc.Store.InsertAgentLog(ctx, r.AgentLog())
	if err != nil {
		slog.Warn("agent log insert failed", "agent", r.AgentName, "err", err)
	}
}

// AgentLog proyecta el Result a su fila de audit log.
func (r *Result) AgentLog() domain.AgentLog {
	return domain.AgentLog{
		RunID:           r.RunID,
		AgentName:       r.AgentName,
		Status:          string(r.Status),
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
		DurationSeconds: r.DurationSeconds,
		ItemsProcessed:  r.ItemsProcessed,
		Summary:         r.Summary,
		Error:           r.Err,
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
