package agent

// scheduler.go — disparo periódico de agentes, un ticker por agente.
//
// Los timers son independientes pero la ejecución es secuencial entre
// agentes: un mutex global garantiza que nunca corren dos a la vez.
// El paralelismo vive DENTRO de los agentes de colección, vía FanOut.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/themvf/PredictionMarkets/internal/ports"
)

// Schedule asigna a cada agente registrado su intervalo de disparo.
// Agentes sin entrada no se planifican (siguen disponibles vía RunOne).
type Schedule map[string]time.Duration

// DefaultSchedule devuelve los intervalos de producción.
func DefaultSchedule() Schedule {
	return Schedule{
		"discovery":  30 * time.Minute,
		"collection": 5 * time.Minute,
		"analyzer":   15 * time.Minute,
		"alert":      5 * time.Minute,
		"insight":    60 * time.Minute,
		"trader":     30 * time.Minute,
		"whale":      5 * time.Minute,
	}
}

// Scheduler dispara agentes del registro según su Schedule.
type Scheduler struct {
	registry   *Registry
	schedule   Schedule
	newContext func() *RunContext // contexto fresco por ejecución
	notifier   ports.Notifier     // opcional
	runMu      sync.Mutex         // ejecución secuencial entre agentes
}

// NewScheduler crea un Scheduler. newContext se invoca antes de cada
// ejecución para construir un RunContext fresco; notifier puede ser nil.
func NewScheduler(registry *Registry, schedule Schedule, newContext func() *RunContext, notifier ports.Notifier) *Scheduler {
	return &Scheduler{
		registry:   registry,
		schedule:   schedule,
		newContext: newContext,
		notifier:   notifier,
	}
}

// Run arranca un ticker por agente planificado y bloquea hasta que el
// contexto se cancele. Cada agente corre primero tras su intervalo, no
// inmediatamente; el arranque en frío se hace con RunAll si se quiere.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	scheduled := 0

	for _, name := range s.registry.Names() {
		interval, ok := s.schedule[name]
		if !ok || interval <= 0 {
			continue
		}
		scheduled++
		wg.Add(1)
		go func(name string, interval time.Duration) {
			defer wg.Done()
			s.tick(ctx, name, interval)
		}(name, interval)
		slog.Info("agent scheduled", "agent", name, "interval", interval)
	}

	if scheduled == 0 {
		slog.Warn("scheduler has no agents to run")
		return
	}

	<-ctx.Done()
	wg.Wait()
	slog.Info("scheduler stopped")
}

// tick es el loop de un agente individual.
func (s *Scheduler) tick(ctx context.Context, name string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunAgent(ctx, name)
		}
	}
}

// RunAgent ejecuta un agente con contexto fresco y notifica el resultado.
// Serializado con el resto de ejecuciones del scheduler.
func (s *Scheduler) RunAgent(ctx context.Context, name string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	rc := s.newContext()
	preRun := time.Now().UTC()

	result, err := s.registry.RunOne(ctx, name, rc)
	if err != nil {
		slog.Error("scheduled agent missing", "agent", name, "err", err)
		return
	}

	slog.Info("agent completed",
		"agent", name,
		"status", result.Status,
		"items", result.ItemsProcessed,
		"duration_s", result.DurationSeconds,
	)
	if result.Err != "" {
		slog.Error("agent error", "agent", name, "err", result.Err)
	}

	s.notify(ctx, rc, result, preRun)
}

// notify entrega el resultado y las alertas nuevas al notifier.
// Cualquier fallo aquí se registra y se descarta: la entrega jamás
// afecta al pipeline.
func (s *Scheduler) notify(ctx context.Context, rc *RunContext, result *Result, since time.Time) {
	if s.notifier == nil || rc.Store == nil {
		return
	}

	newAlerts, err := rc.Store.GetAlerts(ctx, ports.AlertFilter{
		TriggeredAfter: since,
		Limit:          50,
	})
	if err != nil {
		slog.Warn("failed to load fresh alerts for notification", "err", err)
	}

	if err := s.notifier.NotifyRun(ctx, result.AgentLog(), newAlerts); err != nil {
		slog.Warn("notifier error", "agent", result.AgentName, "err", err)
	}
}
