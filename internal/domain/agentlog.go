package domain

import "time"

// AgentLog es una fila por invocación de Run de un agente. Append-only,
// solo para observabilidad: la lógica de los agentes nunca la lee.
type AgentLog struct {
	ID              int64
	RunID           string // uuid de la invocación
	AgentName       string
	Status          string // running | success | error
	StartedAt       time.Time
	CompletedAt     time.Time
	DurationSeconds float64
	ItemsProcessed  int
	Summary         string
	Error           string
}
