package agent

// registry.go — registro ordenado de agentes y ejecución run-all/run-one.

import (
	"context"
	"fmt"
	"sync"
)

// Registry mantiene los agentes en orden de registro y el último estado
// conocido de cada uno. Los agentes se construyen una vez al registrarse
// y se reutilizan en cada invocación planificada.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
}

type entry struct {
	agent  Agent
	status Status
	last   *Result
}

// NewRegistry crea un registro vacío.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register añade un agente al final del orden de ejecución. Registrar
// dos veces el mismo nombre reemplaza el agente sin alterar el orden.
func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[a.Name()]; !ok {
		r.order = append(r.order, a.Name())
	}
	r.entries[a.Name()] = &entry{agent: a, status: StatusIdle}
}

// Names devuelve los nombres registrados en orden de registro.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Status devuelve el último estado conocido del agente y su último
// resultado (nil si nunca corrió).
func (r *Registry) Status(name string) (Status, *Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return "", nil, false
	}
	return e.status, e.last, true
}

// RunAll ejecuta todos los agentes secuencialmente en orden de registro.
// Un agente que falla no detiene a los siguientes: Run ya convierte
// cualquier fallo en un Result con status error.
func (r *Registry) RunAll(ctx context.Context, rc *RunContext) []*Result {
	results := make([]*Result, 0, len(r.Names()))
	for _, name := range r.Names() {
		res, err := r.RunOne(ctx, name, rc)
		if err != nil {
			continue // solo posible si el agente fue desregistrado en vuelo
		}
		results = append(results, res)
	}
	return results
}

// RunOne ejecuta un agente por nombre. Devuelve error únicamente si el
// nombre no está registrado.
func (r *Registry) RunOne(ctx context.Context, name string, rc *RunContext) (*Result, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("agent.RunOne: agent %q not registered", name)
	}
	e.status = StatusRunning
	r.mu.Unlock()

	result := Run(ctx, e.agent, rc)

	r.mu.Lock()
	e.status = result.Status
	e.last = result
	r.mu.Unlock()

	return result, nil
}
