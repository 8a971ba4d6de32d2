package ports

import "context"

// LLM es el colaborador de análisis cualitativo. Chat reintenta
// internamente hasta un límite fijo y solo devuelve error tras agotarlo;
// los callers deben tratar ese error como no-fatal para el batch.
type LLM interface {
	// Chat envía un prompt y devuelve la respuesta en texto plano.
	Chat(ctx context.Context, system, prompt string) (string, error)

	// ChatJSON envía un prompt y parsea la respuesta como JSON en out,
	// tolerando fences de markdown alrededor del payload.
	ChatJSON(ctx context.Context, system, prompt string, out any) error

	// Model devuelve el identificador del modelo configurado, para
	// registrarlo junto a los insights generados.
	Model() string
}
