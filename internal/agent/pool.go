package agent

// pool.go — worker pool acotado para fan-out de llamadas externas.
//
// A diferencia de errgroup, un item que falla NO aborta el batch: cada
// item termina con su resultado o su error, y el caller decide qué hacer
// con los fallos. El orden de los outcomes no está garantizado; quien
// necesite correlacionar debe re-indexar por Item.

import (
	"context"
	"sync"
)

// defaultWorkers es la concurrencia por defecto para fan-out de API calls.
// Empíricamente 10-20 llamadas en vuelo saturan los rate limits de los
// venues sin disparar 429s.
const defaultWorkers = 10

// Outcome es el desenlace de un item del batch: resultado o error,
// nunca los dos.
type Outcome[I, R any] struct {
	Item   I
	Result R
	Err    error
}

// FanOut ejecuta fn sobre cada item con a lo sumo workers llamadas
// concurrentes y devuelve un outcome por item. Si workers <= 0 usa
// defaultWorkers. Un panic dentro de fn se captura como error del item.
func FanOut[I, R any](ctx context.Context, items []I, workers int, fn func(context.Context, I) (R, error)) []Outcome[I, R] {
	if len(items) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	workCh := make(chan I, len(items))
	resultCh := make(chan Outcome[I, R], len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				resultCh <- runOne(ctx, item, fn)
			}
		}()
	}

	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make([]Outcome[I, R], 0, len(items))
	for o := range resultCh {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// runOne ejecuta fn sobre un item aislando panics: el fallo de un item
// jamás se propaga a sus hermanos.
func runOne[I, R any](ctx context.Context, item I, fn func(context.Context, I) (R, error)) (out Outcome[I, R]) {
	out.Item = item
	defer func() {
		if r := recover(); r != nil {
			out.Err = panicError(r)
		}
	}()
	out.Result, out.Err = fn(ctx, item)
	return out
}
