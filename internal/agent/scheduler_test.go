package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

// recordingNotifier captura las entregas del scheduler.
type recordingNotifier struct {
	mu     sync.Mutex
	runs   []domain.AgentLog
	alerts [][]domain.Alert
}

func (n *recordingNotifier) NotifyRun(_ context.Context, run domain.AgentLog, alerts []domain.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runs = append(n.runs, run)
	n.alerts = append(n.alerts, alerts)
	return nil
}

func TestScheduler_RunAgentNotifiesFreshAlerts(t *testing.T) {
	rc := newTestContext(t)
	registry := NewRegistry()
	registry.Register(&stubAgent{name: "emitter", fn: func(ctx context.Context, rc *RunContext) (*Result, error) {
		_, err := rc.Store.InsertAlert(ctx, domain.Alert{
			AlertType:   domain.AlertKeyword,
			Severity:    domain.SeverityInfo,
			Title:       "fresh",
			Message:     "fresh alert",
			TriggeredAt: time.Now().UTC().Add(time.Second),
		})
		if err != nil {
			return nil, err
		}
		return &Result{ItemsProcessed: 1, Summary: "emitted one alert"}, nil
	}})

	notifier := &recordingNotifier{}
	s := NewScheduler(registry, Schedule{}, func() *RunContext { return rc }, notifier)

	s.RunAgent(context.Background(), "emitter")

	require.Len(t, notifier.runs, 1)
	assert.Equal(t, "emitter", notifier.runs[0].AgentName)
	assert.Equal(t, string(StatusSuccess), notifier.runs[0].Status)
	require.Len(t, notifier.alerts, 1)
	require.Len(t, notifier.alerts[0], 1)
	assert.Equal(t, "fresh", notifier.alerts[0][0].Title)
}

func TestScheduler_RunAgentUnknownNameDoesNotNotify(t *testing.T) {
	rc := newTestContext(t)
	notifier := &recordingNotifier{}
	s := NewScheduler(NewRegistry(), Schedule{}, func() *RunContext { return rc }, notifier)

	s.RunAgent(context.Background(), "ghost")
	assert.Empty(t, notifier.runs)
}

func TestScheduler_NilNotifierIsSafe(t *testing.T) {
	rc := newTestContext(t)
	registry := NewRegistry()
	registry.Register(&stubAgent{name: "quiet", fn: okExecute})

	s := NewScheduler(registry, Schedule{}, func() *RunContext { return rc }, nil)
	require.NotPanics(t, func() { s.RunAgent(context.Background(), "quiet") })
}

func TestScheduler_RunStopsOnContextCancel(t *testing.T) {
	rc := newTestContext(t)
	registry := NewRegistry()
	registry.Register(&stubAgent{name: "periodic", fn: okExecute})

	s := NewScheduler(registry, Schedule{"periodic": time.Hour}, func() *RunContext { return rc }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

func TestDefaultSchedule_CoversAllAgents(t *testing.T) {
	sched := DefaultSchedule()
	for _, name := range []string{"discovery", "collection", "analyzer", "alert", "insight", "trader", "whale"} {
		assert.Contains(t, sched, name)
		assert.Greater(t, sched[name], time.Duration(0))
	}
	assert.Equal(t, 5*time.Minute, sched["collection"])
	assert.Equal(t, 60*time.Minute, sched["insight"])
}
