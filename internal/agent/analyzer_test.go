package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themvf/PredictionMarkets/internal/domain"
)

func TestTitleSimilarity(t *testing.T) {
	// Las stopwords y la puntuación no cuentan: estos dos son el mismo evento.
	score := titleSimilarity(
		"Fed raises rates in March?",
		"Will the Fed raise rates in March?",
	)
	assert.Greater(t, score, 0.5)

	unrelated := titleSimilarity(
		"Fed raises rates in March?",
		"Super Bowl winner 2026",
	)
	assert.Less(t, unrelated, 0.2)

	assert.Equal(t, 0.0, titleSimilarity("", "anything"))
	assert.Equal(t, 1.0, titleSimilarity("Bitcoin above 100k", "bitcoin above 100k!"))
}

func TestAnalyzerAgent_MatchesAndComputesFairGap(t *testing.T) {
	rc := newTestContext(t)
	kID := upsertPriced(t, rc, domain.PlatformKalshi, "Fed cuts rates at the March meeting", 0.60, 0.50, 200_000)
	upsertPriced(t, rc, domain.PlatformPolymarket, "Will the Fed cut rates at the March meeting?", 0.53, 0.47, 200_000)
	// Un mercado sin relación no debe emparejarse.
	upsertPriced(t, rc, domain.PlatformPolymarket, "Super Bowl winner", 0.10, 0.90, 1000)

	a := NewAnalyzerAgent()
	a.now = func() time.Time { return testNow }

	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsProcessed)

	pairs, err := rc.Store.GetAllPairs(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, kID, pairs[0].KalshiMarketID)
	assert.GreaterOrEqual(t, pairs[0].MatchConfidence, 0.60)
	assert.True(t, pairs[0].CreatedAt.Equal(testNow), "created_at debe quedar fijado al matchear")

	// El gap persistido es el fair gap, no el raw: 0.5455 vs 0.53 ~ 0.015.
	require.NotNil(t, pairs[0].PriceGap)
	assert.InDelta(t, 0.0155, *pairs[0].PriceGap, 0.002)
}

func TestAnalyzerAgent_RerunDoesNotDuplicatePairs(t *testing.T) {
	rc := newTestContext(t)
	upsertPriced(t, rc, domain.PlatformKalshi, "Bitcoin above 100k by June", 0.40, 0.62, 50_000)
	upsertPriced(t, rc, domain.PlatformPolymarket, "Will bitcoin be above 100k by June?", 0.42, 0.58, 50_000)

	a := NewAnalyzerAgent()
	a.now = func() time.Time { return testNow }

	_, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	_, err = a.Execute(context.Background(), rc)
	require.NoError(t, err)

	pairs, err := rc.Store.GetAllPairs(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

// fakeLLM responde con contenido fijo.
type fakeLLM struct {
	chatResponse string
	jsonResponse string
	calls        int
	lastPrompt   string
}

func (f *fakeLLM) Chat(_ context.Context, _, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.chatResponse, nil
}

func (f *fakeLLM) ChatJSON(_ context.Context, _, prompt string, out any) error {
	f.calls++
	f.lastPrompt = prompt
	return json.Unmarshal([]byte(f.jsonResponse), out)
}

func (f *fakeLLM) Model() string { return "test-model" }

func TestAnalyzerAgent_SignificantGapGoesToLLM(t *testing.T) {
	rc := newTestContext(t)
	rc.LLM = &fakeLLM{jsonResponse: `{"assessment": "genuine divergence", "risk_score": 0.4, "rationale": "liquidity supports it"}`}

	upsertPriced(t, rc, domain.PlatformKalshi, "Government shutdown before May", 0.30, 0.70, 200_000)
	upsertPriced(t, rc, domain.PlatformPolymarket, "Will the government shutdown happen before May?", 0.45, 0.55, 200_000)

	a := NewAnalyzerAgent()
	a.now = func() time.Time { return testNow }

	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "1 significant")
	assert.Equal(t, 1, rc.LLM.(*fakeLLM).calls)
}

func TestAnalyzerAgent_NoLLMStillAnalyzes(t *testing.T) {
	rc := newTestContext(t)
	upsertPriced(t, rc, domain.PlatformKalshi, "Government shutdown before May", 0.30, 0.70, 200_000)
	upsertPriced(t, rc, domain.PlatformPolymarket, "Will the government shutdown happen before May?", 0.45, 0.55, 200_000)

	a := NewAnalyzerAgent()
	a.now = func() time.Time { return testNow }

	result, err := a.Execute(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsProcessed)
}
