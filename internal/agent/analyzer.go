package agent

// analyzer.go — agente de análisis cross-platform.
//
// Dos fases: (1) matching difuso de títulos Kalshi×Polymarket para
// mantener la tabla de pares, (2) recálculo del gap ajustado por vig de
// cada par, con lectura cualitativa del LLM solo para los gaps
// significativos en mercados con liquidez. El LLM que falla deja el par
// sin análisis este ciclo, nada más.

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/themvf/PredictionMarkets/internal/domain"
	"github.com/themvf/PredictionMarkets/internal/llm"
	"github.com/themvf/PredictionMarkets/internal/ports"
)

const (
	// matchConfidenceMin es la similitud mínima de títulos para
	// considerar que dos mercados son el mismo evento.
	matchConfidenceMin = 0.60

	// llmGapThreshold es el fair gap mínimo para gastar una llamada LLM.
	llmGapThreshold = 0.03
)

// GapAnalysis es la respuesta JSON que se le pide al LLM por cada gap.
type GapAnalysis struct {
	Assessment string  `json:"assessment"`
	RiskScore  float64 `json:"risk_score"`
	Rationale  string  `json:"rationale"`
}

// AnalyzerAgent mantiene los pares cross-platform y sus gaps.
type AnalyzerAgent struct {
	now func() time.Time
}

// NewAnalyzerAgent crea el agente analyzer.
func NewAnalyzerAgent() *AnalyzerAgent {
	return &AnalyzerAgent{now: func() time.Time { return time.Now().UTC() }}
}

// Name devuelve el identificador del agente.
func (a *AnalyzerAgent) Name() string { return "analyzer" }

// Execute matchea mercados nuevos y actualiza el gap de todos los pares.
func (a *AnalyzerAgent) Execute(ctx context.Context, rc *RunContext) (*Result, error) {
	matched, err := a.matchMarkets(ctx, rc)
	if err != nil {
		return nil, err
	}

	pairs, err := rc.Store.GetAllPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent.Analyzer: load pairs: %w", err)
	}

	analyzed := 0
	significant := 0
	vigArtifacts := 0
	var errs []string

	for _, p := range pairs {
		if p.KalshiYes == nil || p.PolyYes == nil {
			continue
		}

		gap := domain.CrossPlatformGap(p.KalshiYes, p.KalshiNo, p.PolyYes, p.PolyNo)
		rawGap := 0.0
		if gap.RawGap != nil {
			rawGap = *gap.RawGap
		}
		effective := rawGap
		if gap.FairGap != nil {
			effective = *gap.FairGap
		}
		isVigArtifact := gap.FairGap != nil && *gap.FairGap < 0.02 && rawGap >= 0.02
		if isVigArtifact {
			vigArtifacts++
		}

		// El gap persistido es el fair si existe: el raw mezcla vig.
		updated := p.Pair
		updated.PriceGap = &effective
		updated.LastChecked = a.now()
		if _, err := rc.Store.UpsertPair(ctx, updated); err != nil {
			errs = append(errs, fmt.Sprintf("Pair %d: %v", p.ID, err))
			continue
		}
		analyzed++

		// LLM solo para gaps significativos con liquidez real.
		threshold := llmGapThreshold
		if isVigArtifact {
			threshold = 0.05
		}
		hasLiquidity := domain.LiquidityScore(p.KalshiVolume, p.KalshiLiquidity).Liquid() ||
			domain.LiquidityScore(p.PolyVolume, p.PolyLiquidity).Liquid()

		if effective >= threshold && hasLiquidity && rc.LLM != nil {
			significant++
			if err := a.analyzeGap(ctx, rc, p, gap); err != nil {
				errs = append(errs, fmt.Sprintf("LLM pair %d: %v", p.ID, err))
			}
		}
	}

	return &Result{
		ItemsProcessed: analyzed,
		Summary: fmt.Sprintf("Matched %d new pairs, analyzed %d. %d significant (sent to LLM). %d were vig artifacts.",
			matched, analyzed, significant, vigArtifacts),
		Data: map[string]any{
			"pairs_matched":    matched,
			"analyses_created": analyzed,
			"significant_gaps": significant,
			"vig_artifacts":    vigArtifacts,
			"errors":           capErrors(errs),
		},
	}, nil
}

// matchMarkets empareja mercados Kalshi y Polymarket por similitud de
// título. Re-matchear un par existente solo refresca confidence.
func (a *AnalyzerAgent) matchMarkets(ctx context.Context, rc *RunContext) (int, error) {
	kalshi, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{
		Platform: domain.PlatformKalshi, Status: domain.MarketStatusActive,
	})
	if err != nil {
		return 0, fmt.Errorf("agent.Analyzer: load kalshi markets: %w", err)
	}
	poly, err := rc.Store.GetAllMarkets(ctx, ports.MarketFilter{
		Platform: domain.PlatformPolymarket, Status: domain.MarketStatusActive,
	})
	if err != nil {
		return 0, fmt.Errorf("agent.Analyzer: load polymarket markets: %w", err)
	}

	existing, err := rc.Store.GetAllPairs(ctx)
	if err != nil {
		return 0, fmt.Errorf("agent.Analyzer: load pairs: %w", err)
	}
	paired := make(map[int64]bool, len(existing))
	for _, p := range existing {
		paired[p.KalshiMarketID] = true
	}

	matched := 0
	for _, k := range kalshi {
		if paired[k.ID] {
			continue
		}
		bestScore := 0.0
		var best *domain.Market
		for i := range poly {
			score := titleSimilarity(k.Title, poly[i].Title)
			if score > bestScore {
				bestScore = score
				best = &poly[i]
			}
		}
		if best == nil || bestScore < matchConfidenceMin {
			continue
		}

		pair := domain.Pair{
			KalshiMarketID:  k.ID,
			PolyMarketID:    best.ID,
			MatchConfidence: bestScore,
			MatchReason:     fmt.Sprintf("title similarity %.2f", bestScore),
			CreatedAt:       a.now(),
			LastChecked:     a.now(),
		}
		if _, err := rc.Store.UpsertPair(ctx, pair); err == nil {
			matched++
		}
	}
	return matched, nil
}

// analyzeGap pide al LLM una lectura del gap y la guarda como insight
// deep_dive. Todo el texto de venue pasa sanitizado al prompt.
func (a *AnalyzerAgent) analyzeGap(ctx context.Context, rc *RunContext, p domain.PairView, gap domain.GapMetrics) error {
	prompt := llm.GapAnalysisPrompt(llm.GapPromptData{
		KalshiTitle: p.KalshiTitle,
		PolyTitle:   p.PolyTitle,
		KalshiYes:   p.KalshiYes,
		KalshiNo:    p.KalshiNo,
		PolyYes:     p.PolyYes,
		PolyNo:      p.PolyNo,
		KalshiVig:   gap.KalshiVig,
		PolyVig:     gap.PolyVig,
		KalshiFair:  gap.KalshiFair,
		PolyFair:    gap.PolyFair,
		RawGap:      gap.RawGap,
		FairGap:     gap.FairGap,
		KalshiTier:  string(domain.LiquidityScore(p.KalshiVolume, p.KalshiLiquidity)),
		PolyTier:    string(domain.LiquidityScore(p.PolyVolume, p.PolyLiquidity)),
	})

	var analysis GapAnalysis
	if err := rc.LLM.ChatJSON(ctx, llm.SystemAnalyst, prompt, &analysis); err != nil {
		return err
	}

	_, err := rc.Store.InsertInsight(ctx, domain.Insight{
		ReportType: "deep_dive",
		Title:      fmt.Sprintf("Gap analysis: %s", truncate(p.KalshiTitle, 80)),
		Content: fmt.Sprintf("%s\n\nRisk score: %.2f\n\n%s",
			analysis.Assessment, analysis.RiskScore, analysis.Rationale),
		MarketsCovered: 2,
		ModelUsed:      rc.LLM.Model(),
		CreatedAt:      a.now(),
	})
	return err
}

// titleSimilarity es un Jaccard sobre tokens de título en minúsculas.
// Suficiente para emparejar "Fed raises rates in March?" con
// "Will the Fed raise rates in March?"; los falsos positivos quedan
// por debajo del umbral de confianza.
func titleSimilarity(a, b string) float64 {
	ta := titleTokens(a)
	tb := titleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

var stopwords = map[string]bool{
	"will": true, "the": true, "a": true, "an": true, "in": true,
	"on": true, "by": true, "of": true, "to": true, "be": true,
}

func titleTokens(title string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(title)) {
		tok = strings.Trim(tok, "?!.,:;\"'()")
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		tokens[tok] = true
	}
	return tokens
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Nunca cortar en medio de un rune multi-byte.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
