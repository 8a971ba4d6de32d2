package llm

// prompts.go — plantillas de prompt con contexto de dominio.
//
// Cada prompt incluye el bloque de contexto de plataformas, awareness de
// vig y de tiers de liquidez, para que el LLM opere sobre estructura de
// mercado real en vez de adivinar desde su training genérico.

import (
	"fmt"
	"strings"
)

// SystemAnalyst es el system prompt común para todo análisis.
const SystemAnalyst = "You are a prediction market analyst. Respond precisely and concisely."

// platformContext se inyecta en los prompts de análisis: diferencias
// estructurales entre plataformas que causan gaps legítimos de precio.
const platformContext = `## Platform Reference (use this context for your analysis)

**Kalshi**: US-based, CFTC-regulated exchange:
- Settlement: USD; pricing in cents displayed as dollars ($0.01-$0.99)
- Typical overround (vig): 2-6% due to compliance costs and wider spreads
- Liquidity concentrated in politics, economics, and weather
- Position limits: $25K per market

**Polymarket**: Crypto-native prediction market (non-US):
- Settlement: USDC on Polygon; decimal pricing (0.00-1.00)
- Typical overround (vig): 1-3% due to competitive market makers
- Generally higher liquidity, no position limits

**Key structural differences that cause legitimate price gaps:**
1. Vig differential: ALWAYS compare vig-adjusted fair probabilities, not raw prices.
2. Settlement risk: near-certain markets may gap on differing discount rates.
3. Timing lag: short-lived gaps may be stale data, not real disagreement.
4. Position limits: informed flow may only be expressible on Polymarket.`

// GapPromptData es el input del prompt de análisis de gap. Los títulos
// deben llegar YA sanitizados o se sanitizan aquí; ambos caminos son
// seguros.
type GapPromptData struct {
	KalshiTitle string
	PolyTitle   string
	KalshiYes   *float64
	KalshiNo    *float64
	PolyYes     *float64
	PolyNo      *float64
	KalshiVig   *float64
	PolyVig     *float64
	KalshiFair  *float64
	PolyFair    *float64
	RawGap      *float64
	FairGap     *float64
	KalshiTier  string
	PolyTier    string
}

// GapAnalysisPrompt arma el prompt de análisis cualitativo de un gap.
func GapAnalysisPrompt(d GapPromptData) string {
	var sb strings.Builder
	sb.WriteString("You are a quantitative prediction market analyst specializing in cross-platform pricing discrepancies.\n\n")
	sb.WriteString(platformContext)
	sb.WriteString("\n\n**Analyze this matched market pair:**\n\n")

	fmt.Fprintf(&sb, "**Kalshi Market:**\n- Title: %s\n- Yes Price (raw): %s\n- No Price (raw): %s\n- Overround (vig): %s\n- Fair Probability (vig-adjusted): %s\n- Liquidity Tier: %s\n\n",
		SanitizeForPrompt(d.KalshiTitle, 200),
		fmtPrice(d.KalshiYes), fmtPrice(d.KalshiNo),
		fmtVig(d.KalshiVig), fmtPct(d.KalshiFair), d.KalshiTier)

	fmt.Fprintf(&sb, "**Polymarket Market:**\n- Title: %s\n- Yes Price (raw): %s\n- No Price (raw): %s\n- Overround (vig): %s\n- Fair Probability (vig-adjusted): %s\n- Liquidity Tier: %s\n\n",
		SanitizeForPrompt(d.PolyTitle, 200),
		fmtPrice(d.PolyYes), fmtPrice(d.PolyNo),
		fmtVig(d.PolyVig), fmtPct(d.PolyFair), d.PolyTier)

	fmt.Fprintf(&sb, "**Gap Metrics:**\n- Raw gap: %s\n- Fair (vig-adjusted) gap: %s\n\n",
		fmtPrice(d.RawGap), fmtPrice(d.FairGap))

	sb.WriteString(`Assess whether this gap reflects genuine disagreement or market structure. Respond with JSON only:
{
    "assessment": "<one of: genuine_disagreement, vig_artifact, stale_data, settlement_risk>",
    "risk_score": <0.0 to 1.0, likelihood the gap closes unprofitably>,
    "rationale": "<2-3 sentence explanation>"
}`)
	return sb.String()
}

// BriefingData es el input del briefing periódico.
type BriefingData struct {
	TotalMarkets int
	KalshiCount  int
	PolyCount    int
	PairCount    int
	AlertCount   int
	TopMarkets   string
	PriceGaps    string
	RecentAlerts string
}

// BriefingPrompt arma el prompt del briefing de inteligencia.
func BriefingPrompt(d BriefingData) string {
	var sb strings.Builder
	sb.WriteString("You are a prediction market intelligence analyst writing a periodic briefing.\n\n")
	sb.WriteString(platformContext)
	fmt.Fprintf(&sb, "\n\n**Current state:**\n- Tracked markets: %d (%d Kalshi, %d Polymarket)\n- Matched cross-platform pairs: %d\n- Unacknowledged alerts: %d\n\n",
		d.TotalMarkets, d.KalshiCount, d.PolyCount, d.PairCount, d.AlertCount)
	fmt.Fprintf(&sb, "**Top markets by volume:**\n%s\n\n", d.TopMarkets)
	fmt.Fprintf(&sb, "**Notable vig-adjusted price gaps:**\n%s\n\n", d.PriceGaps)
	fmt.Fprintf(&sb, "**Recent alerts:**\n%s\n\n", d.RecentAlerts)
	sb.WriteString(`Write a concise Markdown briefing (max ~500 words) with sections:
1. Market overview: where is attention concentrated
2. Cross-platform dislocations: which gaps matter and why (cite vig and liquidity)
3. Risk watch: what the alerts imply
Ground every claim in the data above. Do not invent markets or prices.`)
	return sb.String()
}

func fmtPrice(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *p)
}

func fmtPct(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *p*100)
}

func fmtVig(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *p*100)
}
