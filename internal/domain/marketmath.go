package domain

// marketmath.go — cálculos de dominio para mercados de predicción binarios.
//
// Todo es puro y determinista: probabilidad implícita, vig (overround),
// precio fair ajustado por vig, gap cross-platform, tiers de liquidez y
// urgencia por expiración. Los inputs ausentes se propagan como nil /
// "unknown", nunca como error.

import (
	"math"
	"time"
)

// LiquidityTier clasifica la profundidad de un mercado.
type LiquidityTier string

const (
	TierDeep     LiquidityTier = "deep"
	TierModerate LiquidityTier = "moderate"
	TierThin     LiquidityTier = "thin"
	TierMicro    LiquidityTier = "micro"
)

// Urgency clasifica el tiempo restante hasta la expiración.
type Urgency string

const (
	UrgencyImminent Urgency = "imminent"
	UrgencySoon     Urgency = "soon"
	UrgencyThisWeek Urgency = "this_week"
	UrgencyDistant  Urgency = "distant"
	UrgencyUnknown  Urgency = "unknown"
)

// Liquid devuelve true para los tiers donde un movimiento de precio es señal
// y no ruido de quotes.
func (t LiquidityTier) Liquid() bool {
	return t == TierDeep || t == TierModerate
}

// ImpliedProbability convierte un precio en probabilidad implícita.
// En un mercado binario eficiente el precio YES ES la probabilidad;
// solo se clampea a [0,1].
func ImpliedProbability(price *float64) *float64 {
	if price == nil {
		return nil
	}
	p := math.Max(0, math.Min(1, *price))
	return &p
}

// Overround calcula el vig de un mercado binario: yes + no - 1.
// En un mercado perfecto suma 0; en la práctica el exceso es el edge
// estructural de la plataforma. Redondeado a 4 decimales.
func Overround(yes, no *float64) *float64 {
	if yes == nil || no == nil {
		return nil
	}
	v := round4(*yes + *no - 1.0)
	return &v
}

// VigAdjustedPrice normaliza el precio YES quitando el vig: yes / (yes+no).
// Devuelve nil si falta algún input o si la suma es <= 0.
func VigAdjustedPrice(yes, no *float64) *float64 {
	if yes == nil || no == nil {
		return nil
	}
	total := *yes + *no
	if total <= 0 {
		return nil
	}
	v := round4(*yes / total)
	return &v
}

// GapMetrics es el resultado de comparar un mercado entre dos plataformas.
type GapMetrics struct {
	RawGap     *float64 // |kalshiYes - polyYes|
	FairGap    *float64 // |kalshiFair - polyFair|, nil si falta un no-price
	KalshiVig  *float64
	PolyVig    *float64
	KalshiFair *float64
	PolyFair   *float64
}

// CrossPlatformGap calcula el gap significativo entre plataformas.
// El raw gap mezcla desacuerdo genuino con diferencias de vig; el fair gap
// los separa. FairGap es nil cuando algún lado no tiene no-price.
func CrossPlatformGap(kalshiYes, kalshiNo, polyYes, polyNo *float64) GapMetrics {
	g := GapMetrics{
		KalshiVig:  Overround(kalshiYes, kalshiNo),
		PolyVig:    Overround(polyYes, polyNo),
		KalshiFair: VigAdjustedPrice(kalshiYes, kalshiNo),
		PolyFair:   VigAdjustedPrice(polyYes, polyNo),
	}

	if kalshiYes != nil && polyYes != nil {
		raw := round4(math.Abs(*kalshiYes - *polyYes))
		g.RawGap = &raw
	}
	if g.KalshiFair != nil && g.PolyFair != nil {
		fair := round4(math.Abs(*g.KalshiFair - *g.PolyFair))
		g.FairGap = &fair
	}
	return g
}

// LiquidityScore clasifica la profundidad del mercado en tiers.
// Un movimiento de 5c en un mercado de $500 de volumen no significa nada
// comparado con el mismo movimiento en uno de $500K. Inputs ausentes
// cuentan como 0.
//
//	deep:     volumen >= $100K o liquidez >= $50K
//	moderate: volumen >= $10K  o liquidez >= $5K
//	thin:     volumen >= $1K   o liquidez >= $500
//	micro:    el resto
func LiquidityScore(volume, liquidity *float64) LiquidityTier {
	vol := deref(volume)
	liq := deref(liquidity)
	switch {
	case vol >= 100_000 || liq >= 50_000:
		return TierDeep
	case vol >= 10_000 || liq >= 5_000:
		return TierModerate
	case vol >= 1_000 || liq >= 500:
		return TierThin
	default:
		return TierMicro
	}
}

// tierMultipliers escala los umbrales de alerta por tier: los mercados finos
// necesitan movimientos proporcionalmente mayores antes de alertar.
var tierMultipliers = map[LiquidityTier]float64{
	TierDeep:     0.8,
	TierModerate: 1.0,
	TierThin:     1.5,
	TierMicro:    2.5,
}

// LiquidityAdjustedThreshold devuelve base × multiplicador del tier.
func LiquidityAdjustedThreshold(base float64, volume, liquidity *float64) float64 {
	return base * tierMultipliers[LiquidityScore(volume, liquidity)]
}

// TimeToExpiryHours devuelve las horas hasta closeTime, 0 si ya pasó,
// nil si closeTime es nil.
func TimeToExpiryHours(closeTime *time.Time, now time.Time) *float64 {
	if closeTime == nil {
		return nil
	}
	h := closeTime.Sub(now).Hours()
	if h < 0 {
		h = 0
	}
	h = math.Round(h*100) / 100
	return &h
}

// ExpiryUrgency clasifica el tiempo restante en tiers de urgencia.
// Los movimientos cerca de la expiración pesan mucho más.
func ExpiryUrgency(hoursLeft *float64) Urgency {
	if hoursLeft == nil {
		return UrgencyUnknown
	}
	switch {
	case *hoursLeft < 4:
		return UrgencyImminent
	case *hoursLeft < 24:
		return UrgencySoon
	case *hoursLeft < 168:
		return UrgencyThisWeek
	default:
		return UrgencyDistant
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Float es un helper para construir punteros a float64 en literales.
func Float(v float64) *float64 { return &v }
