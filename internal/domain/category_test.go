package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory_DirectMap(t *testing.T) {
	assert.Equal(t, CategoryPolitics, NormalizeCategory("us-current-affairs", ""))
	assert.Equal(t, CategoryPolitics, NormalizeCategory("Politics", ""))
	assert.Equal(t, CategoryCrypto, NormalizeCategory("CRYPTO", ""))
	assert.Equal(t, CategoryCulture, NormalizeCategory("pop-culture", ""))
	assert.Equal(t, CategoryClimate, NormalizeCategory("weather", ""))
}

func TestNormalizeCategory_KalshiSeriesTickers(t *testing.T) {
	assert.Equal(t, CategoryFinance, NormalizeCategory("KXFED", ""))
	assert.Equal(t, CategoryCrypto, NormalizeCategory("kxbtc", ""))
	// Ticker completo con sufijo: se resuelve por el prefijo de serie.
	assert.Equal(t, CategoryFinance, NormalizeCategory("KXFED-26MAR", ""))
	assert.Equal(t, CategorySports, NormalizeCategory("KXNBA-26-LAL", ""))
}

func TestNormalizeCategory_SeriesSlugPrefixes(t *testing.T) {
	assert.Equal(t, CategorySports, NormalizeCategory("premier-league-winner-2026", ""))
	assert.Equal(t, CategoryFinance, NormalizeCategory("aapl-neg-risk-weekly", ""))
	assert.Equal(t, CategoryCrypto, NormalizeCategory("bitcoin-above-on-date", ""))
	assert.Equal(t, CategoryClimate, NormalizeCategory("nyc-daily-weather-march", ""))
}

func TestNormalizeCategory_TitleFallback(t *testing.T) {
	assert.Equal(t, CategoryPolitics, NormalizeCategory("", "Will Trump win the election?"))
	assert.Equal(t, CategoryCrypto, NormalizeCategory("", "Bitcoin above $100k by June?"))
	assert.Equal(t, CategorySports, NormalizeCategory("", "Who wins the Super Bowl?"))
	assert.Equal(t, CategoryWorld, NormalizeCategory("", "Ukraine ceasefire before summer?"))
}

func TestNormalizeCategory_FirstKeywordGroupWins(t *testing.T) {
	// "trump" (Politics) está antes que "bitcoin" (Crypto) en el orden
	// de fallback: el título ambiguo resuelve a Politics.
	assert.Equal(t, CategoryPolitics, NormalizeCategory("", "Trump comments on bitcoin reserve?"))
}

func TestNormalizeCategory_Unknown(t *testing.T) {
	assert.Equal(t, CategoryOther, NormalizeCategory("", "Completely inscrutable question"))
	assert.Equal(t, CategoryOther, NormalizeCategory("no-such-series", "nothing matches here"))
}
