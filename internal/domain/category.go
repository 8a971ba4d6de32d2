package domain

// category.go — normalización de categorías de mercado.
// Los venues devuelven categorías crudas heterogéneas ("us-current-affairs",
// "KXFED", seriesSlug de Polymarket); aquí se mapean a un conjunto estable
// de categorías de display. El fallback final es keyword matching sobre el
// título.

import "strings"

// Categorías de display estables.
const (
	CategoryPolitics = "Politics"
	CategorySports   = "Sports"
	CategoryCrypto   = "Crypto"
	CategoryFinance  = "Finance"
	CategoryTech     = "Tech"
	CategoryCulture  = "Culture"
	CategoryClimate  = "Climate & Science"
	CategoryWorld    = "World"
	CategoryOther    = "Other"
)

// Categoría cruda del API (lowercased) → categoría de display.
var categoryMap = map[string]string{
	// Valores del Gamma API de Polymarket
	"us-current-affairs": CategoryPolitics,
	"politics":           CategoryPolitics,
	"us politics":        CategoryPolitics,
	"global-politics":    CategoryPolitics,
	"geopolitics":        CategoryPolitics,
	"sports":             CategorySports,
	"esports":            CategorySports,
	"chess":              CategorySports,
	"crypto":             CategoryCrypto,
	"cryptocurrency":     CategoryCrypto,
	"pop-culture":        CategoryCulture,
	"pop culture":        CategoryCulture,
	"culture":            CategoryCulture,
	"entertainment":      CategoryCulture,
	"mentions":           CategoryCulture,
	"tech":               CategoryTech,
	"technology":         CategoryTech,
	"ai":                 CategoryTech,
	"science":            CategoryClimate,
	"climate":            CategoryClimate,
	"climate & science":  CategoryClimate,
	"weather":            CategoryClimate,
	"finance":            CategoryFinance,
	"business":           CategoryFinance,
	"economics":          CategoryFinance,
	"economy":            CategoryFinance,
	"earnings":           CategoryFinance,
	"world":              CategoryWorld,
	"international":      CategoryWorld,

	// Series tickers de Kalshi
	"kxmidterm":      CategoryPolitics,
	"kxelection":     CategoryPolitics,
	"kxpresidential": CategoryPolitics,
	"kxsenate":       CategoryPolitics,
	"kxhouse":        CategoryPolitics,
	"kxfed":          CategoryFinance,
	"kxcpi":          CategoryFinance,
	"kxgdp":          CategoryFinance,
	"kxjobs":         CategoryFinance,
	"kxrates":        CategoryFinance,
	"kxearnings":     CategoryFinance,
	"kxbtc":          CategoryCrypto,
	"kxeth":          CategoryCrypto,
	"kxsol":          CategoryCrypto,
	"kxnfl":          CategorySports,
	"kxnba":          CategorySports,
	"kxmlb":          CategorySports,
	"kxsoccer":       CategorySports,
	"kxmma":          CategorySports,
	"kxufc":          CategorySports,
	"kxweather":      CategoryClimate,
	"kxtemp":         CategoryClimate,
	"kxhurricane":    CategoryClimate,
	"kxai":           CategoryTech,
	"kxtech":         CategoryTech,
	"kxmovies":       CategoryCulture,
	"kxtv":           CategoryCulture,
	"kxmusic":        CategoryCulture,
	"kxoscar":        CategoryCulture,
}

// Prefijo de seriesSlug → categoría. Los mercados modernos de Polymarket
// traen seriesSlug en vez de category ("aapl-neg-risk-weekly" → Finance).
var seriesPrefixMap = []struct {
	prefix   string
	category string
}{
	{"premier-league", CategorySports},
	{"la-liga", CategorySports},
	{"bundesliga", CategorySports},
	{"serie-a", CategorySports},
	{"champions-league", CategorySports},
	{"nba", CategorySports},
	{"nfl", CategorySports},
	{"mlb", CategorySports},
	{"nhl", CategorySports},
	{"atp", CategorySports},
	{"wta", CategorySports},
	{"counter-strike", CategorySports},
	{"league-of-legends", CategorySports},
	{"valorant", CategorySports},
	{"ufc", CategorySports},
	{"f1-", CategorySports},
	{"aapl", CategoryFinance},
	{"tsla", CategoryFinance},
	{"msft", CategoryFinance},
	{"nvda", CategoryFinance},
	{"googl", CategoryFinance},
	{"goog", CategoryFinance},
	{"amzn", CategoryFinance},
	{"meta-", CategoryFinance},
	{"spy-", CategoryFinance},
	{"qqq-", CategoryFinance},
	{"earnings-", CategoryFinance},
	{"bitcoin", CategoryCrypto},
	{"ethereum", CategoryCrypto},
	{"solana", CategoryCrypto},
	{"xrp-", CategoryCrypto},
	{"dogecoin", CategoryCrypto},
	{"chicago-daily-weather", CategoryClimate},
	{"nyc-daily-weather", CategoryClimate},
	{"la-daily-weather", CategoryClimate},
	{"miami-daily-weather", CategoryClimate},
	{"china-invade", CategoryWorld},
	{"us-election", CategoryPolitics},
	{"us-presidential", CategoryPolitics},
}

// Fallback por keywords del título, en orden: la primera que matchea gana.
var titleCategoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryPolitics, []string{
		"trump", "biden", "congress", "senate", "election", "president",
		"governor", "democrat", "republican", "gop", "parliament",
		"prime minister", "impeach", "ballot", "vote", "legislation",
	}},
	{CategoryFinance, []string{
		"fed ", "federal reserve", "interest rate", "inflation", "cpi",
		"gdp", "jobs report", "unemployment", "s&p", "nasdaq", "dow jones",
		"earnings", "ipo", "stock", "recession", "share price", "market cap",
	}},
	{CategoryCrypto, []string{
		"bitcoin", "btc", "ethereum", "eth", "solana", "sol", "crypto",
		"defi", "nft", "memecoin", "doge", "token",
	}},
	{CategorySports, []string{
		"nba", "nfl", "mlb", "nhl", "soccer", "premier league",
		"champions league", "super bowl", "world series", "ufc", "mma",
		"tennis", "golf", "olympics", "world cup", "f1", "formula 1",
	}},
	{CategoryTech, []string{
		"openai", "chatgpt", "google", "apple", "microsoft", "meta ",
		"tiktok", "spacex", "tesla", "ai ", "artificial intelligence",
	}},
	{CategoryCulture, []string{
		"oscar", "grammy", "emmy", "box office", "movie", "album",
		"celebrity", "viral",
	}},
	{CategoryClimate, []string{
		"hurricane", "earthquake", "temperature", "climate",
		"wildfire", "nasa", "space", "asteroid",
	}},
	{CategoryWorld, []string{
		"ukraine", "russia", "china", "iran", "israel", "gaza",
		"north korea", "venezuela", "nato", "eu ",
	}},
}

// NormalizeCategory resuelve la categoría de display de un mercado a partir
// de su categoría cruda y, si hace falta, de su título. Nunca devuelve vacío.
func NormalizeCategory(rawCategory, title string) string {
	raw := strings.ToLower(strings.TrimSpace(rawCategory))

	if c, ok := categoryMap[raw]; ok {
		return c
	}
	if raw != "" {
		for _, e := range seriesPrefixMap {
			if strings.HasPrefix(raw, e.prefix) {
				return e.category
			}
		}
		// Series tickers de Kalshi no mapeados: "KXFOO-25" → intenta el prefijo
		if base, _, found := strings.Cut(raw, "-"); found {
			if c, ok := categoryMap[base]; ok {
				return c
			}
		}
	}

	lowerTitle := strings.ToLower(title)
	for _, e := range titleCategoryKeywords {
		for _, kw := range e.keywords {
			if strings.Contains(lowerTitle, kw) {
				return e.category
			}
		}
	}
	return CategoryOther
}
