package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSymbol indicates the provider has no data for the requested
// company or ticker.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Metrics is a snapshot of a company's market fundamentals.
type Metrics struct {
	Ticker        string
	CompanyName   string
	Sector        string
	Industry      string
	CurrentPrice  float64
	MarketCap     int64
	PERatio       float64
	ProfitMargin  float64
	RevenueGrowth float64
	DebtToEquity  float64
	ROE           float64
	DividendYield float64
	High52Week    float64
	Low52Week     float64
}

// asState converts the metrics into the map shape stored in run state.
func (m Metrics) asState() map[string]any {
	return map[string]any{
		"ticker":              m.Ticker,
		"company_name":        m.CompanyName,
		"sector":              m.Sector,
		"industry":            m.Industry,
		"current_price":       m.CurrentPrice,
		"market_cap":          m.MarketCap,
		"pe_ratio":            m.PERatio,
		"profit_margin":       m.ProfitMargin,
		"revenue_growth":      m.RevenueGrowth,
		"debt_to_equity":      m.DebtToEquity,
		"roe":                 m.ROE,
		"dividend_yield":      m.DividendYield,
		"fifty_two_week_high": m.High52Week,
		"fifty_two_week_low":  m.Low52Week,
	}
}

// MarketData supplies company fundamentals to the researcher. Implementations
// must be safe for concurrent use; the engine may run many research threads
// against one provider.
type MarketData interface {
	// Metrics returns fundamentals for a ticker or company name.
	// Returns ErrUnknownSymbol when the company is not covered.
	Metrics(ctx context.Context, symbol string) (Metrics, error)

	// Resolve maps a free-text company mention to a ticker. Returns
	// ErrUnknownSymbol when no covered company matches.
	Resolve(ctx context.Context, mention string) (string, error)
}

// StaticProvider serves a fixed table of company fundamentals. It is the
// default provider for offline runs and tests.
type StaticProvider struct {
	byTicker map[string]Metrics
	aliases  map[string]string // lowercased name fragment -> ticker
}

// NewStaticProvider creates a provider over the given metrics. Company names
// and tickers are both resolvable.
func NewStaticProvider(companies ...Metrics) *StaticProvider {
	p := &StaticProvider{
		byTicker: make(map[string]Metrics, len(companies)),
		aliases:  make(map[string]string, len(companies)*2),
	}
	for _, m := range companies {
		p.byTicker[m.Ticker] = m
		p.aliases[strings.ToLower(m.Ticker)] = m.Ticker
		p.aliases[strings.ToLower(m.CompanyName)] = m.Ticker
	}
	return p
}

// AddAlias registers an extra name fragment for a ticker, e.g. "goldman"
// for GS.
func (p *StaticProvider) AddAlias(mention, ticker string) *StaticProvider {
	p.aliases[strings.ToLower(mention)] = ticker
	return p
}

// Metrics implements MarketData.
func (p *StaticProvider) Metrics(_ context.Context, symbol string) (Metrics, error) {
	if m, ok := p.byTicker[strings.ToUpper(symbol)]; ok {
		return m, nil
	}
	if ticker, ok := p.aliases[strings.ToLower(symbol)]; ok {
		return p.byTicker[ticker], nil
	}
	return Metrics{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
}

// Resolve implements MarketData. Matching is case-insensitive substring
// search over registered names, longest alias first so "goldman sachs" wins
// over "goldman".
func (p *StaticProvider) Resolve(_ context.Context, mention string) (string, error) {
	lower := strings.ToLower(mention)

	best := ""
	bestLen := 0
	for alias, ticker := range p.aliases {
		if len(alias) > bestLen && containsWord(lower, alias) {
			best = ticker
			bestLen = len(alias)
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: no covered company in %q", ErrUnknownSymbol, mention)
	}
	return best, nil
}

// containsWord reports whether text contains alias bounded by non-letter
// characters, so the ticker "A" does not match inside "Apple".
func containsWord(text, alias string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], alias)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(alias)
		beforeOK := start == 0 || !isLetter(text[start-1])
		afterOK := end == len(text) || !isLetter(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// DefaultUniverse returns the built-in company table used by the CLI and
// examples.
func DefaultUniverse() []Metrics {
	return []Metrics{
		{
			Ticker: "GS", CompanyName: "Goldman Sachs", Sector: "Financial Services",
			Industry: "Capital Markets", CurrentPrice: 505.32, MarketCap: 197_000_000_000,
			PERatio: 17.5, ProfitMargin: 0.25, RevenueGrowth: 0.08, DebtToEquity: 2.1,
			ROE: 0.12, DividendYield: 0.022, High52Week: 540.10, Low52Week: 380.55,
		},
		{
			Ticker: "JPM", CompanyName: "JPMorgan Chase", Sector: "Financial Services",
			Industry: "Banks - Diversified", CurrentPrice: 248.90, MarketCap: 701_000_000_000,
			PERatio: 13.8, ProfitMargin: 0.32, RevenueGrowth: 0.11, DebtToEquity: 1.4,
			ROE: 0.17, DividendYield: 0.020, High52Week: 260.15, Low52Week: 179.20,
		},
		{
			Ticker: "AAPL", CompanyName: "Apple", Sector: "Technology",
			Industry: "Consumer Electronics", CurrentPrice: 232.45, MarketCap: 3_550_000_000_000,
			PERatio: 35.2, ProfitMargin: 0.26, RevenueGrowth: 0.05, DebtToEquity: 1.6,
			ROE: 1.47, DividendYield: 0.004, High52Week: 250.00, Low52Week: 164.08,
		},
		{
			Ticker: "TSLA", CompanyName: "Tesla", Sector: "Consumer Cyclical",
			Industry: "Auto Manufacturers", CurrentPrice: 342.10, MarketCap: 1_100_000_000_000,
			PERatio: 92.4, ProfitMargin: 0.07, RevenueGrowth: -0.02, DebtToEquity: 0.3,
			ROE: 0.10, DividendYield: 0, High52Week: 488.54, Low52Week: 182.00,
		},
		{
			Ticker: "MSFT", CompanyName: "Microsoft", Sector: "Technology",
			Industry: "Software - Infrastructure", CurrentPrice: 441.20, MarketCap: 3_280_000_000_000,
			PERatio: 36.8, ProfitMargin: 0.36, RevenueGrowth: 0.15, DebtToEquity: 0.4,
			ROE: 0.35, DividendYield: 0.007, High52Week: 468.35, Low52Week: 385.58,
		},
	}
}
