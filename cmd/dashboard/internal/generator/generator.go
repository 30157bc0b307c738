package generator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/scorer"
	"github.com/shubham-shewale/stock-dashboard/pkg/catalogue"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// QuoteGenerator produces synthetic but internally consistent quotes for the catalogue.
type QuoteGenerator struct {
	symbols   []string
	rand      Rand
	baselines *Baselines
}

func NewQuoteGenerator(symbols []string, rnd Rand, baselines *Baselines) *QuoteGenerator {
	return &QuoteGenerator{
		symbols:   symbols,
		rand:      rnd,
		baselines: baselines,
	}
}

// Generate returns a full quote set. The first call of a session also seeds the baselines.
func (g *QuoteGenerator) Generate() []models.Quote {
	quotes := make([]models.Quote, len(g.symbols))
	for i, sym := range g.symbols {
		quotes[i] = g.quote(sym)
	}
	g.baselines.SnapshotIfEmpty(quotes)
	return quotes
}

func (g *QuoteGenerator) quote(symbol string) models.Quote {
	r := g.rand.Float64
	company, _ := catalogue.Lookup(symbol)

	var price float64
	if catalogue.IsLowPrice(symbol) {
		price = Round2(r()*15 + 0.5)
	} else {
		price = Round2(r()*600 + 20)
	}

	changePercent := (r() - 0.5) * 8
	change := price * changePercent / 100
	rsi := r() * 100
	volume := fmt.Sprintf("%.2fM", r()*50+1)

	high := price * (r()*0.8 + 1.1)
	low := price * (1 - (r()*0.7 + 0.05))
	pb := r()*8 + 0.8
	pe := r()*45 + 5

	var capBn float64
	if catalogue.IsMegaCap(symbol) {
		capBn = (r()*1.5 + 1.5) * 1000
	} else {
		capBn = r()*300 + 5
	}

	q := models.Quote{
		Symbol:           symbol,
		Name:             company.Name,
		Sector:           company.Sector,
		Price:            price,
		Change:           Round2(change),
		ChangePercent:    Round2(changePercent),
		Volume:           volume,
		RSI:              Round2(rsi),
		FiftyTwoWeekLow:  Round2(low),
		FiftyTwoWeekHigh: Round2(high),
		PriceToBook:      Round2(pb),
		PE:               Round2(pe),
		MarketCap:        FormatMarketCap(capBn),
		EPS:              Round2(r()*15 - 2),
		DividendYield:    Round2(r() * 4),
	}
	q.Recommendation = scorer.Recommend(q)
	return q
}

// FormatMarketCap renders a billions value with a T suffix from 1000 upwards, B below.
func FormatMarketCap(billions float64) string {
	if billions >= 1000 {
		return fmt.Sprintf("%.2fT", billions/1000)
	}
	return fmt.Sprintf("%.1fB", billions)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
