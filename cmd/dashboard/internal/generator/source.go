package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shubham-shewale/stock-dashboard/pkg/catalogue"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var ErrUnknownRange = errors.New("unknown time range")

// Source serves generated market data with a simulated network latency.
type Source struct {
	gen     *QuoteGenerator
	rand    Rand
	clock   Clock
	latency time.Duration
}

func NewSource(gen *QuoteGenerator, rnd Rand, clock Clock, latency time.Duration) *Source {
	return &Source{
		gen:     gen,
		rand:    rnd,
		clock:   clock,
		latency: latency,
	}
}

func (s *Source) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(s.latency):
		return nil
	}
}

// Fetch returns a freshly generated quote set.
func (s *Source) Fetch(ctx context.Context) ([]models.Quote, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.gen.Generate(), nil
}

// MarketSummary returns the three headline indices.
func (s *Source) MarketSummary(ctx context.Context) ([]models.MarketIndex, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	r := s.rand.Float64
	index := func(name string, base, spread, swing float64) models.MarketIndex {
		return models.MarketIndex{
			Name:          name,
			Value:         Round2(r()*spread + base),
			Change:        Round2((r() - 0.5) * swing),
			ChangePercent: Round2((r() - 0.5) * 2),
		}
	}
	return []models.MarketIndex{
		index("S&P 500", 5000, 500, 100),
		index("Dow Jones", 38000, 1000, 300),
		index("NASDAQ", 17000, 800, 200),
	}, nil
}

// History walks backwards from currentPrice and returns points in chronological order.
// The newest point is always currentPrice.
func (s *Source) History(ctx context.Context, symbol string, rng models.TimeRange, currentPrice float64) ([]models.HistoricalPoint, error) {
	var (
		n    int
		step time.Duration
	)
	switch rng {
	case models.Range1D:
		n, step = 24, time.Hour
	case models.Range1W:
		n, step = 7, 24*time.Hour
	case models.Range1M:
		n, step = 30, 24*time.Hour
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRange, rng)
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	points := make([]models.HistoricalPoint, n)
	price := currentPrice
	for i := n - 1; i >= 0; i-- {
		if i < n-1 {
			price = price / (1 + (s.rand.Float64()-0.5)*0.05)
		}
		points[i] = models.HistoricalPoint{
			Date:  now.Add(-time.Duration(n-1-i) * step),
			Price: Round2(price),
		}
	}
	points[n-1].Price = currentPrice
	return points, nil
}

// News returns the latest headlines for symbol, newest first.
func (s *Source) News(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	company, _ := catalogue.Lookup(symbol)
	now := s.clock.Now()
	day := 24 * time.Hour

	return []models.NewsArticle{
		{
			ID:          symbol + "-1",
			Source:      "Reuters",
			Headline:    fmt.Sprintf("%s revenue beats expectations in the latest quarter", company.Name),
			Summary:     "The company reported strong results, lifting the stock in after-hours trading.",
			URL:         "#",
			PublishedAt: now.Add(-1 * day),
		},
		{
			ID:          symbol + "-2",
			Source:      "Bloomberg",
			Headline:    fmt.Sprintf("Analysis: %s faces supply chain headwinds", company.Name),
			Summary:     "Analysts warn that logistics problems could weigh on performance in the second half.",
			URL:         "#",
			PublishedAt: now.Add(-2 * day),
		},
		{
			ID:          symbol + "-3",
			Source:      "The Wall Street Journal",
			Headline:    fmt.Sprintf("New %s product launch excites investors", company.Name),
			Summary:     "The company unveiled a product expected to strengthen its market position.",
			URL:         "#",
			PublishedAt: now.Add(-3 * day),
		},
	}, nil
}
