package generator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/scorer"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/testutils"
	"github.com/shubham-shewale/stock-dashboard/pkg/catalogue"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

func TestGenerate_QuotesAreConsistent(t *testing.T) {
	gen := generator.NewQuoteGenerator(catalogue.Symbols(), generator.NewRealRand(42), generator.NewBaselines())

	quotes := gen.Generate()
	require.Len(t, quotes, len(catalogue.Symbols()))

	for _, q := range quotes {
		assert.NotEmpty(t, q.Name, q.Symbol)
		assert.Greater(t, q.FiftyTwoWeekHigh, q.Price, "%s high", q.Symbol)
		assert.Less(t, q.FiftyTwoWeekLow, q.Price, "%s low", q.Symbol)
		assert.GreaterOrEqual(t, q.RSI, 0.0)
		assert.LessOrEqual(t, q.RSI, 100.0)
		assert.True(t, strings.HasSuffix(q.Volume, "M"), q.Volume)
		assert.Equal(t, scorer.Recommend(q), q.Recommendation, q.Symbol)

		if catalogue.IsLowPrice(q.Symbol) {
			assert.Less(t, q.Price, 16.0, q.Symbol)
		}
		if catalogue.IsMegaCap(q.Symbol) {
			assert.True(t, strings.HasSuffix(q.MarketCap, "T"), "%s cap %s", q.Symbol, q.MarketCap)
		}
	}
}

func TestGenerate_BaselineTakenOnce(t *testing.T) {
	baselines := generator.NewBaselines()
	rnd := &testutils.MockRand{ValFloat: 0.5}
	gen := generator.NewQuoteGenerator([]string{"AAPL"}, rnd, baselines)

	first := gen.Generate()
	open, ok := baselines.Open("AAPL")
	require.True(t, ok)
	assert.InDelta(t, first[0].Price-first[0].Change, open, 1e-9)

	rnd.ValFloat = 0.9
	second := gen.Generate()
	assert.NotEqual(t, first[0].Price, second[0].Price)

	again, _ := baselines.Open("AAPL")
	assert.Equal(t, open, again, "reload must not move the session open")
	assert.Equal(t, 1, baselines.Len())
}

func TestFormatMarketCap(t *testing.T) {
	assert.Equal(t, "2.50T", generator.FormatMarketCap(2500))
	assert.Equal(t, "1.00T", generator.FormatMarketCap(1000))
	assert.Equal(t, "999.9B", generator.FormatMarketCap(999.9))
	assert.Equal(t, "5.0B", generator.FormatMarketCap(5))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, generator.Round2(1.005))
	assert.Equal(t, -1.01, generator.Round2(-1.005))
	assert.Equal(t, 102.01, generator.Round2(102.00999999))
}

func newSource(rnd generator.Rand, clock generator.Clock, latency time.Duration) *generator.Source {
	gen := generator.NewQuoteGenerator([]string{"AAPL", "MSFT"}, rnd, generator.NewBaselines())
	return generator.NewSource(gen, rnd, clock, latency)
}

func TestSource_HistoryIsChronological(t *testing.T) {
	clock := &testutils.MockClock{CurrentTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	src := newSource(&testutils.MockRand{Floats: []float64{0.1, 0.9}}, clock, 0)

	cases := []struct {
		rng  models.TimeRange
		n    int
		step time.Duration
	}{
		{models.Range1D, 24, time.Hour},
		{models.Range1W, 7, 24 * time.Hour},
		{models.Range1M, 30, 24 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(string(tc.rng), func(t *testing.T) {
			points, err := src.History(context.Background(), "AAPL", tc.rng, 150.25)
			require.NoError(t, err)
			require.Len(t, points, tc.n)

			last := points[tc.n-1]
			assert.Equal(t, 150.25, last.Price)
			assert.Equal(t, clock.Now(), last.Date)
			for i := 1; i < len(points); i++ {
				assert.Equal(t, tc.step, points[i].Date.Sub(points[i-1].Date))
			}
		})
	}
}

func TestSource_HistoryUnknownRange(t *testing.T) {
	src := newSource(&testutils.MockRand{ValFloat: 0.5}, &testutils.MockClock{}, 0)
	_, err := src.History(context.Background(), "AAPL", models.TimeRange("5Y"), 10)
	assert.True(t, errors.Is(err, generator.ErrUnknownRange))
}

func TestSource_NewsAndSummary(t *testing.T) {
	src := newSource(&testutils.MockRand{ValFloat: 0.5}, &testutils.MockClock{CurrentTime: time.Unix(1e6, 0)}, 0)

	news, err := src.News(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, news, 3)
	assert.Equal(t, "AAPL-1", news[0].ID)
	assert.Contains(t, news[0].Headline, "Apple")
	assert.True(t, news[0].PublishedAt.After(news[1].PublishedAt))

	indices, err := src.MarketSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, indices, 3)
	assert.Equal(t, "S&P 500", indices[0].Name)
	assert.Equal(t, 5250.0, indices[0].Value)
	assert.Equal(t, 0.0, indices[0].Change)
}

func TestSource_LatencyHonoursContext(t *testing.T) {
	clock := &testutils.MockClock{}
	src := newSource(&testutils.MockRand{ValFloat: 0.5}, clock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	clock = &testutils.MockClock{}
	src = newSource(&testutils.MockRand{ValFloat: 0.5}, clock, time.Second)
	done := make(chan []models.Quote, 1)
	go func() {
		quotes, _ := src.Fetch(context.Background())
		done <- quotes
	}()
	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
	clock.Advance(time.Second)

	select {
	case quotes := <-done:
		assert.Len(t, quotes, 2)
	case <-time.After(time.Second):
		t.Fatal("Fetch did not return after the latency elapsed")
	}
}
