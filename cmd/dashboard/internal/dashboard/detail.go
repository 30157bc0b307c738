package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/markcheno/go-talib"
	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/alerts"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// MovingAveragePeriod is the window of the chart's SMA overlay.
const MovingAveragePeriod = 5

type Detail struct {
	Quote         models.Quote             `json:"quote"`
	Range         models.TimeRange         `json:"range"`
	History       []models.HistoricalPoint `json:"history"`
	MovingAverage []*float64               `json:"movingAverage"`
	News          []models.NewsArticle     `json:"news"`
	Analysis      string                   `json:"analysis"`
	Forecast      string                   `json:"forecast"`
	Alert         *alerts.Record           `json:"alert,omitempty"`
	InWatchlist   bool                     `json:"inWatchlist"`
}

// Detail gathers everything the stock view shows. Only an unknown symbol, an unknown
// range or a failed history fetch is an error; news and AI text degrade on their own.
func (d *Dashboard) Detail(ctx context.Context, symbol string, rng models.TimeRange) (Detail, error) {
	q, ok := d.Quote(symbol)
	if !ok {
		return Detail{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if rng == "" {
		rng = models.Range1D
	}

	out := Detail{Quote: q, Range: rng, InWatchlist: d.watchlist.Contains(symbol)}
	if rec, ok := d.alerts.Get(symbol); ok {
		out.Alert = &rec
	}

	var (
		wg         sync.WaitGroup
		historyErr error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		out.History, historyErr = d.source.History(ctx, symbol, rng, q.Price)
	}()
	go func() {
		defer wg.Done()
		out.News = d.news(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		out.Analysis, _ = d.insights.Analysis(ctx, q)
	}()
	go func() {
		defer wg.Done()
		out.Forecast, _ = d.insights.Forecast(ctx, q)
	}()
	wg.Wait()

	if historyErr != nil {
		if !errors.Is(historyErr, generator.ErrUnknownRange) {
			d.logger.Error("History fetch failed", zap.String("symbol", symbol), zap.Error(historyErr))
		}
		return Detail{}, historyErr
	}
	out.MovingAverage = MovingAverage(out.History, MovingAveragePeriod)
	return out, nil
}

func (d *Dashboard) news(ctx context.Context, symbol string) []models.NewsArticle {
	articles, err := d.source.News(ctx, symbol)
	if err != nil {
		d.logger.Warn("News fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return []models.NewsArticle{}
	}
	sentiments, err := d.insights.Sentiment(ctx, articles)
	if err != nil || len(sentiments) != len(articles) {
		sentiments = make([]models.Sentiment, len(articles))
		for i := range sentiments {
			sentiments[i] = models.Neutral
		}
	}
	for i := range articles {
		articles[i].Sentiment = sentiments[i]
	}
	return articles
}

// MovingAverage returns the simple moving average of the history prices, aligned with
// history. Points inside the warm-up window are nil.
func MovingAverage(history []models.HistoricalPoint, period int) []*float64 {
	out := make([]*float64, len(history))
	if period < 2 || len(history) < period {
		return out
	}

	prices := make([]float64, len(history))
	for i, p := range history {
		prices[i] = p.Price
	}
	sma := talib.Sma(prices, period)
	for i := period - 1; i < len(sma); i++ {
		v := generator.Round2(sma[i])
		out[i] = &v
	}
	return out
}
