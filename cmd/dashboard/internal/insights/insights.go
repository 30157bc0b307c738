// Package insights wraps the generative model used for stock analysis, scenario
// forecasts, headline sentiment and natural-language screening.
package insights

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var ErrDisabled = errors.New("AI insights are not configured")

const (
	AnalysisUnavailable = "AI analysis is unavailable right now. Please try again later."
	ForecastUnavailable = "Scenario forecasts are unavailable right now."
)

type Analyst interface {
	Analysis(ctx context.Context, q models.Quote) (string, error)
}

type Forecaster interface {
	Forecast(ctx context.Context, q models.Quote) (string, error)
}

// SentimentClassifier returns one sentiment per article, in article order.
type SentimentClassifier interface {
	Sentiment(ctx context.Context, articles []models.NewsArticle) ([]models.Sentiment, error)
}

type CriteriaExtractor interface {
	ExtractCriteria(ctx context.Context, query string) (models.ScreenerCriteria, error)
}

type Service interface {
	Analyst
	Forecaster
	SentimentClassifier
	CriteriaExtractor
}

// Disabled fails every call. It stands in when no API key is configured.
type Disabled struct{}

var _ Service = Disabled{}

func (Disabled) Analysis(context.Context, models.Quote) (string, error) { return "", ErrDisabled }
func (Disabled) Forecast(context.Context, models.Quote) (string, error) { return "", ErrDisabled }

func (Disabled) Sentiment(context.Context, []models.NewsArticle) ([]models.Sentiment, error) {
	return nil, ErrDisabled
}

func (Disabled) ExtractCriteria(context.Context, string) (models.ScreenerCriteria, error) {
	return models.ScreenerCriteria{}, ErrDisabled
}

// Degraded never fails for analysis, forecast or sentiment: failures become
// placeholder text or Neutral. Criteria errors pass through untouched.
type Degraded struct {
	next   Service
	logger *zap.Logger
}

var _ Service = (*Degraded)(nil)

func NewDegraded(next Service, logger *zap.Logger) *Degraded {
	return &Degraded{next: next, logger: logger}
}

func (d *Degraded) Analysis(ctx context.Context, q models.Quote) (string, error) {
	text, err := d.next.Analysis(ctx, q)
	if err != nil || text == "" {
		d.logger.Warn("AI analysis failed", zap.String("symbol", q.Symbol), zap.Error(err))
		return AnalysisUnavailable, nil
	}
	return text, nil
}

func (d *Degraded) Forecast(ctx context.Context, q models.Quote) (string, error) {
	text, err := d.next.Forecast(ctx, q)
	if err != nil || text == "" {
		d.logger.Warn("AI forecast failed", zap.String("symbol", q.Symbol), zap.Error(err))
		return ForecastUnavailable, nil
	}
	return text, nil
}

func (d *Degraded) Sentiment(ctx context.Context, articles []models.NewsArticle) ([]models.Sentiment, error) {
	if len(articles) == 0 {
		return nil, nil
	}
	got, err := d.next.Sentiment(ctx, articles)
	if err == nil && len(got) == len(articles) {
		return got, nil
	}
	if err == nil {
		d.logger.Warn("Sentiment count mismatch", zap.Int("articles", len(articles)), zap.Int("sentiments", len(got)))
	} else {
		d.logger.Warn("Sentiment classification failed", zap.Error(err))
	}

	neutral := make([]models.Sentiment, len(articles))
	for i := range neutral {
		neutral[i] = models.Neutral
	}
	return neutral, nil
}

func (d *Degraded) ExtractCriteria(ctx context.Context, query string) (models.ScreenerCriteria, error) {
	return d.next.ExtractCriteria(ctx, query)
}
