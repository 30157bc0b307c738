package insights_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/insights"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/testutils"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var articles = []models.NewsArticle{
	{ID: "AAPL-1", Headline: "Apple beats expectations"},
	{ID: "AAPL-2", Headline: "Apple faces headwinds"},
	{ID: "AAPL-3", Headline: "Apple launches a product"},
}

func TestDegraded_PlaceholdersOnFailure(t *testing.T) {
	d := insights.NewDegraded(insights.Disabled{}, zap.NewNop())
	q := models.Quote{Symbol: "AAPL"}

	text, err := d.Analysis(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, insights.AnalysisUnavailable, text)

	text, err = d.Forecast(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, insights.ForecastUnavailable, text)

	sentiments, err := d.Sentiment(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, []models.Sentiment{models.Neutral, models.Neutral, models.Neutral}, sentiments)
}

func TestDegraded_CriteriaErrorsPropagate(t *testing.T) {
	d := insights.NewDegraded(insights.Disabled{}, zap.NewNop())
	_, err := d.ExtractCriteria(context.Background(), "cheap tech")
	assert.ErrorIs(t, err, insights.ErrDisabled)
}

func TestDegraded_SentimentLengthMismatch(t *testing.T) {
	mock := &testutils.MockInsights{Sentiments: []models.Sentiment{models.Positive}}
	d := insights.NewDegraded(mock, zap.NewNop())

	sentiments, err := d.Sentiment(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, []models.Sentiment{models.Neutral, models.Neutral, models.Neutral}, sentiments)
}

func TestDegraded_PassesThroughSuccess(t *testing.T) {
	mock := &testutils.MockInsights{
		Text:       "RSI is neutral.",
		Sentiments: []models.Sentiment{models.Positive, models.Negative, models.Neutral},
	}
	d := insights.NewDegraded(mock, zap.NewNop())

	text, _ := d.Analysis(context.Background(), models.Quote{Symbol: "AAPL"})
	assert.Equal(t, "RSI is neutral.", text)

	sentiments, _ := d.Sentiment(context.Background(), articles)
	assert.Equal(t, mock.Sentiments, sentiments)
}

func TestGemini_SentimentMapsByID(t *testing.T) {
	gen := &testutils.MockGenerator{
		Response: `[{"id":"AAPL-2","sentiment":"Negative"},{"id":"AAPL-1","sentiment":"Positive"},{"id":"AAPL-3","sentiment":"Bullish"}]`,
	}
	g := insights.NewGemini(gen)

	sentiments, err := g.Sentiment(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, []models.Sentiment{models.Positive, models.Negative, models.Neutral}, sentiments)

	require.Len(t, gen.Prompts, 1)
	assert.Contains(t, gen.Prompts[0], "(id: AAPL-2) Apple faces headwinds")
	assert.NotNil(t, gen.Schemas[0])
}

func TestGemini_SentimentBadJSON(t *testing.T) {
	g := insights.NewGemini(&testutils.MockGenerator{Response: "not json"})
	_, err := g.Sentiment(context.Background(), articles)
	assert.Error(t, err)
}

func TestGemini_ExtractCriteria(t *testing.T) {
	gen := &testutils.MockGenerator{
		Response: `{"sectors":["Technology"],"priceToEarningsRatio":{"max":15},"recommendation":["Buy","Maybe"]}`,
	}
	g := insights.NewGemini(gen)

	c, err := g.ExtractCriteria(context.Background(), "cheap tech stocks to buy")
	require.NoError(t, err)
	assert.Equal(t, []string{"Technology"}, c.Sectors)
	require.NotNil(t, c.PE)
	assert.Nil(t, c.PE.Min)
	assert.Equal(t, 15.0, *c.PE.Max)
	assert.Equal(t, []models.Recommendation{models.Buy}, c.Recommendation)
	assert.Contains(t, gen.Prompts[0], `"cheap tech stocks to buy"`)
}

func TestGemini_ExtractCriteriaUnparsable(t *testing.T) {
	g := insights.NewGemini(&testutils.MockGenerator{Response: "{"})
	_, err := g.ExtractCriteria(context.Background(), "anything")
	assert.ErrorIs(t, err, insights.ErrUnparsable)
}

func TestGemini_TextErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	g := insights.NewGemini(&testutils.MockGenerator{Err: boom})

	_, err := g.Analysis(context.Background(), models.Quote{Symbol: "AAPL"})
	assert.ErrorIs(t, err, boom)
}

func TestGemini_ForecastPrompt(t *testing.T) {
	gen := &testutils.MockGenerator{Response: "  **Optimistic:** ...\n"}
	g := insights.NewGemini(gen)

	text, err := g.Forecast(context.Background(), models.Quote{Symbol: "AAPL", Name: "Apple", Sector: "Technology", PE: 28.5})
	require.NoError(t, err)
	assert.Equal(t, "**Optimistic:** ...", text)
	assert.Contains(t, gen.Prompts[0], "Apple (AAPL)")
	assert.Contains(t, gen.Prompts[0], "P/E: 28.50")
	assert.Nil(t, gen.Schemas[0])
}
