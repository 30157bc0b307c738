package testutils

import (
	"context"
	"sync"

	"google.golang.org/genai"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// MockInsights implements every AI collaborator with canned answers or Err.
type MockInsights struct {
	Criteria   models.ScreenerCriteria
	Text       string
	Sentiments []models.Sentiment
	Err        error

	Mu    sync.Mutex
	Calls []string
}

func (m *MockInsights) record(call string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockInsights) ExtractCriteria(ctx context.Context, query string) (models.ScreenerCriteria, error) {
	m.record("criteria:" + query)
	if m.Err != nil {
		return models.ScreenerCriteria{}, m.Err
	}
	return m.Criteria, nil
}

func (m *MockInsights) Analysis(ctx context.Context, q models.Quote) (string, error) {
	m.record("analysis:" + q.Symbol)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockInsights) Forecast(ctx context.Context, q models.Quote) (string, error) {
	m.record("forecast:" + q.Symbol)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockInsights) Sentiment(ctx context.Context, articles []models.NewsArticle) ([]models.Sentiment, error) {
	m.record("sentiment")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Sentiments, nil
}

// MockGenerator answers every prompt with Response and remembers what it was asked.
type MockGenerator struct {
	Response string
	Err      error

	Mu      sync.Mutex
	Prompts []string
	Schemas []*genai.Schema
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	m.Schemas = append(m.Schemas, schema)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
