package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var ErrUnparsable = errors.New("could not understand the request, try rephrasing it")

// Generator produces model output for a prompt. A non-nil schema asks for JSON matching it.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// GenAIGenerator calls the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	var cfg *genai.GenerateContentConfig
	if schema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Gemini builds the prompts and decodes the structured answers.
type Gemini struct {
	gen Generator
}

var _ Service = (*Gemini)(nil)

func NewGemini(gen Generator) *Gemini {
	return &Gemini{gen: gen}
}

func (g *Gemini) Analysis(ctx context.Context, q models.Quote) (string, error) {
	prompt := fmt.Sprintf(`You are a financial analyst writing for retail investors.
Do not give direct advice such as "buy" or "sell". Explain the indicators objectively.

Current data:
- Stock: %s (%s)
- Price: $%.2f
- Daily change: %.2f%%
- RSI: %.2f
- 52-week range: $%.2f - $%.2f
- Price to book: %.2f

Write one paragraph of 3-4 sentences. Start with what the RSI value means,
then comment on where the price sits in its 52-week range,
and finish with what the price to book ratio may indicate.`,
		q.Name, q.Symbol, q.Price, q.ChangePercent, q.RSI, q.FiftyTwoWeekLow, q.FiftyTwoWeekHigh, q.PriceToBook)

	return g.text(ctx, prompt)
}

func (g *Gemini) Forecast(ctx context.Context, q models.Quote) (string, error) {
	prompt := fmt.Sprintf(`You are a risk analyst. For %s (%s), give three short-term (3-6 months)
scenarios: optimistic, realistic and pessimistic.
- Price: %.2f
- RSI: %.2f
- P/E: %.2f
- Sector: %s

No investment advice. Name the factors behind each scenario. Be brief and use this format:
**Optimistic:** [explanation]
**Realistic:** [explanation]
**Pessimistic:** [explanation]`,
		q.Name, q.Symbol, q.Price, q.RSI, q.PE, q.Sector)

	return g.text(ctx, prompt)
}

func (g *Gemini) text(ctx context.Context, prompt string) (string, error) {
	out, err := g.gen.Generate(ctx, prompt, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

var sentimentSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":        {Type: genai.TypeString},
			"sentiment": {Type: genai.TypeString, Enum: []string{string(models.Positive), string(models.Negative), string(models.Neutral)}},
		},
		Required: []string{"id", "sentiment"},
	},
}

// Sentiment classifies headlines by article id. Articles the model skips are Neutral.
func (g *Gemini) Sentiment(ctx context.Context, articles []models.NewsArticle) ([]models.Sentiment, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&b, "(id: %s) %s\n", a.ID, a.Headline)
	}
	prompt := `Classify the sentiment of each company news headline below as Positive, Negative or Neutral.
Answer only with a JSON array of objects with "id" and "sentiment".

Headlines:
` + b.String()

	out, err := g.gen.Generate(ctx, prompt, sentimentSchema)
	if err != nil {
		return nil, err
	}

	var results []struct {
		ID        string           `json:"id"`
		Sentiment models.Sentiment `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		return nil, fmt.Errorf("decode sentiment: %w", err)
	}

	byID := make(map[string]models.Sentiment, len(results))
	for _, r := range results {
		byID[r.ID] = r.Sentiment
	}
	sentiments := make([]models.Sentiment, len(articles))
	for i, a := range articles {
		switch s := byID[a.ID]; s {
		case models.Positive, models.Negative:
			sentiments[i] = s
		default:
			sentiments[i] = models.Neutral
		}
	}
	return sentiments, nil
}

func rangeSchema() *genai.Schema {
	return &genai.Schema{
		Type:     genai.TypeObject,
		Nullable: genai.Ptr(true),
		Properties: map[string]*genai.Schema{
			"min": {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
			"max": {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
		},
	}
}

func criteriaSchema() *genai.Schema {
	recs := make([]string, len(models.Recommendations))
	for i, r := range models.Recommendations {
		recs[i] = string(r)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"sectors": {
				Type:     genai.TypeArray,
				Items:    &genai.Schema{Type: genai.TypeString},
				Nullable: genai.Ptr(true),
			},
			"rsi":                  rangeSchema(),
			"priceToEarningsRatio": rangeSchema(),
			"marketCapInBillions":  rangeSchema(),
			"dividendYield":        rangeSchema(),
			"recommendation": {
				Type:     genai.TypeArray,
				Items:    &genai.Schema{Type: genai.TypeString, Enum: recs},
				Nullable: genai.Ptr(true),
			},
		},
	}
}

// ExtractCriteria turns a query such as "cheap tech stocks with high dividends" into criteria.
func (g *Gemini) ExtractCriteria(ctx context.Context, query string) (models.ScreenerCriteria, error) {
	prompt := fmt.Sprintf(`You convert natural-language stock screening requests into JSON filter criteria.
Extract the criteria from this request: %q

Available fields:
- sectors (string[]): company sectors, e.g. "Technology", "Healthcare", "Energy".
- rsi (min/max): "high momentum" or "overbought" means rsi > 70, "oversold" means rsi < 30.
- priceToEarningsRatio (min/max): "low" means < 15, "high" means > 35.
- marketCapInBillions (min/max): market cap in billions of dollars. "large caps" means > 200, "small caps" means < 2.
- dividendYield (min/max): percentage. "high yield" means > 3.
- recommendation (string[]): one or more of %s.

Answer only with a JSON object matching the schema. If nothing can be extracted, answer {}.`,
		query, strings.Join(quoted(models.Recommendations), ", "))

	out, err := g.gen.Generate(ctx, prompt, criteriaSchema())
	if err != nil {
		return models.ScreenerCriteria{}, err
	}

	var c models.ScreenerCriteria
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		return models.ScreenerCriteria{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	valid := c.Recommendation[:0]
	for _, r := range c.Recommendation {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	c.Recommendation = valid
	return c, nil
}

func quoted(recs []models.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = fmt.Sprintf("%q", string(r))
	}
	return out
}
