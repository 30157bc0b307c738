package scorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/scorer"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

// neutral contributes nothing: mid RSI, mid range, mid ratios, no earnings, no dividend.
func neutral() models.Quote {
	return models.Quote{
		Symbol:           "TEST",
		Price:            50,
		RSI:              50,
		FiftyTwoWeekLow:  0,
		FiftyTwoWeekHigh: 100,
		PriceToBook:      3,
		PE:               20,
		EPS:              0,
		DividendYield:    1,
	}
}

func TestScore_Contributions(t *testing.T) {
	tests := []struct {
		name string
		mod  func(q *models.Quote)
		want int
	}{
		{"neutral", func(q *models.Quote) {}, 0},
		{"rsi below 30", func(q *models.Quote) { q.RSI = 29.99 }, 40},
		{"rsi at 30", func(q *models.Quote) { q.RSI = 30 }, 20},
		{"rsi at 40", func(q *models.Quote) { q.RSI = 40 }, 0},
		{"rsi at 60", func(q *models.Quote) { q.RSI = 60 }, 0},
		{"rsi 60 to 70", func(q *models.Quote) { q.RSI = 70 }, -15},
		{"rsi above 70", func(q *models.Quote) { q.RSI = 70.01 }, -30},
		{"near 52w low", func(q *models.Quote) { q.Price = 5 }, 25},
		{"lower quarter", func(q *models.Quote) { q.Price = 20 }, 10},
		{"near 52w high", func(q *models.Quote) { q.Price = 95 }, -20},
		{"flat range", func(q *models.Quote) { q.FiftyTwoWeekLow, q.FiftyTwoWeekHigh = 50, 50 }, 0},
		{"cheap book", func(q *models.Quote) { q.PriceToBook = 1.2 }, 15},
		{"zero book", func(q *models.Quote) { q.PriceToBook = 0 }, 0},
		{"rich book", func(q *models.Quote) { q.PriceToBook = 5.5 }, -10},
		{"low pe", func(q *models.Quote) { q.PE = 10 }, 10},
		{"negative pe", func(q *models.Quote) { q.PE = -4 }, 0},
		{"high pe", func(q *models.Quote) { q.PE = 40 }, -15},
		{"positive eps", func(q *models.Quote) { q.EPS = 0.01 }, 10},
		{"dividend", func(q *models.Quote) { q.DividendYield = 2.5 }, 5},
		{"dividend at 2", func(q *models.Quote) { q.DividendYield = 2 }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := neutral()
			tt.mod(&q)
			assert.Equal(t, tt.want, scorer.Score(q))
		})
	}
}

func TestTier_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  models.Recommendation
	}{
		{100, models.StrongBuy},
		{60, models.StrongBuy},
		{59, models.Buy},
		{30, models.Buy},
		{29, models.Hold},
		{0, models.Hold},
		{-29, models.Hold},
		{-30, models.Sell},
		{-54, models.Sell},
		{-55, models.StrongSell},
		{-100, models.StrongSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scorer.Tier(tt.score), "score %d", tt.score)
	}
}

func TestRecommend_MonotonicInRSI(t *testing.T) {
	// lowering RSI never moves the tier towards Sell
	prev := 6
	for _, rsi := range []float64{90, 65, 50, 35, 10} {
		q := neutral()
		q.RSI = rsi
		rank := scorer.Recommend(q).Rank()
		assert.LessOrEqual(t, rank, prev, "rsi %v", rsi)
		prev = rank
	}
}

func TestRecommend_Extremes(t *testing.T) {
	bull := models.Quote{Price: 11, RSI: 20, FiftyTwoWeekLow: 10, FiftyTwoWeekHigh: 40, PriceToBook: 1, PE: 8, EPS: 3, DividendYield: 3}
	assert.Equal(t, 105, scorer.Score(bull))
	assert.Equal(t, models.StrongBuy, scorer.Recommend(bull))

	bear := models.Quote{Price: 39, RSI: 80, FiftyTwoWeekLow: 10, FiftyTwoWeekHigh: 40, PriceToBook: 7, PE: 50, EPS: -1}
	assert.Equal(t, -75, scorer.Score(bear))
	assert.Equal(t, models.StrongSell, scorer.Recommend(bear))
}
