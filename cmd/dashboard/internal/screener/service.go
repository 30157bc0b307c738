package screener

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

var (
	ErrEmptyQuery = errors.New("screener query is empty")
	ErrNoCriteria = errors.New("no screening criteria could be extracted from the query")
)

// Extractor turns a natural-language query into criteria.
type Extractor interface {
	ExtractCriteria(ctx context.Context, query string) (models.ScreenerCriteria, error)
}

// Service holds the active criteria. A failed or empty extraction leaves them untouched.
type Service struct {
	extractor Extractor
	logger    *zap.Logger

	mu     sync.RWMutex
	active *models.ScreenerCriteria
	query  string
}

func NewService(extractor Extractor, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, logger: logger}
}

// Apply extracts criteria for query and makes them active on success.
func (s *Service) Apply(ctx context.Context, query string) (models.ScreenerCriteria, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.ScreenerCriteria{}, ErrEmptyQuery
	}

	c, err := s.extractor.ExtractCriteria(ctx, query)
	if err != nil {
		s.logger.Warn("Criteria extraction failed", zap.String("query", query), zap.Error(err))
		return models.ScreenerCriteria{}, err
	}
	if c.IsEmpty() {
		return models.ScreenerCriteria{}, ErrNoCriteria
	}

	s.mu.Lock()
	s.active = &c
	s.query = query
	s.mu.Unlock()

	s.logger.Info("Screener criteria applied", zap.String("query", query))
	return c, nil
}

// Active returns the current criteria, if any.
func (s *Service) Active() (models.ScreenerCriteria, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return models.ScreenerCriteria{}, "", false
	}
	return *s.active, s.query, true
}

func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.query = ""
}
