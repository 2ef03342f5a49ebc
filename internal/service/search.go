package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
	"github.com/handrades/Luppa-PLC-sub003/internal/logger"
	"github.com/handrades/Luppa-PLC-sub003/internal/metrics"
	"github.com/handrades/Luppa-PLC-sub003/internal/pagination"
	"github.com/handrades/Luppa-PLC-sub003/internal/telemetry"
)

// SearchRepository runs parameterized catalog queries.
type SearchRepository interface {
	SearchFullText(ctx context.Context, q FullTextQuery) ([]domain.SearchResultRow, error)
	SearchSimilarity(ctx context.Context, q SimilarityQuery) ([]domain.SearchResultRow, error)
	RefreshSearchView(ctx context.Context) error
}

// SearchCache is a best-effort key/value cache. Implementations swallow
// backend errors.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	ScanValues(ctx context.Context, prefix string) [][]byte
}

// SearchServiceConfig controls cache lifetimes and side-effect budgets.
type SearchServiceConfig struct {
	CacheTTL          time.Duration
	AnalyticsTTL      time.Duration
	SideEffectTimeout time.Duration
}

// DefaultSearchServiceConfig returns the default service configuration.
func DefaultSearchServiceConfig() SearchServiceConfig {
	return SearchServiceConfig{
		CacheTTL:          300 * time.Second,
		AnalyticsTTL:      86400 * time.Second,
		SideEffectTimeout: 5 * time.Second,
	}
}

// SearchService answers catalog searches with caching and analytics.
type SearchService struct {
	repo   SearchRepository
	cache  SearchCache
	cfg    SearchServiceConfig
	logger *zap.Logger
	newID  func() string
	now    func() time.Time

	pending sync.WaitGroup
}

// NewSearchService creates a new SearchService instance
func NewSearchService(repo SearchRepository, cache SearchCache, cfg SearchServiceConfig, log *zap.Logger) *SearchService {
	defaults := DefaultSearchServiceConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.AnalyticsTTL <= 0 {
		cfg.AnalyticsTTL = defaults.AnalyticsTTL
	}
	if cfg.SideEffectTimeout <= 0 {
		cfg.SideEffectTimeout = defaults.SideEffectTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchService{
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		logger: log,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Search validates req, serves it from cache when possible, and otherwise runs
// the strategy the query shape calls for. Validation failures carry
// domain.ErrCodeValidation; store failures wrap domain.ErrSearchExecution.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()

	norm, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	strategy := domain.ClassifyQuery(norm.Query)

	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Strategy:  string(strategy),
		Operation: "search",
	})
	defer span.End()

	log := logger.FromContext(ctx, s.logger)

	key, err := SearchCacheKey(norm)
	if err != nil {
		log.Warn("Failed to derive search cache key", zap.Error(err))
	}

	if key != "" {
		if resp, ok := s.cachedResponse(ctx, key); ok {
			metrics.SearchRequestsTotal.WithLabelValues(string(strategy), "cached").Inc()
			metrics.SearchDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
			s.recordAnalytics(ctx, norm.Query, resp.SearchMetadata.TotalMatches, time.Since(start).Milliseconds())
			return resp, nil
		}
	}

	rows, err := s.executeSearch(ctx, BuildSearchPlan(strategy, norm))
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(strategy), "error").Inc()
		span.SetError(err)
		log.Error("Search execution failed",
			zap.String("strategy", string(strategy)),
			zap.Error(err),
		)
		return nil, domain.ErrSearchExecution.WithCause(err)
	}

	applyHighlights(rows, norm.IncludeHighlights, norm.Fields)
	sortRows(rows, norm.SortBy, norm.SortOrder)

	total := len(rows)
	elapsed := time.Since(start).Milliseconds()
	resp := &domain.SearchResponse{
		Data:       pagination.Slice(rows, norm.Page, norm.PageSize),
		Pagination: pagination.NewPage(norm.Page, norm.PageSize, total),
		SearchMetadata: domain.SearchMetadata{
			Query:           norm.Query,
			SearchType:      strategy,
			TotalMatches:    total,
			ExecutionTimeMs: elapsed,
		},
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(strategy), "ok").Inc()
	metrics.SearchDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())

	if key != "" {
		s.cacheResponse(ctx, key, resp)
	}
	s.recordAnalytics(ctx, norm.Query, total, elapsed)

	return resp, nil
}

// GetSearchSuggestions is reserved for a future suggestion index and always
// returns an empty list.
func (s *SearchService) GetSearchSuggestions(_ context.Context, _ string, _ int) ([]string, error) {
	return []string{}, nil
}

// RefreshSearchView rebuilds the denormalized search view. Store errors are
// returned unchanged.
func (s *SearchService) RefreshSearchView(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.RefreshSearchView", telemetry.SpanAttributes{
		Operation: "refresh_view",
	})
	defer span.End()

	if err := s.repo.RefreshSearchView(ctx); err != nil {
		span.SetError(err)
		metrics.ViewRefreshTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.ViewRefreshTotal.WithLabelValues("ok").Inc()
	return nil
}

// Wait blocks until detached cache and analytics writes have finished.
func (s *SearchService) Wait() {
	s.pending.Wait()
}

func (s *SearchService) cachedResponse(ctx context.Context, key string) (*domain.SearchResponse, bool) {
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var resp domain.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.FromContext(ctx, s.logger).Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (s *SearchService) cacheResponse(ctx context.Context, key string, resp *domain.SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("Failed to encode search response", zap.Error(err))
		return
	}
	s.detach(ctx, "cache_response", func(ctx context.Context) {
		s.cache.Set(ctx, key, data, s.cfg.CacheTTL)
	})
}

// detach runs fn on its own goroutine, outliving the caller's cancellation but
// bounded by SideEffectTimeout. Panics are logged and dropped.
func (s *SearchService) detach(ctx context.Context, task string, fn func(ctx context.Context)) {
	log := logger.FromContext(ctx, s.logger)
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Warn("Detached task panicked", zap.String("task", task), zap.Any("panic", r))
				telemetry.CaptureError(ctx, fmt.Errorf("detached %s panicked: %v", task, r))
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, s.cfg.SideEffectTimeout)
		defer cancel()
		fn(ctx)
	}()
}
