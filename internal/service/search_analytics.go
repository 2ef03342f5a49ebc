package service

import (
	"context"
	"encoding/json"
	"slices"

	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
	"github.com/handrades/Luppa-PLC-sub003/internal/logger"
)

// AnalyticsKeyPrefix namespaces per-search analytics entries.
const AnalyticsKeyPrefix = "search_analytics:"

// recordAnalytics writes one entry in the background. Failures never reach
// the caller.
func (s *SearchService) recordAnalytics(ctx context.Context, query string, resultCount int, executionTimeMs int64) {
	entry := domain.AnalyticsEntry{
		Query:           query,
		ResultCount:     resultCount,
		ExecutionTimeMs: executionTimeMs,
		Timestamp:       s.now().UTC(),
	}
	key := AnalyticsKeyPrefix + s.newID()

	s.detach(ctx, "record_analytics", func(ctx context.Context) {
		data, err := json.Marshal(entry)
		if err != nil {
			logger.FromContext(ctx, s.logger).Warn("Failed to encode analytics entry", zap.Error(err))
			return
		}
		s.cache.Set(ctx, key, data, s.cfg.AnalyticsTTL)
	})
}

// GetSearchMetrics returns the analytics entries still within their TTL,
// newest first. Entries that fail to decode are skipped; an unavailable cache
// yields an empty list.
func (s *SearchService) GetSearchMetrics(ctx context.Context) ([]domain.AnalyticsEntry, error) {
	values := s.cache.ScanValues(ctx, AnalyticsKeyPrefix)

	entries := make([]domain.AnalyticsEntry, 0, len(values))
	for _, raw := range values {
		var entry domain.AnalyticsEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			logger.FromContext(ctx, s.logger).Warn("Skipping undecodable analytics entry", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	slices.SortFunc(entries, func(a, b domain.AnalyticsEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return entries, nil
}
