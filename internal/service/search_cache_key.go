package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

// SearchCacheKeyPrefix namespaces cached search responses.
const SearchCacheKeyPrefix = "search:"

// SearchCacheKey derives the cache key for a normalized request. The canonical
// form is a JSON object whose keys encoding/json emits in sorted order, so two
// requests that differ only in omitted defaults hash the same.
func SearchCacheKey(req domain.SearchRequest) (string, error) {
	fields := slices.Clone(req.Fields)
	if fields == nil {
		fields = []string{}
	}
	slices.Sort(fields)
	fields = slices.Compact(fields)

	sortOrder := req.SortOrder
	if sortOrder == "" {
		sortOrder = domain.SortDesc
	}
	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = domain.DefaultMaxResults
	}

	canonical, err := json.Marshal(map[string]any{
		"q":                 req.CacheQuery(),
		"page":              req.Page,
		"pageSize":          req.PageSize,
		"fields":            fields,
		"sortBy":            req.SortBy,
		"sortOrder":         sortOrder,
		"includeHighlights": req.IncludeHighlights,
		"maxResults":        maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return SearchCacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}
