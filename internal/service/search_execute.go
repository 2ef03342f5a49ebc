package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

// executeSearch runs the plan against the store: one query for fulltext or
// similarity, both concurrently for hybrid. The merged hybrid set is held to
// the full-text row cap so maxResults bounds every strategy.
func (s *SearchService) executeSearch(ctx context.Context, plan SearchPlan) ([]domain.SearchResultRow, error) {
	switch plan.Strategy {
	case domain.StrategyFullText:
		return s.repo.SearchFullText(ctx, plan.FullText)
	case domain.StrategySimilarity:
		return s.repo.SearchSimilarity(ctx, plan.Similarity)
	case domain.StrategyHybrid:
		var fullText, similar []domain.SearchResultRow
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			rows, err := s.repo.SearchFullText(gctx, plan.FullText)
			fullText = rows
			return err
		})
		g.Go(func() error {
			rows, err := s.repo.SearchSimilarity(gctx, plan.Similarity)
			similar = rows
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		merged := mergeHybridRows(fullText, similar)
		if limit := plan.FullText.Limit; limit > 0 && len(merged) > limit {
			merged = merged[:limit]
		}
		return merged, nil
	default:
		return nil, fmt.Errorf("unknown search strategy %q", plan.Strategy)
	}
}

// mergeHybridRows dedupes by PLC. The higher score wins; on a tie the
// full-text row is kept. A winning row without headline fragments inherits
// the loser's. The result is in relevance order regardless of which leg
// finished first.
func mergeHybridRows(fullText, similar []domain.SearchResultRow) []domain.SearchResultRow {
	merged := make(map[string]domain.SearchResultRow, len(fullText)+len(similar))
	for _, list := range [][]domain.SearchResultRow{fullText, similar} {
		for _, row := range list {
			if existing, ok := merged[row.PLCID]; ok {
				if existing.RelevanceScore >= row.RelevanceScore {
					continue
				}
				if len(row.HighlightedFields) == 0 {
					row.HighlightedFields = existing.HighlightedFields
				}
			}
			merged[row.PLCID] = row
		}
	}

	out := make([]domain.SearchResultRow, 0, len(merged))
	for _, row := range merged {
		out = append(out, row)
	}
	sortRows(out, "", domain.SortDesc)
	return out
}

// sortRows orders the whole matched set before it is paginated. Ties always
// fall back to tag then PLC id so pages are stable.
func sortRows(rows []domain.SearchResultRow, sortBy string, order domain.SortOrder) {
	desc := order != domain.SortAsc
	slices.SortStableFunc(rows, func(a, b domain.SearchResultRow) int {
		var c int
		if sortBy == "" || sortBy == domain.SortByRelevance {
			c = cmp.Compare(a.RelevanceScore, b.RelevanceScore)
		} else {
			c = strings.Compare(strings.ToLower(sortValue(a, sortBy)), strings.ToLower(sortValue(b, sortBy)))
		}
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = cmp.Compare(b.RelevanceScore, a.RelevanceScore); c != 0 {
			return c
		}
		if c = strings.Compare(a.Tag, b.Tag); c != 0 {
			return c
		}
		return strings.Compare(a.PLCID, b.PLCID)
	})
}

func sortValue(row domain.SearchResultRow, field string) string {
	switch field {
	case domain.SortByTag:
		return row.Tag
	case domain.SortByMake:
		return row.Make
	case domain.SortByModel:
		return row.Model
	case domain.SortBySite:
		return row.SiteName
	case domain.SortByCell:
		return row.CellName
	case domain.SortByIPAddress:
		return row.IPAddress
	default:
		return ""
	}
}
