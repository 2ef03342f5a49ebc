package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

func ids(rows []domain.SearchResultRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.PLCID
	}
	return out
}

func TestMergeHybridRows(t *testing.T) {
	ftP2 := plcRow("p2", "PLC-002", 0.5)
	ftP2.HighlightedFields = map[string]string{domain.FieldTag: "<mark>PLC</mark>-002"}

	fullText := []domain.SearchResultRow{plcRow("p1", "PLC-001", 0.3), ftP2}
	similar := []domain.SearchResultRow{plcRow("p1", "PLC-001", 0.7), plcRow("p2", "PLC-002", 0.5), plcRow("p3", "PLC-003", 0.5)}

	merged := mergeHybridRows(fullText, similar)

	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(merged))
	assert.InDelta(t, 0.7, merged[0].RelevanceScore, 1e-9)
	// equal score keeps the full-text row and its fragments
	assert.NotNil(t, merged[1].HighlightedFields)
}

func TestMergeHybridRows_SimilarityWinnerKeepsHeadlines(t *testing.T) {
	ft := plcRow("p1", "PLC-001", 0.06)
	ft.HighlightedFields = map[string]string{domain.FieldMake: "<mark>Siemens</mark>"}

	merged := mergeHybridRows([]domain.SearchResultRow{ft}, []domain.SearchResultRow{plcRow("p1", "PLC-001", 0.8)})

	require.Len(t, merged, 1)
	assert.InDelta(t, 0.8, merged[0].RelevanceScore, 1e-9)
	assert.Equal(t, "<mark>Siemens</mark>", merged[0].HighlightedFields[domain.FieldMake])
}

func TestMergeHybridRows_IndependentOfLegOrder(t *testing.T) {
	a := []domain.SearchResultRow{plcRow("p3", "C", 0.2), plcRow("p1", "A", 0.9)}
	b := []domain.SearchResultRow{plcRow("p2", "B", 0.9), plcRow("p4", "D", 0.2)}

	first := mergeHybridRows(a, b)
	second := mergeHybridRows(b, a)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(first))
}

func TestSortRows(t *testing.T) {
	rows := []domain.SearchResultRow{
		{PLCID: "p3", Tag: "t3", SiteName: "beta", RelevanceScore: 0.2},
		{PLCID: "p1", Tag: "t1", SiteName: "Alpha", RelevanceScore: 0.2},
		{PLCID: "p2", Tag: "t2", SiteName: "alpha", RelevanceScore: 0.9},
	}

	sortRows(rows, "", domain.SortDesc)
	assert.Equal(t, []string{"p2", "p1", "p3"}, ids(rows))

	sortRows(rows, "", domain.SortAsc)
	assert.Equal(t, []string{"p1", "p3", "p2"}, ids(rows))

	sortRows(rows, domain.SortBySite, domain.SortAsc)
	assert.Equal(t, []string{"p2", "p1", "p3"}, ids(rows))

	sortRows(rows, domain.SortBySite, domain.SortDesc)
	assert.Equal(t, []string{"p3", "p2", "p1"}, ids(rows))
}

func TestExecuteSearch_UnknownStrategy(t *testing.T) {
	svc := NewSearchService(new(MockSearchRepository), new(MockSearchCache), DefaultSearchServiceConfig(), zap.NewNop())

	_, err := svc.executeSearch(context.Background(), SearchPlan{Strategy: "semantic"})
	require.Error(t, err)
}

func rowsWithPrefix(prefix string, n int, score float64) []domain.SearchResultRow {
	rows := make([]domain.SearchResultRow, n)
	for i := range rows {
		rows[i] = plcRow(fmt.Sprintf("%s%02d", prefix, i), fmt.Sprintf("%s-%02d", prefix, i), score)
	}
	return rows
}

func TestExecuteSearch_HybridHonorsRowCap(t *testing.T) {
	repo := new(MockSearchRepository)
	svc := NewSearchService(repo, new(MockSearchCache), DefaultSearchServiceConfig(), zap.NewNop())

	req := domain.NewSearchRequest("siemens s7")
	req.MaxResults = 10
	plan := BuildSearchPlan(domain.StrategyHybrid, req)

	repo.On("SearchFullText", mock.Anything, plan.FullText).Return(rowsWithPrefix("f", 10, 0.05), nil).Once()
	repo.On("SearchSimilarity", mock.Anything, plan.Similarity).Return(rowsWithPrefix("s", 10, 0.7), nil).Once()

	rows, err := svc.executeSearch(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	// the cap keeps the best-scored rows
	for _, row := range rows {
		assert.InDelta(t, 0.7, row.RelevanceScore, 1e-9)
	}
}
