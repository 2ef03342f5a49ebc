package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
	"github.com/handrades/Luppa-PLC-sub003/internal/pagination"
)

func runCmd(t *testing.T, cmd *cobra.Command, serverURL string, args ...string) string {
	t.Helper()
	root := &cobra.Command{Use: "luppa"}
	root.PersistentFlags().Bool("output", false, "")
	root.PersistentFlags().String("api-url", "", "")
	root.AddCommand(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--api-url", serverURL))
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestSearchOptions_Values(t *testing.T) {
	opts := SearchOptions{
		Page:              2,
		PageSize:          25,
		Fields:            []string{"tag", "make"},
		SortBy:            "tag",
		SortOrder:         "ASC",
		IncludeHighlights: true,
		MaxResults:        500,
	}

	v := opts.Values("S7")
	assert.Equal(t, "S7", v.Get("q"))
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "25", v.Get("pageSize"))
	assert.Equal(t, "tag,make", v.Get("fields"))
	assert.Equal(t, "tag", v.Get("sortBy"))
	assert.Equal(t, "ASC", v.Get("sortOrder"))
	assert.Equal(t, "true", v.Get("includeHighlights"))
	assert.Equal(t, "500", v.Get("maxResults"))

	assert.Equal(t, "q=pump", SearchOptions{}.Values("pump").Encode())
}

func searchServer(t *testing.T) *httptest.Server {
	resp := domain.SearchResponse{
		Data: []domain.SearchResultRow{{
			PLCID:             "p-1",
			Tag:               "PLC-001",
			Make:              "Siemens",
			Model:             "S7-1500",
			HierarchyPath:     "Plant A › Line 1 › Press",
			RelevanceScore:    0.875,
			HighlightedFields: map[string]string{"make": "<mark>Siemens</mark>"},
		}},
		Pagination: pagination.NewPage(1, 50, 1),
		SearchMetadata: domain.SearchMetadata{
			Query:           "siemens",
			SearchType:      domain.StrategyHybrid,
			TotalMatches:    1,
			ExecutionTimeMs: 7,
		},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeHighlights"))
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestSearchCmd_Table(t *testing.T) {
	srv := searchServer(t)
	defer srv.Close()

	out := runCmd(t, SearchCmd(), srv.URL, "search", "siemens", "--highlights")

	assert.Contains(t, out, "PLC-001")
	assert.Contains(t, out, "Plant A › Line 1 › Press")
	assert.Contains(t, out, "<mark>Siemens</mark>")
	assert.Contains(t, out, "Page 1 of 1 (1 matches, hybrid search, 7ms)")
}

func TestSearchCmd_JSON(t *testing.T) {
	srv := searchServer(t)
	defer srv.Close()

	out := runCmd(t, SearchCmd(), srv.URL, "search", "siemens", "--highlights", "--output")

	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "S7-1500", resp.Data[0].Model)
}

func TestSearchCmd_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.SearchResponse{
			Data:           []domain.SearchResultRow{},
			SearchMetadata: domain.SearchMetadata{Query: "zz", SearchType: domain.StrategySimilarity},
		})
	}))
	defer srv.Close()

	out := runCmd(t, SearchCmd(), srv.URL, "search", "zz")
	assert.Contains(t, out, `No results found for "zz" (similarity).`)
}

func TestSuggestCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/suggestions", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":{"suggestions":[]}}`))
	}))
	defer srv.Close()

	out := runCmd(t, SuggestCmd(), srv.URL, "suggest", "S7", "-n", "3")
	assert.Contains(t, out, "No suggestions.")
}

func TestSearchMetricsCmd(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/metrics", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"entries": []domain.AnalyticsEntry{
					{Query: "pump", ResultCount: 4, ExecutionTimeMs: 12, Timestamp: ts},
					{Query: "valve", ResultCount: 0, ExecutionTimeMs: 3, Timestamp: ts.Add(-time.Minute)},
				},
				"count": 2,
			},
		})
	}))
	defer srv.Close()

	out := runCmd(t, SearchMetricsCmd(), srv.URL, "search-metrics")
	assert.Contains(t, out, "pump")
	assert.Contains(t, out, "12ms")
	assert.Contains(t, out, "2 searches")

	out = runCmd(t, SearchMetricsCmd(), srv.URL, "search-metrics", "--output", "-n", "1")
	var entries []domain.AnalyticsEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "pump", entries[0].Query)
}
