//go:build e2e

package e2e

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handrades/Luppa-PLC-sub003/internal/cli/client"
	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
	"github.com/handrades/Luppa-PLC-sub003/internal/service"
)

func search(t *testing.T, env *E2ETestEnv, opts client.SearchOptions, query string) domain.SearchResponse {
	t.Helper()
	raw, err := env.Client.Get(env.Ctx, "/search", opts.Values(query))
	require.NoError(t, err)
	var resp domain.SearchResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func tags(rows []domain.SearchResultRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Tag
	}
	return out
}

func TestE2E_Search(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedCatalog()

	t.Run("short query uses similarity", func(t *testing.T) {
		resp := search(t, env, client.SearchOptions{}, "S7")
		assert.Equal(t, domain.StrategySimilarity, resp.SearchMetadata.SearchType)
		assert.ElementsMatch(t, []string{"PLC-PRESS-01", "PLC-ROBOT-02"}, tags(resp.Data))
	})

	t.Run("two tokens use hybrid", func(t *testing.T) {
		resp := search(t, env, client.SearchOptions{}, "siemens press")
		assert.Equal(t, domain.StrategyHybrid, resp.SearchMetadata.SearchType)
		require.NotEmpty(t, resp.Data)
		assert.Equal(t, "PLC-PRESS-01", resp.Data[0].Tag)
		assert.Equal(t, "Plant A › Line 1 › Press 1", resp.Data[0].HierarchyPath)
	})

	t.Run("three tokens use fulltext with highlights", func(t *testing.T) {
		resp := search(t, env, client.SearchOptions{IncludeHighlights: true}, "robot cell safety")
		assert.Equal(t, domain.StrategyFullText, resp.SearchMetadata.SearchType)
		require.Len(t, resp.Data, 1)
		assert.Contains(t, resp.Data[0].HighlightedFields["description"], "<mark>")
	})

	t.Run("pagination and sort", func(t *testing.T) {
		resp := search(t, env, client.SearchOptions{PageSize: 1, Page: 2, SortBy: "tag", SortOrder: "ASC"}, "plc")
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 4, resp.Pagination.Total)
		assert.True(t, resp.Pagination.HasPrev)
		assert.Equal(t, "PLC-PRESS-01", resp.Data[0].Tag)
	})

	t.Run("injection attempt is inert", func(t *testing.T) {
		resp := search(t, env, client.SearchOptions{}, "'; DROP TABLE plcs; --")
		assert.Empty(t, resp.Data)

		var count int
		require.NoError(t, env.Pool.QueryRow(env.Ctx, "SELECT count(*) FROM plcs").Scan(&count))
		assert.Equal(t, 4, count)
	})

	t.Run("validation error", func(t *testing.T) {
		_, err := env.Client.Get(env.Ctx, "/search", url.Values{"q": {"pump"}, "pageSize": {"500"}})
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, domain.ErrCodeValidation, apiErr.Code)
	})
}

func TestE2E_CacheAndAnalytics(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedCatalog()

	first := search(t, env, client.SearchOptions{}, "Siemens")
	env.Service.Wait()

	key, err := service.SearchCacheKey(domain.NewSearchRequest("Siemens"))
	require.NoError(t, err)
	cached, err := env.Redis.Get(env.Ctx, key)
	require.NoError(t, err)
	assert.NotEmpty(t, cached)

	second := search(t, env, client.SearchOptions{}, "siemens")
	assert.Equal(t, first, second)

	env.Service.Wait()
	var metrics struct {
		Entries []domain.AnalyticsEntry `json:"entries"`
		Count   int                     `json:"count"`
	}
	require.NoError(t, env.Client.GetData(env.Ctx, "/search/metrics", nil, &metrics))
	assert.Equal(t, 2, metrics.Count)
	for _, e := range metrics.Entries {
		assert.Equal(t, first.SearchMetadata.TotalMatches, e.ResultCount)
		assert.WithinDuration(t, time.Now(), e.Timestamp, time.Minute)
	}
}

func TestE2E_CacheOutage(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedCatalog()

	require.NoError(t, env.RedisC.Terminate(env.Ctx))
	env.RedisC = nil

	resp := search(t, env, client.SearchOptions{}, "omron wrapper")
	assert.Equal(t, []string{"PLC-WRAP-01"}, tags(resp.Data))
	env.Service.Wait()
	assert.False(t, env.Gateway.Enabled())

	// degraded mode keeps serving from the database
	resp = search(t, env, client.SearchOptions{}, "omron wrapper")
	assert.Len(t, resp.Data, 1)
}

func TestE2E_RefreshView(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedCatalog()

	resp := search(t, env, client.SearchOptions{}, "Beckhoff")
	assert.Empty(t, resp.Data)

	env.SeedPLC("Plant B", "Packaging", "Palletizer", "PLC-PAL-01", "Beckhoff")

	var status struct {
		Status string `json:"status"`
	}
	require.NoError(t, env.Client.PostData(env.Ctx, "/search/refresh", nil, &status))
	assert.Equal(t, "refreshed", status.Status)

	// a different page size bypasses the cached empty result
	resp = search(t, env, client.SearchOptions{PageSize: 10}, "Beckhoff")
	assert.Equal(t, []string{"PLC-PAL-01"}, tags(resp.Data))
}
