package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/handrades/Luppa-PLC-sub003/internal/api"
	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
	"github.com/handrades/Luppa-PLC-sub003/internal/logger"
	"go.uber.org/zap"
)

const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 50
)

type SearchService interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
	GetSearchSuggestions(ctx context.Context, prefix string, limit int) ([]string, error)
	RefreshSearchView(ctx context.Context) error
	GetSearchMetrics(ctx context.Context) ([]domain.AnalyticsEntry, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type RefreshResponse struct {
	Status string `json:"status"`
}

type SearchMetricsResponse struct {
	Entries []domain.AnalyticsEntry `json:"entries"`
	Count   int                     `json:"count"`
}

// Search handles GET /search. The response body is the SearchResponse itself,
// which already carries its own data/pagination envelope.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, msg := parseSearchRequest(r)
	if msg != "" {
		api.Error(w, http.StatusBadRequest, msg)
		return
	}

	resp, err := h.svc.Search(r.Context(), req)
	if err != nil {
		logger.FromContext(r.Context(), nil).Debug("search rejected", zap.Error(err))
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefix := strings.TrimSpace(q.Get("q"))
	if prefix == "" {
		api.Error(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := defaultSuggestionLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSuggestionLimit {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	suggestions, err := h.svc.GetSearchSuggestions(r.Context(), prefix, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	api.Success(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

func (h *SearchHandler) RefreshView(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RefreshSearchView(r.Context()); err != nil {
		logger.FromContext(r.Context(), nil).Error("search view refresh failed", zap.Error(err))
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, RefreshResponse{Status: "refreshed"})
}

func (h *SearchHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.GetSearchMetrics(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.AnalyticsEntry{}
	}
	api.Success(w, http.StatusOK, SearchMetricsResponse{Entries: entries, Count: len(entries)})
}

// parseSearchRequest maps query parameters onto a SearchRequest. Absent
// parameters keep their defaults; range checks are left to the service.
func parseSearchRequest(r *http.Request) (domain.SearchRequest, string) {
	q := r.URL.Query()
	req := domain.NewSearchRequest(q.Get("q"))

	ints := []struct {
		name string
		dst  *int
	}{
		{"page", &req.Page},
		{"pageSize", &req.PageSize},
		{"maxResults", &req.MaxResults},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.SearchRequest{}, p.name + " must be an integer"
		}
		*p.dst = n
	}

	if raw := q.Get("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Fields = append(req.Fields, f)
			}
		}
	}

	req.SortBy = q.Get("sortBy")
	if raw := q.Get("sortOrder"); raw != "" {
		req.SortOrder = domain.SortOrder(raw)
	}

	if raw := q.Get("includeHighlights"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.SearchRequest{}, "includeHighlights must be a boolean"
		}
		req.IncludeHighlights = b
	}

	return req, ""
}
