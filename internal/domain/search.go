package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/handrades/Luppa-PLC-sub003/internal/pagination"
)

const (
	DefaultPage       = 1
	DefaultPageSize   = 50
	MaxPageSize       = 100
	DefaultMaxResults = 1000
	MaxQueryLength    = 200
)

// SortOrder is the direction applied to SortBy.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Sortable fields. An empty SortBy means relevance.
const (
	SortByRelevance = "relevance"
	SortByTag       = "tag"
	SortByMake      = "make"
	SortByModel     = "model"
	SortBySite      = "site"
	SortByCell      = "cell"
	SortByIPAddress = "ip_address"
)

var sortableFields = map[string]bool{
	"":              true,
	SortByRelevance: true,
	SortByTag:       true,
	SortByMake:      true,
	SortByModel:     true,
	SortBySite:      true,
	SortByCell:      true,
	SortByIPAddress: true,
}

// Highlightable fields.
const (
	FieldTag         = "tag"
	FieldDescription = "description"
	FieldMake        = "make"
	FieldModel       = "model"
)

// HighlightFields lists the fields headline fragments are generated for.
var HighlightFields = []string{FieldTag, FieldDescription, FieldMake, FieldModel}

// highlightable accepts the names allowed in SearchRequest.Fields.
var highlightable = map[string]bool{
	FieldTag:         true,
	FieldDescription: true,
	FieldMake:        true,
	FieldModel:       true,
}

// SearchRequest is a single catalog search. Zero Page or PageSize are invalid;
// use NewSearchRequest for a request with defaults filled in.
type SearchRequest struct {
	Query             string    `json:"query"`
	Page              int       `json:"page"`
	PageSize          int       `json:"pageSize"`
	Fields            []string  `json:"fields,omitempty"`
	SortBy            string    `json:"sortBy,omitempty"`
	SortOrder         SortOrder `json:"sortOrder,omitempty"`
	IncludeHighlights bool      `json:"includeHighlights,omitempty"`
	MaxResults        int       `json:"maxResults,omitempty"`
}

// NewSearchRequest returns a request for query with every optional field at its default.
func NewSearchRequest(query string) SearchRequest {
	return SearchRequest{
		Query:      query,
		Page:       DefaultPage,
		PageSize:   DefaultPageSize,
		Fields:     []string{},
		SortOrder:  SortDesc,
		MaxResults: DefaultMaxResults,
	}
}

// Validate checks the request against its bounds without touching any backend.
func (r SearchRequest) Validate() error {
	query := strings.TrimSpace(r.Query)
	if query == "" {
		return ErrEmptyQuery
	}
	if utf8.RuneCountInString(query) > MaxQueryLength || !utf8.ValidString(query) {
		return ErrInvalidQuery
	}
	for _, c := range query {
		if c == 0 || (unicode.IsControl(c) && !unicode.IsSpace(c)) {
			return ErrInvalidQuery
		}
	}
	if r.Page < 1 {
		return ErrInvalidPage
	}
	if r.PageSize < 1 || r.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	if r.MaxResults < 0 || r.MaxResults > DefaultMaxResults {
		return ErrInvalidMaxResults
	}
	if !sortableFields[strings.ToLower(r.SortBy)] {
		return ErrInvalidSort
	}
	switch SortOrder(strings.ToUpper(string(r.SortOrder))) {
	case "", SortAsc, SortDesc:
	default:
		return ErrInvalidSort
	}
	for _, f := range r.Fields {
		if !highlightable[strings.ToLower(f)] {
			return ErrInvalidField.WithCause(&FieldError{Field: f})
		}
	}
	return nil
}

// Normalize validates the request and returns a copy with defaults applied and
// the query trimmed. Casing is preserved; use CacheQuery for the folded form.
func (r SearchRequest) Normalize() (SearchRequest, error) {
	if err := r.Validate(); err != nil {
		return SearchRequest{}, err
	}

	out := r
	out.Query = strings.TrimSpace(r.Query)
	out.Fields = make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		out.Fields = append(out.Fields, strings.ToLower(f))
	}
	out.SortBy = strings.ToLower(r.SortBy)
	if out.SortBy == SortByRelevance {
		out.SortBy = ""
	}
	out.SortOrder = SortOrder(strings.ToUpper(string(r.SortOrder)))
	if out.SortOrder == "" {
		out.SortOrder = SortDesc
	}
	if out.MaxResults == 0 {
		out.MaxResults = DefaultMaxResults
	}
	return out, nil
}

// CacheQuery returns the query folded for cache-key derivation.
func (r SearchRequest) CacheQuery() string {
	return strings.ToLower(strings.TrimSpace(r.Query))
}

// FieldError names the offending field of a rejected request.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "field " + e.Field
}

// SearchResultRow is one matched PLC with its place in the hierarchy.
type SearchResultRow struct {
	PLCID             string            `json:"plcId"`
	EquipmentID       string            `json:"equipmentId"`
	CellID            string            `json:"cellId"`
	SiteID            string            `json:"siteId"`
	Tag               string            `json:"tag"`
	Description       string            `json:"description"`
	Make              string            `json:"make"`
	Model             string            `json:"model"`
	IPAddress         string            `json:"ipAddress,omitempty"`
	FirmwareVersion   string            `json:"firmwareVersion,omitempty"`
	SiteName          string            `json:"siteName"`
	CellName          string            `json:"cellName"`
	EquipmentName     string            `json:"equipmentName"`
	RelevanceScore    float64           `json:"relevanceScore"`
	HierarchyPath     string            `json:"hierarchyPath"`
	HighlightedFields map[string]string `json:"highlightedFields,omitempty"`
}

// SearchMetadata describes how a response was produced.
type SearchMetadata struct {
	Query           string   `json:"query"`
	SearchType      Strategy `json:"searchType"`
	TotalMatches    int      `json:"totalMatches"`
	ExecutionTimeMs int64    `json:"executionTimeMs"`
}

// SearchResponse is one page of ranked results.
type SearchResponse struct {
	Data           []SearchResultRow `json:"data"`
	Pagination     pagination.Page   `json:"pagination"`
	SearchMetadata SearchMetadata    `json:"searchMetadata"`
}

// AnalyticsEntry is the telemetry recorded for each completed search.
type AnalyticsEntry struct {
	Query           string    `json:"query"`
	ResultCount     int       `json:"resultCount"`
	ExecutionTimeMs int64     `json:"executionTime"`
	Timestamp       time.Time `json:"timestamp"`
}
