package service

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

// newHighlightPolicy allows only emphasis markup. Every attribute is dropped,
// and script/style elements are removed with their content.
func newHighlightPolicy() *bluemonday.Policy {
	return bluemonday.NewPolicy().AllowElements("mark", "b")
}

// SanitizeHighlight strips a headline fragment down to <mark> and <b>.
func SanitizeHighlight(fragment string) string {
	return highlightPolicy.Sanitize(fragment)
}

var highlightPolicy = newHighlightPolicy()

// applyHighlights sanitizes every fragment in rows. When fields is non-empty
// only those fields keep their fragments. Without includeHighlights all
// fragments are dropped.
func applyHighlights(rows []domain.SearchResultRow, includeHighlights bool, fields []string) {
	var wanted map[string]bool
	if len(fields) > 0 {
		wanted = make(map[string]bool, len(fields))
		for _, f := range fields {
			wanted[f] = true
		}
	}

	for i := range rows {
		if !includeHighlights || len(rows[i].HighlightedFields) == 0 {
			rows[i].HighlightedFields = nil
			continue
		}
		clean := make(map[string]string, len(rows[i].HighlightedFields))
		for field, fragment := range rows[i].HighlightedFields {
			if wanted != nil && !wanted[field] {
				continue
			}
			clean[field] = SanitizeHighlight(fragment)
		}
		if len(clean) == 0 {
			clean = nil
		}
		rows[i].HighlightedFields = clean
	}
}
