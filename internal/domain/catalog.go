package domain

import "strings"

// HierarchySeparator joins the levels of a hierarchy path for display.
const HierarchySeparator = " › "

// HierarchyPath renders the site → cell → equipment location of a PLC.
// Empty levels are skipped.
func HierarchyPath(site, cell, equipment string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{site, cell, equipment} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, HierarchySeparator)
}
