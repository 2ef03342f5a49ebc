package domain

import (
	"strings"
	"unicode/utf8"
)

// Strategy is the matching approach chosen for a query. It is derived from
// the query shape and never supplied by callers.
type Strategy string

const (
	StrategySimilarity Strategy = "similarity"
	StrategyHybrid     Strategy = "hybrid"
	StrategyFullText   Strategy = "fulltext"
)

const shortQueryMaxChars = 3

// ClassifyQuery picks the strategy for a raw query string.
func ClassifyQuery(query string) Strategy {
	q := strings.TrimSpace(query)
	return Classify(len(strings.Fields(q)), utf8.RuneCountInString(q))
}

// Classify maps (tokenCount, charLength) to a strategy. The length check wins
// over the token check, so very short queries always use similarity.
func Classify(tokenCount, charLength int) Strategy {
	switch {
	case charLength <= shortQueryMaxChars:
		return StrategySimilarity
	case tokenCount >= 3:
		return StrategyFullText
	default:
		return StrategyHybrid
	}
}

// UsesFullText reports whether the strategy runs the ranked full-text query.
func (s Strategy) UsesFullText() bool {
	return s == StrategyFullText || s == StrategyHybrid
}

// UsesSimilarity reports whether the strategy runs the trigram similarity query.
func (s Strategy) UsesSimilarity() bool {
	return s == StrategySimilarity || s == StrategyHybrid
}
