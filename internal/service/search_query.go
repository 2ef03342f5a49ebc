package service

import (
	"strings"
	"unicode"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

const (
	fullTextRowCap   = 1000
	similarityRowCap = 500
)

// FullTextQuery is the bound input of the ranked full-text query.
type FullTextQuery struct {
	// Expression is a tsquery such as "siemens:* & s7:*".
	Expression string
	Limit      int
	Headlines  bool
}

// SimilarityQuery is the bound input of the trigram similarity query.
type SimilarityQuery struct {
	Text  string
	Limit int
}

// SearchPlan is what the executor runs for one request.
type SearchPlan struct {
	Strategy   domain.Strategy
	FullText   FullTextQuery
	Similarity SimilarityQuery
}

// BuildSearchPlan derives the store inputs for a normalized request. Legs the
// strategy does not use are left zero.
func BuildSearchPlan(strategy domain.Strategy, req domain.SearchRequest) SearchPlan {
	plan := SearchPlan{Strategy: strategy}
	if strategy.UsesFullText() {
		plan.FullText = FullTextQuery{
			Expression: FullTextExpression(req.Query),
			Limit:      min(req.MaxResults, fullTextRowCap),
			Headlines:  req.IncludeHighlights,
		}
	}
	if strategy.UsesSimilarity() {
		plan.Similarity = SimilarityQuery{
			Text:  strings.TrimSpace(req.Query),
			Limit: min(req.MaxResults, similarityRowCap),
		}
	}
	return plan
}

// FullTextExpression turns whitespace-separated tokens into an AND of prefix
// matches. Each token is reduced to letters, digits and "-_." so user text can
// never change the shape of the expression; tokens left without a letter or
// digit are dropped.
func FullTextExpression(query string) string {
	var terms []string
	for _, token := range strings.Fields(query) {
		hasWord := false
		clean := strings.Map(func(r rune) rune {
			switch {
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				hasWord = true
				return r
			case r == '-' || r == '_' || r == '.':
				return r
			default:
				return -1
			}
		}, token)
		if !hasWord {
			continue
		}
		terms = append(terms, clean+":*")
	}
	return strings.Join(terms, " & ")
}
