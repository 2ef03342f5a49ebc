package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handrades/Luppa-PLC-sub003/internal/domain"
)

func TestFullTextExpression(t *testing.T) {
	tests := []struct {
		query    string
		expected string
	}{
		{"allen bradley controllogix", "allen:* & bradley:* & controllogix:*"},
		{"  line   3   press ", "line:* & 3:* & press:*"},
		{"s7-1500 cpu", "s7-1500:* & cpu:*"},
		{"a&b | !c", "ab:* & c:*"},
		{"x:* & (y)", "x:* & y:*"},
		{"'; DROP TABLE plcs; --", "DROP:* & TABLE:* & plcs:*"},
		{"&& ||", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, FullTextExpression(tt.query))
		})
	}
}

func TestBuildSearchPlan(t *testing.T) {
	req := domain.NewSearchRequest("siemens s7")
	req.IncludeHighlights = true

	t.Run("hybrid fills both legs", func(t *testing.T) {
		plan := BuildSearchPlan(domain.StrategyHybrid, req)
		assert.Equal(t, FullTextQuery{Expression: "siemens:* & s7:*", Limit: 1000, Headlines: true}, plan.FullText)
		assert.Equal(t, SimilarityQuery{Text: "siemens s7", Limit: 500}, plan.Similarity)
	})

	t.Run("fulltext leaves similarity empty", func(t *testing.T) {
		plan := BuildSearchPlan(domain.StrategyFullText, req)
		assert.NotEmpty(t, plan.FullText.Expression)
		assert.Equal(t, SimilarityQuery{}, plan.Similarity)
	})

	t.Run("similarity never asks for headlines", func(t *testing.T) {
		plan := BuildSearchPlan(domain.StrategySimilarity, req)
		assert.Equal(t, FullTextQuery{}, plan.FullText)
		assert.Equal(t, 500, plan.Similarity.Limit)
	})

	t.Run("max results caps both legs", func(t *testing.T) {
		small := req
		small.MaxResults = 120
		plan := BuildSearchPlan(domain.StrategyHybrid, small)
		assert.Equal(t, 120, plan.FullText.Limit)
		assert.Equal(t, 120, plan.Similarity.Limit)

		mid := req
		mid.MaxResults = 800
		plan = BuildSearchPlan(domain.StrategyHybrid, mid)
		assert.Equal(t, 800, plan.FullText.Limit)
		assert.Equal(t, 500, plan.Similarity.Limit)
	})
}
