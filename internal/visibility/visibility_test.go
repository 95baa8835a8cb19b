package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"formbridge/internal/models"
)

func TestEvaluateConditionMissingAnswer(t *testing.T) {
	answers := map[string]any{"other": "yes"}

	assert.False(t, EvaluateCondition("q1", models.OperatorEquals, "yes", answers))
	assert.False(t, EvaluateCondition("q1", models.OperatorNotEquals, "yes", answers))
	assert.False(t, EvaluateCondition("q1", models.OperatorContains, "yes", answers))
}

func TestEvaluateConditionNilAnswer(t *testing.T) {
	answers := map[string]any{"q1": nil}
	assert.False(t, EvaluateCondition("q1", models.OperatorEquals, "yes", answers))
}

func TestEvaluateConditionEquals(t *testing.T) {
	tests := []struct {
		name     string
		actual   any
		expected any
		want     bool
	}{
		{"scalar match", "yes", "yes", true},
		{"scalar mismatch", "no", "yes", false},
		{"number match", float64(3), float64(3), true},
		{"sequence membership", []any{"a", "b"}, "b", true},
		{"sequence non-membership", []any{"a", "b"}, "c", false},
		{"empty sequence", []any{}, "a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := map[string]any{"q1": tt.actual}
			got := EvaluateCondition("q1", models.OperatorEquals, tt.expected, answers)
			assert.Equal(t, tt.want, got)
		})
	}
}

// notEquals must be the exact negation of equals for any answered value.
func TestNotEqualsNegatesEquals(t *testing.T) {
	values := []any{"yes", "no", float64(1), []any{"a", "b"}, []any{}}
	for _, actual := range values {
		answers := map[string]any{"q1": actual}
		eq := EvaluateCondition("q1", models.OperatorEquals, "yes", answers)
		ne := EvaluateCondition("q1", models.OperatorNotEquals, "yes", answers)
		assert.Equal(t, !eq, ne, "actual=%v", actual)
	}
}

func TestEvaluateConditionContains(t *testing.T) {
	tests := []struct {
		name     string
		actual   any
		expected any
		want     bool
	}{
		{"substring", "Hello World", "world", true},
		{"no substring", "Hello", "bye", false},
		{"case insensitive expected", "hello", "HELL", true},
		{"sequence element substring", []any{"Apple", "Banana"}, "nan", true},
		{"sequence no match", []any{"Apple"}, "pear", false},
		{"non-string non-sequence", float64(42), "4", false},
		{"bool actual", true, "tru", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := map[string]any{"q1": tt.actual}
			got := EvaluateCondition("q1", models.OperatorContains, tt.expected, answers)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConditionUnknownOperator(t *testing.T) {
	answers := map[string]any{"q1": "yes"}
	assert.False(t, EvaluateCondition("q1", "greaterThan", "yes", answers))
}

func TestShouldShowNoRules(t *testing.T) {
	assert.True(t, ShouldShow(nil, map[string]any{}))
	assert.True(t, ShouldShow(&models.ConditionalRules{Logic: models.LogicAnd}, map[string]any{}))
	assert.True(t, ShouldShow(&models.ConditionalRules{Logic: models.LogicOr, Conditions: []models.Condition{}}, nil))
}

func TestShouldShowAnd(t *testing.T) {
	rules := &models.ConditionalRules{
		Logic: models.LogicAnd,
		Conditions: []models.Condition{
			{QuestionKey: "q1", Operator: models.OperatorEquals, Value: "yes"},
			{QuestionKey: "q2", Operator: models.OperatorEquals, Value: "blue"},
		},
	}

	assert.True(t, ShouldShow(rules, map[string]any{"q1": "yes", "q2": "blue"}))
	assert.False(t, ShouldShow(rules, map[string]any{"q1": "yes", "q2": "red"}))
	// Any missing referenced answer fails an AND rule set.
	assert.False(t, ShouldShow(rules, map[string]any{"q1": "yes"}))
	assert.False(t, ShouldShow(rules, map[string]any{}))
}

func TestShouldShowOr(t *testing.T) {
	rules := &models.ConditionalRules{
		Logic: models.LogicOr,
		Conditions: []models.Condition{
			{QuestionKey: "q1", Operator: models.OperatorEquals, Value: "yes"},
			{QuestionKey: "q2", Operator: models.OperatorEquals, Value: "blue"},
		},
	}

	assert.True(t, ShouldShow(rules, map[string]any{"q1": "no", "q2": "blue"}))
	assert.False(t, ShouldShow(rules, map[string]any{"q1": "no", "q2": "red"}))
	assert.False(t, ShouldShow(rules, map[string]any{}))
}

func TestShouldShowSingleConditionScenario(t *testing.T) {
	rules := &models.ConditionalRules{
		Logic: models.LogicAnd,
		Conditions: []models.Condition{
			{QuestionKey: "q1", Operator: models.OperatorEquals, Value: "yes"},
		},
	}

	assert.True(t, ShouldShow(rules, map[string]any{"q1": "yes"}))
	assert.False(t, ShouldShow(rules, map[string]any{}))
}

// A self-referencing gate is not rejected; it just evaluates against the
// collected answers like any other condition.
func TestShouldShowSelfReference(t *testing.T) {
	rules := &models.ConditionalRules{
		Logic: models.LogicAnd,
		Conditions: []models.Condition{
			{QuestionKey: "gated", Operator: models.OperatorEquals, Value: "x"},
		},
	}

	assert.False(t, ShouldShow(rules, map[string]any{}))
	assert.True(t, ShouldShow(rules, map[string]any{"gated": "x"}))
}

// Identical inputs always produce identical verdicts.
func TestShouldShowDeterministic(t *testing.T) {
	rules := &models.ConditionalRules{
		Logic: models.LogicOr,
		Conditions: []models.Condition{
			{QuestionKey: "q1", Operator: models.OperatorContains, Value: "ell"},
			{QuestionKey: "q2", Operator: models.OperatorNotEquals, Value: "x"},
		},
	}
	answers := map[string]any{"q1": "hello"}

	first := ShouldShow(rules, answers)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ShouldShow(rules, answers))
	}
}
