// Package visibility decides which form questions are active given the
// answers collected so far. The same evaluation backs submission
// validation and the public form-definition endpoint the viewer renders
// from, so both sides always reach the same verdict.
package visibility

import (
	"fmt"
	"reflect"
	"strings"

	"formbridge/internal/models"
)

// EvaluateCondition checks one condition against the answer snapshot.
// A missing or null answer never satisfies a condition, and an unknown
// operator evaluates to false rather than erroring.
func EvaluateCondition(questionKey, operator string, expected any, answers map[string]any) bool {
	actual, ok := answers[questionKey]
	if !ok || actual == nil {
		return false
	}

	switch operator {
	case models.OperatorEquals:
		return equals(actual, expected)
	case models.OperatorNotEquals:
		return !equals(actual, expected)
	case models.OperatorContains:
		return contains(actual, expected)
	default:
		return false
	}
}

// ShouldShow reports whether a question gated by rules is visible for the
// given answers. No rules, or an empty condition list, means always visible.
func ShouldShow(rules *models.ConditionalRules, answers map[string]any) bool {
	if rules == nil || len(rules.Conditions) == 0 {
		return true
	}

	if rules.Logic == models.LogicAnd {
		for _, c := range rules.Conditions {
			if !EvaluateCondition(c.QuestionKey, c.Operator, c.Value, answers) {
				return false
			}
		}
		return true
	}
	for _, c := range rules.Conditions {
		if EvaluateCondition(c.QuestionKey, c.Operator, c.Value, answers) {
			return true
		}
	}
	return false
}

// equals is membership when the answer is a multi-value sequence
// (multipleSelects), plain equality otherwise. Answers come out of
// encoding/json, so DeepEqual handles every shape without panicking on
// non-comparable values.
func equals(actual, expected any) bool {
	if seq, ok := actual.([]any); ok {
		for _, v := range seq {
			if reflect.DeepEqual(v, expected) {
				return true
			}
		}
		return false
	}
	return reflect.DeepEqual(actual, expected)
}

func contains(actual, expected any) bool {
	needle := strings.ToLower(fmt.Sprint(expected))
	switch v := actual.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), needle)
	case []any:
		for _, el := range v {
			if strings.Contains(strings.ToLower(fmt.Sprint(el)), needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
