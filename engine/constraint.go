package engine

import (
	"strconv"
	"time"
)

// matchConstraint dispatches a single EvaluationConstraint against a context
// value by its comparison kind. An unknown comparison kind returns false,
// nil — the caller (segmentMatches) treats that as "short-circuit the
// segment as non-matching", not as an error.
func matchConstraint(c EvaluationConstraint, contextValue string) (bool, error) {
	switch c.Type {
	case ComparisonTypeString:
		return matchString(c.Operator, c.Value, contextValue)
	case ComparisonTypeNumber:
		return matchNumber(c.Operator, c.Value, contextValue)
	case ComparisonTypeBoolean:
		return matchBoolean(c.Operator, c.Value, contextValue)
	case ComparisonTypeDateTime:
		return matchDateTime(c.Operator, c.Value, contextValue)
	default:
		return false, nil
	}
}

func matchString(operator, reference, contextValue string) (bool, error) {
	switch operator {
	case "empty":
		return contextValue == "", nil
	case "notempty":
		return contextValue != "", nil
	}

	if contextValue == "" {
		return false, nil
	}

	switch operator {
	case "eq":
		return contextValue == reference, nil
	case "neq":
		return contextValue != reference, nil
	case "prefix":
		return len(contextValue) >= len(reference) && contextValue[:len(reference)] == reference, nil
	case "suffix":
		return len(contextValue) >= len(reference) && contextValue[len(contextValue)-len(reference):] == reference, nil
	default:
		return false, nil
	}
}

func matchNumber(operator, reference, contextValue string) (bool, error) {
	switch operator {
	case "present":
		return contextValue != "", nil
	case "notpresent":
		return contextValue == "", nil
	}

	if contextValue == "" {
		return false, nil
	}

	ctxVal, err := strconv.ParseInt(contextValue, 10, 32)
	if err != nil {
		return false, &ParseError{Message: "invalid number in context value", Cause: err}
	}
	refVal, err := strconv.ParseInt(reference, 10, 32)
	if err != nil {
		return false, &ParseError{Message: "invalid number in constraint reference value", Cause: err}
	}

	switch operator {
	case "eq":
		return ctxVal == refVal, nil
	case "neq":
		return ctxVal != refVal, nil
	case "lt":
		return ctxVal < refVal, nil
	case "lte":
		return ctxVal <= refVal, nil
	case "gt":
		return ctxVal > refVal, nil
	case "gte":
		return ctxVal >= refVal, nil
	default:
		return false, nil
	}
}

func matchBoolean(operator, _, contextValue string) (bool, error) {
	switch operator {
	case "present":
		return contextValue != "", nil
	case "notpresent":
		return contextValue == "", nil
	}

	if contextValue == "" {
		return false, nil
	}

	var ctxVal bool
	switch contextValue {
	case "true":
		ctxVal = true
	case "false":
		ctxVal = false
	default:
		return false, &ParseError{Message: "invalid boolean in context value"}
	}

	switch operator {
	case "true":
		return ctxVal, nil
	case "false":
		return !ctxVal, nil
	default:
		return false, nil
	}
}

func matchDateTime(operator, reference, contextValue string) (bool, error) {
	switch operator {
	case "present":
		return contextValue != "", nil
	case "notpresent":
		return contextValue == "", nil
	}

	if contextValue == "" {
		return false, nil
	}

	ctxVal, err := time.Parse(time.RFC3339, contextValue)
	if err != nil {
		return false, &ParseError{Message: "invalid datetime in context value", Cause: err}
	}
	refVal, err := time.Parse(time.RFC3339, reference)
	if err != nil {
		return false, &ParseError{Message: "invalid datetime in constraint reference value", Cause: err}
	}

	ctxSec, refSec := ctxVal.Unix(), refVal.Unix()

	switch operator {
	case "eq":
		return ctxSec == refSec, nil
	case "neq":
		return ctxSec != refSec, nil
	case "lt":
		return ctxSec < refSec, nil
	case "lte":
		return ctxSec <= refSec, nil
	case "gt":
		return ctxSec > refSec, nil
	case "gte":
		return ctxSec >= refSec, nil
	default:
		return false, nil
	}
}
