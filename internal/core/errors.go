package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBuild classifies errors raised while assembling nodes and rules.
	ErrBuild = errors.New("build error")

	// ErrEvaluation classifies errors raised while evaluating a single rule against a context.
	ErrEvaluation = errors.New("evaluation error")
)

// build-time errors

type DuplicateNodeNameError struct {
	Name string
}

func (e *DuplicateNodeNameError) Error() string {
	return fmt.Sprintf("node '%s' is already registered", e.Name)
}

func (e *DuplicateNodeNameError) Is(target error) bool { return target == ErrBuild }

type UnknownNodeNameError struct {
	Name string
}

func (e *UnknownNodeNameError) Error() string {
	return fmt.Sprintf("unknown node '%s'", e.Name)
}

func (e *UnknownNodeNameError) Is(target error) bool { return target == ErrBuild }

type ArityMismatchError struct {
	Name     string
	Want     int
	Variadic bool
	Got      int
}

func (e *ArityMismatchError) Error() string {
	if e.Variadic {
		return fmt.Sprintf("node '%s' expects at least %d children, got %d", e.Name, e.Want, e.Got)
	}
	return fmt.Sprintf("node '%s' expects %d children, got %d", e.Name, e.Want, e.Got)
}

func (e *ArityMismatchError) Is(target error) bool { return target == ErrBuild }

type TypeConstraintError struct {
	Name     string
	Index    int
	Declared SemanticType
	Actual   SemanticType
}

func (e *TypeConstraintError) Error() string {
	return fmt.Sprintf("node '%s' child #%d: expected %s, got %s", e.Name, e.Index, e.Declared, e.Actual)
}

func (e *TypeConstraintError) Is(target error) bool { return target == ErrBuild }

type WeightConfigError struct {
	Reason string
}

func (e *WeightConfigError) Error() string {
	return "invalid weight configuration: " + e.Reason
}

func (e *WeightConfigError) Is(target error) bool { return target == ErrBuild }

// ParamError reports a node parameter that is missing or cannot be decoded.
type ParamError struct {
	Name   string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("node '%s': %s", e.Name, e.Reason)
}

func (e *ParamError) Is(target error) bool { return target == ErrBuild }

type TargetCategoryError struct {
	RuleID string
	Target SemanticType
	Actual SemanticType
}

func (e *TargetCategoryError) Error() string {
	return fmt.Sprintf("rule '%s' targets %s but its root produces %s", e.RuleID, e.Target, e.Actual)
}

func (e *TargetCategoryError) Is(target error) bool { return target == ErrBuild }

type DuplicateRuleError struct {
	RuleID string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("rule '%s' is already defined", e.RuleID)
}

func (e *DuplicateRuleError) Is(target error) bool { return target == ErrBuild }

// evaluation-time errors

type NotFoundVarPathError struct {
	Path string
}

func (e *NotFoundVarPathError) Error() string {
	return fmt.Sprintf("variable path '%s' not found", e.Path)
}

func (e *NotFoundVarPathError) Is(target error) bool { return target == ErrEvaluation }

// VarTypeError reports a context value whose kind does not match what the terminal declares.
type VarTypeError struct {
	Path string
	Want SemanticType
	Got  any
}

func (e *VarTypeError) Error() string {
	return fmt.Sprintf("variable path '%s': expected %s, got %T", e.Path, e.Want, e.Got)
}

func (e *VarTypeError) Is(target error) bool { return target == ErrEvaluation }

type ValueOutOfRangeError struct {
	Table SemanticType
	Value float64
	Lower float64
	Upper float64
}

func (e *ValueOutOfRangeError) Error() string {
	return fmt.Sprintf("value %v is outside the %s range [%v, %v]", e.Value, e.Table, e.Lower, e.Upper)
}

func (e *ValueOutOfRangeError) Is(target error) bool { return target == ErrEvaluation }

type MissingEstimatorScoreError struct {
	Name string
}

func (e *MissingEstimatorScoreError) Error() string {
	return fmt.Sprintf("score for estimator '%s' is missing", e.Name)
}

func (e *MissingEstimatorScoreError) Is(target error) bool { return target == ErrEvaluation }

type OperatorArityError struct {
	Name string
	Want int
	Got  int
}

func (e *OperatorArityError) Error() string {
	return fmt.Sprintf("operator '%s' was built with %d children but evaluated %d", e.Name, e.Want, e.Got)
}

func (e *OperatorArityError) Is(target error) bool { return target == ErrEvaluation }

type DivisionByZeroError struct {
	Name string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("operator '%s': division by zero", e.Name)
}

func (e *DivisionByZeroError) Is(target error) bool { return target == ErrEvaluation }

// ExprError wraps a failure of a compiled expression node at evaluation time.
type ExprError struct {
	Code    string
	Wrapped error
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("expression '%s': %v", strings.TrimSpace(e.Code), e.Wrapped)
}

func (e *ExprError) Unwrap() error { return e.Wrapped }

func (e *ExprError) Is(target error) bool { return target == ErrEvaluation }
