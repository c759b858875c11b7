// Package errors defines the error type the query engine reports.
//
// The engine's failure surface is narrow: planning rejects bad input
// defensively (the parser is expected to catch it first), execution
// aborts when a stream fails mid-pull, and anything else is a violated
// engine invariant. Each category gets its own constructor so call
// sites read as what went wrong, not as error-plumbing.
package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Category classifies an engine error by the phase that raised it.
type Category int

const (
	// CategoryPlanning covers rejected input during plan construction:
	// a nil AST, an empty match clause, a malformed pattern. Defensive
	// only; the parser should never let these through.
	CategoryPlanning Category = iota

	// CategoryExecution covers stream failures while driving the DAG:
	// a reset that fails during stream coordination, a predicate
	// comparing incompatible property kinds, cancellation. The driver
	// aborts and the caller gets whatever rows were produced.
	CategoryExecution

	// CategoryInternal covers violated engine invariants: a leaf that
	// is not a scan, an optimizer pass handed an impossible shape.
	// These are bugs in the planner or optimizer, not bad input.
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryPlanning:
		return "planning"
	case CategoryExecution:
		return "execution"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// EngineError is the error type every engine surface returns.
type EngineError struct {
	// Category is the phase that raised the error.
	Category Category

	// Code is a stable identifier for the failure, e.g. "EMPTY_MATCH"
	// or "STREAM_FAILED".
	Code string

	// Message describes the failure. Empty on wrapped errors, where
	// the cause already says what happened.
	Message string

	// Op names the engine operation that raised the error, in
	// Component.Method form, e.g. "Executor.Run".
	Op string

	// Cause is the wrapped underlying error, nil for root errors.
	Cause error

	// origin is the file:line of the raising call site, captured at
	// construction for debugging. One frame is enough to find the
	// source; the engine is shallow and single-threaded.
	origin string
}

// Planning creates a plan-construction error.
func Planning(code, message string) *EngineError {
	return &EngineError{Category: CategoryPlanning, Code: code, Message: message, origin: callSite()}
}

// Execution creates a stream-failure error.
func Execution(code, message string) *EngineError {
	return &EngineError{Category: CategoryExecution, Code: code, Message: message, origin: callSite()}
}

// Internal creates a violated-invariant error.
func Internal(code, message string) *EngineError {
	return &EngineError{Category: CategoryInternal, Code: code, Message: message, origin: callSite()}
}

// Wrap builds a new EngineError around an underlying cause. Unlike the
// constructors it carries no message of its own; the cause speaks.
// Wrapping never mutates err, so the same underlying error can be
// wrapped at several layers and each keeps its own context. Returns
// nil when err is nil.
func Wrap(err error, category Category, code, op string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{Category: category, Code: code, Op: op, Cause: err, origin: callSite()}
}

// At records the raising operation and returns the error for chaining:
//
//	return errors.Execution("STREAM_FAILED", "...").At("Executor.Run")
func (e *EngineError) At(op string) *EngineError {
	e.Op = op
	return e
}

// callSite captures the file:line of the constructor's caller.
func callSite() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Error renders as: CODE: message in Op (category): cause
func (e *EngineError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	b.WriteString(" (")
	b.WriteString(e.Category.String())
	b.WriteString(")")
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Origin returns the file:line where the error was constructed.
func (e *EngineError) Origin() string {
	return e.origin
}
