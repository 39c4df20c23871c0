// Package errors provides structured error and warning types for the PLT
// training and inference engine. It wraps github.com/cockroachdb/errors for
// stack traces and exposes a process-wide warning handler for non-fatal
// situations (mirroring scikit-learn's warning system).
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("plt-warning: %v\n", w)
	}
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the warning handler used for non-fatal conditions
// such as a node with a degenerate training bucket.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink, taking
// precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn raises a warning through the installed handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// ConvergenceWarning describes an optimizer that stopped before converging.
// No code path in this module raises it; online training that stops at
// tmax does so without a warning.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s did not converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s did not converge after %d iterations", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning builds a ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// DegenerateNodeWarning is raised when a node's training bucket is empty or
// collapses to a single class; the resulting Base is not an error but
// degrades to a constant predictor.
type DegenerateNodeWarning struct {
	NodeIndex int
	Reason    string
}

func (w *DegenerateNodeWarning) Error() string {
	return fmt.Sprintf("node %d collapsed to a constant classifier: %s", w.NodeIndex, w.Reason)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (w *DegenerateNodeWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("node_index", w.NodeIndex).
		Str("reason", w.Reason).
		Str("type", "DegenerateNodeWarning")
}

// NewDegenerateNodeWarning builds a DegenerateNodeWarning.
func NewDegenerateNodeWarning(nodeIndex int, reason string) *DegenerateNodeWarning {
	return &DegenerateNodeWarning{NodeIndex: nodeIndex, Reason: reason}
}

// ===========================================================================
//
//	Structured errors
//
// ===========================================================================

// NotFittedError reports a prediction attempted on a model that has not
// been trained or loaded. No code path in this module returns it; an
// untrained Base predicts its constant degenerate value instead.
type NotFittedError struct {
	Component string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("plt: %s: not fitted, call Train or Load before %s()", e.Component, e.Method)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("component", e.Component).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError builds a NotFittedError with a stack trace attached.
func NewNotFittedError(component, method string) error {
	return errors.WithStack(&NotFittedError{Component: component, Method: method})
}

// ConfigurationError is returned for unknown optimizer, loss or
// representation identifiers. It is always a configuration-time mistake and
// is always fatal.
type ConfigurationError struct {
	Op    string
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("plt: %s: unknown %s %q", e.Op, e.Field, e.Value)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("op", e.Op).
		Str("field", e.Field).
		Str("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError builds a ConfigurationError with a stack trace.
func NewConfigurationError(op, field, value string) error {
	return errors.WithStack(&ConfigurationError{Op: op, Field: field, Value: value})
}

// SolverError wraps a fatal failure reported by the external batch linear
// solver (the LibLinear-style collaborator described in spec §9).
type SolverError struct {
	NodeIndex int
	Err       error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("plt: node %d: solver failed: %v", e.NodeIndex, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// NewSolverError builds a SolverError with a stack trace.
func NewSolverError(nodeIndex int, err error) error {
	return errors.WithStack(&SolverError{NodeIndex: nodeIndex, Err: err})
}

// IOError wraps a failure saving or loading a model artifact.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("plt: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError builds an IOError with a stack trace.
func NewIOError(op, path string, err error) error {
	return errors.WithStack(&IOError{Op: op, Path: path, Err: err})
}

// TrainingError wraps a per-node training failure surfaced after the
// thread pool drains (spec §7 propagation policy).
type TrainingError struct {
	NodeIndex int
	Err       error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("plt: training failed for node %d: %v", e.NodeIndex, e.Err)
}

func (e *TrainingError) Unwrap() error { return e.Err }

// NewTrainingError builds a TrainingError with a stack trace.
func NewTrainingError(nodeIndex int, err error) error {
	return errors.WithStack(&TrainingError{NodeIndex: nodeIndex, Err: err})
}

// ===========================================================================
//
//	cockroachdb/errors re-exports
//
// ===========================================================================

// Is reports whether err matches target, see errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// As attempts to assign err to target, see errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Wrap annotates err with message and a stack trace.
func Wrap(err error, message string) error { return errors.Wrap(err, message) }

// Wrapf annotates err with a formatted message and a stack trace.
func Wrapf(err error, format string, args ...interface{}) error { return errors.Wrapf(err, format, args...) }

// New creates a new error with a stack trace.
func New(message string) error { return errors.New(message) }

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error { return errors.Newf(format, args...) }

// WithStack attaches a stack trace to err.
func WithStack(err error) error { return errors.WithStack(err) }

// ===========================================================================
//
//	Sentinel errors
//
// ===========================================================================

var (
	// ErrNotImplemented marks an operation left unspecified by design. No
	// code path in this module returns it; predict-from-stdin is rejected
	// with a ConfigurationError.
	ErrNotImplemented = New("not implemented")

	// ErrEmptyTree is returned when a tree with zero nodes is used.
	ErrEmptyTree = New("tree has no nodes")

	// ErrSingleLabelRequired is returned by the HSM convenience constructor
	// when the training matrix contains rows with zero or more than one
	// label.
	ErrSingleLabelRequired = New("HSM requires exactly one label per row")
)
