package domain

import (
	"errors"
	"fmt"
)

// SchemaError means a rubric file or an evaluator response does not match its
// declared structure. It aborts the current request and is never retried.
type SchemaError struct {
	Subject string
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: %s", e.Subject, e.Reason)
}

func NewSchemaError(subject, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// CoverageError means the evaluator omitted one or more rubric parameters
// from its response. The scoring invocation cannot proceed on a partial set.
type CoverageError struct {
	MissingParameterIDs []string
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("evaluator response missing %d rubric parameter(s): %v",
		len(e.MissingParameterIDs), e.MissingParameterIDs)
}

// ValidationRejection records why a parameter result was rejected during
// validation. It is recovered locally: the parameter is zeroed and the call
// still produces a report.
type ValidationRejection struct {
	ParameterID string
	Reason      string
}

func (e *ValidationRejection) Error() string {
	return fmt.Sprintf("parameter %s rejected: %s", e.ParameterID, e.Reason)
}

// UpstreamError wraps a failure from an external service (evaluator,
// transcriber, emotion classifier). Retryable errors are rate limits,
// 5xx responses and timeouts.
type UpstreamError struct {
	Service   string
	Retryable bool
	Err       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsRetryableUpstream reports whether err is an UpstreamError marked retryable.
func IsRetryableUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Retryable
}

// UpstreamUnavailableError means every consensus attempt against the
// evaluator failed, so no report can be produced.
type UpstreamUnavailableError struct {
	Service  string
	Attempts int
	LastErr  error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream %s unavailable after %d attempt(s): %v", e.Service, e.Attempts, e.LastErr)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.LastErr
}

// InputError means the caller supplied malformed input (empty transcript,
// unknown project). Rejected immediately, never retried.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

func NewInputError(format string, args ...interface{}) *InputError {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}
