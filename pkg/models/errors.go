package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a tool can report.
type ErrorKind string

const (
	KindInvalidSymbol       ErrorKind = "InvalidSymbol"
	KindInvalidPeriod       ErrorKind = "InvalidPeriod"
	KindInvalidWeights      ErrorKind = "InvalidWeights"
	KindInvalidArguments    ErrorKind = "InvalidArguments"
	KindRateLimitExceeded   ErrorKind = "RateLimitExceeded"
	KindNoDataFound         ErrorKind = "NoDataFound"
	KindInsufficientHistory ErrorKind = "InsufficientHistory"
	KindNoOverlap           ErrorKind = "NoOverlap"
	KindDegenerateSeries    ErrorKind = "DegenerateSeries"
	KindTimeout             ErrorKind = "Timeout"
	KindProviderUnavailable ErrorKind = "ProviderUnavailable"
)

// Error is the structured error returned by every tool. It serializes as
// {kind, param, message} and matches other *Error values of the same kind
// under errors.Is.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Param != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Param, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidSymbol       = &Error{Kind: KindInvalidSymbol}
	ErrInvalidPeriod       = &Error{Kind: KindInvalidPeriod}
	ErrInvalidWeights      = &Error{Kind: KindInvalidWeights}
	ErrInvalidArguments    = &Error{Kind: KindInvalidArguments}
	ErrRateLimitExceeded   = &Error{Kind: KindRateLimitExceeded}
	ErrNoDataFound         = &Error{Kind: KindNoDataFound}
	ErrInsufficientHistory = &Error{Kind: KindInsufficientHistory}
	ErrNoOverlap           = &Error{Kind: KindNoOverlap}
	ErrDegenerateSeries    = &Error{Kind: KindDegenerateSeries}
	ErrTimeout             = &Error{Kind: KindTimeout}
	ErrProviderUnavailable = &Error{Kind: KindProviderUnavailable}
)

// NewError builds an *Error with a formatted message.
func NewError(kind ErrorKind, param, format string, args ...any) *Error {
	return &Error{Kind: kind, Param: param, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error that keeps err as its cause.
func WrapError(kind ErrorKind, param string, err error) *Error {
	return &Error{Kind: kind, Param: param, Message: err.Error(), Err: err}
}

// KindOf classifies any error. Context deadlines and cancellations map to
// Timeout; anything unrecognised is treated as a provider failure.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindProviderUnavailable
}

// AsError converts err into an *Error suitable for serialization.
// It returns nil for a nil error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(KindOf(err), "", err)
}

// WithParam returns a copy of err with Param set, unless one is already set.
// Timeouts belong to the whole request and never name a parameter.
func WithParam(err error, param string) error {
	e := AsError(err)
	if e == nil || e.Param != "" || e.Kind == KindTimeout {
		return err
	}
	cp := *e
	cp.Param = param
	return &cp
}
