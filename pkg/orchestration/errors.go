package orchestration

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidArgument is matched by every error that reports bad caller input.
var ErrInvalidArgument = errors.New("invalid argument")

type InvalidArgumentError struct {
	Field  string
	Reason string
	Cause  error
}

func NewInvalidArgument(field, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

func (e *InvalidArgumentError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func (e *InvalidArgumentError) Unwrap() error { return e.Cause }

// UnknownModelError is returned when a model id has no entry in the price registry.
type UnknownModelError struct {
	ModelId string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("no model found with id: %s", e.ModelId)
}

func (e *UnknownModelError) Is(target error) bool { return target == ErrInvalidArgument }

type EmptyConversationError struct {
	ConversationId int64
}

func (e *EmptyConversationError) Error() string {
	return fmt.Sprintf("cannot generate summary for conversation %d with no messages", e.ConversationId)
}

type MonthlyLimitExceededError struct {
	CompanyId       int64
	Limit           decimal.Decimal
	CurrentSpending decimal.Decimal
}

func (e *MonthlyLimitExceededError) Error() string {
	return fmt.Sprintf("monthly spending limit exceeded for company %d: spent %s of %s",
		e.CompanyId, e.CurrentSpending.StringFixed(5), e.Limit.StringFixed(5))
}

type FailureKind string

const (
	KindProcessing        FailureKind = "processing"
	KindSummaryGeneration FailureKind = "summary_generation"
)

// Failure wraps any unexpected error raised while talking to the model or persisting results.
type Failure struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func NewProcessingFailure(cause error) *Failure {
	return &Failure{Kind: KindProcessing, Message: "failed to process message", Cause: cause}
}

func NewSummaryFailure(cause error) *Failure {
	return &Failure{Kind: KindSummaryGeneration, Message: "failed to generate summary", Cause: cause}
}

func (e *Failure) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Failure) Unwrap() error { return e.Cause }
