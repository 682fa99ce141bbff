package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/logging"
)

// Every write goes Validate → Perform → Verify:
//
//   1. VALIDATE  check the input before anything is sent
//   2. PERFORM   send the write to the API
//   3. VERIFY    check the record the API answered with
//
// A write that fails verification may still have been applied upstream; the
// error says so, and the caller re-reads instead of trusting the response.

// ExecutionStep names a step of a write.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
)

// ExecutionError records the step a write failed in. It unwraps to the
// cause, so domain.IsValidation and friends see through it.
type ExecutionError struct {
	Step      ExecutionStep
	Operation string
	Cause     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Operation, e.Step, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Operation is one write.
type Operation[I, O any] struct {
	// Name identifies the write in logs, e.g. "create exchange".
	Name string

	// Validate may be nil.
	Validate func(input I) error

	Perform func(ctx context.Context, input I) (O, error)

	// Verify may be nil.
	Verify func(input I, output O) error
}

// Executor runs writes with step logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger uses slog.Default().
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Execute runs op against input.
func Execute[I, O any](ctx context.Context, exec *Executor, op Operation[I, O], input I) (O, error) {
	var zero O

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	if op.Validate != nil {
		if err := op.Validate(input); err != nil {
			logger.DebugContext(ctx, "input rejected", slog.Any("error", err))
			return zero, &ExecutionError{Step: StepValidate, Operation: op.Name, Cause: err}
		}
	}

	output, err := op.Perform(ctx, input)
	if err != nil {
		logger.WarnContext(ctx, "write failed", slog.Any("error", err))
		return zero, &ExecutionError{Step: StepPerform, Operation: op.Name, Cause: err}
	}

	if op.Verify != nil {
		if err := op.Verify(input, output); err != nil {
			logger.ErrorContext(ctx, "write verification failed", slog.Any("error", err))
			return zero, &ExecutionError{Step: StepVerify, Operation: op.Name, Cause: err}
		}
	}

	logger.InfoContext(ctx, "write completed", slog.Duration("duration", time.Since(start)))

	return output, nil
}

// GetExecutionStep returns the step err failed in, if it came from Execute.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
