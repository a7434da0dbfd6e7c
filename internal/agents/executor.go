package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// ActionHandler performs one remediation action type.
type ActionHandler func(ctx context.Context, params map[string]any) (any, error)

// Executor dispatches admitted actions to registered handlers by exact
// action-type match. Handler failures, including panics, are captured
// into the result; Execute never returns an error.
type Executor struct {
	handlers map[string]ActionHandler
	logger   *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		handlers: map[string]ActionHandler{},
		logger:   logger,
	}
}

// Register adds a handler for an action type. Duplicate registrations
// are a startup configuration defect and are rejected.
func (e *Executor) Register(actionType string, handler ActionHandler) error {
	if actionType == "" {
		return fmt.Errorf("action type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler for %q cannot be nil", actionType)
	}
	if _, exists := e.handlers[actionType]; exists {
		return fmt.Errorf("handler for %q already registered", actionType)
	}
	e.handlers[actionType] = handler
	return nil
}

// Execute runs the handler registered for action.Type. Unknown types
// and handler failures report success=false with a descriptive detail.
func (e *Executor) Execute(ctx context.Context, action models.Action) models.ExecutionResult {
	result := models.ExecutionResult{ActionType: action.Type}

	handler, ok := e.handlers[action.Type]
	if !ok {
		result.Details = fmt.Sprintf("no handler for action type: %s", action.Type)
		e.logExecution(action, result)
		return result
	}

	details, err := e.invoke(ctx, handler, action.Params)
	if err != nil {
		result.Details = err.Error()
		e.logExecution(action, result)
		return result
	}

	result.Success = true
	result.Details = details
	e.logExecution(action, result)
	return result
}

func (e *Executor) invoke(ctx context.Context, handler ActionHandler, params map[string]any) (details any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, params)
}

func (e *Executor) logExecution(action models.Action, result models.ExecutionResult) {
	level := slog.LevelInfo
	if !result.Success {
		level = slog.LevelError
	}
	e.logger.Log(context.Background(), level, "action_executed",
		"action_type", action.Type,
		"params", action.Params,
		"success", result.Success,
		"details", result.Details,
	)
}
