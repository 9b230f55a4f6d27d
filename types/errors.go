package types

import "errors"

// Error taxonomy shared across the engine. Callers match with errors.Is;
// sites wrap these with fmt.Errorf("%w: ...") to attach detail.
var (
	// ErrDuplicateID is returned by the registry when an agent id is
	// already taken.
	ErrDuplicateID = errors.New("agent id already registered")

	// ErrAgentNotFound means a submit or dispatch referenced an agent id
	// the registry does not know.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrValidationFailed means the injected validator rejected a payload.
	ErrValidationFailed = errors.New("payload validation failed")

	// ErrInitialization wraps the first component that failed during
	// coordinator initialization.
	ErrInitialization = errors.New("initialization failed")

	// ErrNotInitialized is returned by Submit before a successful
	// Initialize.
	ErrNotInitialized = errors.New("coordinator not initialized")

	// ErrTaskNotFound means a status or result lookup referenced an
	// unknown task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrExecutionFailed normalizes panics and executor errors caught by
	// the lifecycle runner.
	ErrExecutionFailed = errors.New("agent execution failed")
)
