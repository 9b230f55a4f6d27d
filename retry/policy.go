package retry

// DefaultMaxAttempts matches the scheduler's historical retry cap.
const DefaultMaxAttempts = 3

// Policy decides whether a failed task may bounce back to pending.
// attempt is the number of retries already consumed. The scheduling core
// dispatches synchronously, so policies express counts, not delays.
type Policy interface {
	ShouldRetry(attempt int) bool
}

// AttemptLimit allows up to Max retries.
type AttemptLimit struct {
	Max int
}

func (p AttemptLimit) ShouldRetry(attempt int) bool {
	return attempt < p.Max
}

// Never makes every failure terminal.
type Never struct{}

func (Never) ShouldRetry(int) bool { return false }

// Always retries without bound. Only sensible for executors whose
// failures are known to be transient.
type Always struct{}

func (Always) ShouldRetry(int) bool { return true }

// Default is the policy the scheduler uses when none is injected.
func Default() Policy {
	return AttemptLimit{Max: DefaultMaxAttempts}
}
