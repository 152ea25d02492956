package model

import "fmt"

// Retriable distinguishes failures the job transport should back off and
// retry from ones it must not. An error that does not implement it is
// treated as retriable by IsRetriable below, matching the spec's
// "everything defaults to retriable unless tagged otherwise" policy.
type Retriable interface {
	Retriable() bool
}

// NotFoundError means the workflow does not exist, or exists but is not
// owned by the caller. Never retriable.
type NotFoundError struct {
	Message string
}

func (e NotFoundError) Error() string   { return fmt.Sprintf("not found: %s", e.Message) }
func (e NotFoundError) Retriable() bool { return false }

// NotAuthorizedError means the caller does not own the workflow it is
// trying to save or execute. Never retriable.
type NotAuthorizedError struct {
	Message string
}

func (e NotAuthorizedError) Error() string   { return fmt.Sprintf("not authorized: %s", e.Message) }
func (e NotAuthorizedError) Retriable() bool { return false }

// CycleError means the connection graph contains a cycle. Surfaced by the
// scheduler before any node executes. Never retriable.
type CycleError struct {
	Message string
}

func (e CycleError) Error() string   { return fmt.Sprintf("cycle detected: %s", e.Message) }
func (e CycleError) Retriable() bool { return false }

// ConfigError means a node's data failed validation, or its type has no
// registered executor, or the trigger event itself was malformed. Never
// retriable: retrying a bad configuration just fails again.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string   { return e.Message }
func (e ConfigError) Retriable() bool { return false }

// TransientError is the default failure kind for anything an executor
// raises that isn't explicitly classified otherwise: network errors,
// timeouts, 5xx responses. The transport retries per its backoff policy.
type TransientError struct {
	Message string
	Cause   error
}

func (e TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}
func (e TransientError) Retriable() bool { return true }
func (e TransientError) Unwrap() error   { return e.Cause }

// SuspendError is not a failure. A WAIT or DELAY executor raises it to
// tell the runner to park the execution - persist state and return
// without error - instead of either completing or retrying. The runner
// distinguishes it from TransientError by type, never by string match.
type SuspendError struct {
	Reason      string
	WaitEvent   string
	ResumeAfter int64 // unix seconds; zero means "wait for event, not time"
}

func (e SuspendError) Error() string {
	return fmt.Sprintf("execution suspended: %s", e.Reason)
}

// IsRetriable classifies any error raised inside the engine. Errors that
// don't implement Retriable (including ones from third-party code, e.g.
// a raw *url.Error from the HTTP client) default to retriable, per spec.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if r, ok := err.(Retriable); ok {
		return r.Retriable()
	}
	return true
}
