package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRetryExhausted marks an operation that stayed throttled through every
// allowed attempt. It is terminal for the enclosing operation only; the
// traverser converts it into a skip at the current nesting level.
var ErrRetryExhausted = errors.New("max retries exceeded")

// RemoteError is the structured failure produced by every remote adapter.
// Classification is done on StatusCode, never by parsing message text.
type RemoteError struct {
	Op         string        // operation description, e.g. "connect site"
	StatusCode int           // HTTP status from the remote, 0 for transport errors
	RetryAfter time.Duration // server-supplied wait hint, 0 when absent
	Err        error         // underlying cause, may be nil
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: http %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Throttled reports whether the remote signaled rate limiting.
func (e *RemoteError) Throttled() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusServiceUnavailable
}

// IsThrottled reports whether err carries a throttling signal anywhere in
// its chain.
func IsThrottled(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Throttled()
}

// RetryAfterHint extracts the server-supplied retry-after duration from an
// error chain, or 0 when none was provided.
func RetryAfterHint(err error) time.Duration {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.RetryAfter
	}
	return 0
}

// PartialMutationError reports a reset-then-reapply sequence that failed
// after the reset already succeeded. The list is left label-less, a state
// the qualification rule cannot re-detect on a later run, so it must be
// distinguishable from an ordinary skip.
type PartialMutationError struct {
	ListTitle string
	Label     string
	Err       error
}

func (e *PartialMutationError) Error() string {
	return fmt.Sprintf("label %q was reset on list %q but reapply failed: %v", e.Label, e.ListTitle, e.Err)
}

func (e *PartialMutationError) Unwrap() error { return e.Err }
