package playback

import (
	"errors"
	"fmt"
)

var (
	ErrSessionClosed    = errors.New("viewer session closed")
	ErrNoStories        = errors.New("no stories to play")
	ErrAuthorOutOfRange = errors.New("author index out of range")
)

// InvariantError reports a programming error such as a cursor that does not
// resolve to a story. It is raised with panic and never clamped away.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "playback invariant violated: " + e.Message
}

func invariantf(format string, args ...interface{}) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}

// DeleteError is returned when the data layer refuses a story deletion. The
// session is left untouched so the viewer can retry.
type DeleteError struct {
	StoryID int64
	Err     error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete story %d: %v", e.StoryID, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

func (e *DeleteError) Retryable() bool {
	return true
}

// IsRetryable reports whether err carries a retry affordance for the viewer.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
