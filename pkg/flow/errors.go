package flow

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	ErrInvalidQuestion         = errors.New("invalid question")
	ErrQuestionOutOfOrder      = errors.New("question is not the one currently expected")
	ErrRateLimited             = errors.New("too many sessions started from this address")

	// ErrFlowConfig is returned when traversal exceeds the hop budget at runtime.
	ErrFlowConfig = errors.New("flow configuration error")
)

// ValidationError carries the reason an answer was rejected.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(n *Node, format string, args ...interface{}) *ValidationError {
	return &ValidationError{QuestionID: n.ID, Reason: fmt.Sprintf(format, args...)}
}

// ConfigError reports a malformed flow document. It is fatal at load time.
type ConfigError struct {
	NodeID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.NodeID == "" {
		return "flow config: " + e.Reason
	}
	return fmt.Sprintf("flow config: node %q: %s", e.NodeID, e.Reason)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
