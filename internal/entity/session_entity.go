package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

type Session struct {
	Id             uuid.UUID
	IpAddress      string
	UserAgent      string
	Status         SessionStatus
	CurrentNodeId  string
	CreatedAt      time.Time
	LastActivityAt time.Time
	CompletedAt    *time.Time
}

func (s *Session) IsCompleted() bool {
	return s.Status == SessionCompleted
}

// SessionListItem is a session row with its answer count, used by admin listings.
type SessionListItem struct {
	Session
	AnswerCount int64
}
