package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type BySessionIDs struct {
	SessionIDs []uuid.UUID
}

func (s BySessionIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id IN ?", s.SessionIDs)
}

type ByQuestionID struct {
	QuestionID string
}

func (s ByQuestionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("question_id = ?", s.QuestionID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// InactiveSince matches sessions whose last activity is older than Cutoff.
type InactiveSince struct {
	Cutoff time.Time
}

func (s InactiveSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_activity_at < ?", s.Cutoff)
}

// Orphaned matches answers whose session row no longer exists.
type Orphaned struct{}

func (s Orphaned) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("NOT EXISTS (SELECT 1 FROM sessions WHERE sessions.id = answers.session_id)")
}
