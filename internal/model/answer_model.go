package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Answer struct {
	Id           uint           `gorm:"primaryKey;autoIncrement"`
	SessionId    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_answers_session_question,priority:1"`
	QuestionId   string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_answers_session_question,priority:2"`
	QuestionText string         `gorm:"type:text;not null;default:''"`
	InputType    string         `gorm:"type:varchar(32);not null;default:'text'"`
	Value        string         `gorm:"type:text;not null;default:''"`
	Payload      datatypes.JSON `gorm:"type:json"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

func (Answer) TableName() string {
	return "answers"
}
