package entity

import (
	"time"

	"github.com/google/uuid"
)

type Answer struct {
	Id           uint
	SessionId    uuid.UUID
	QuestionId   string
	QuestionText string
	InputType    string
	Value        string
	Payload      []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
