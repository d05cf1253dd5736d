package dto

import (
	"encoding/json"
	"time"

	"lola-discovery-be/pkg/flow"

	"github.com/google/uuid"
)

// ClientInfo identifies the visitor starting a session.
type ClientInfo struct {
	IpAddress string
	UserAgent string
}

// StartSessionRequest carries optional client hints. The address used for rate
// limiting always comes from the connection.
type StartSessionRequest struct {
	UserAgent string `json:"user_agent" validate:"omitempty,max=500"`
}

type StartSessionResponse struct {
	SessionId uuid.UUID          `json:"session_id"`
	Question  *flow.QuestionView `json:"question"`
	Progress  flow.Progress      `json:"progress"`
}

// SubmitAnswerRequest needs both keys. An explicit null answer arrives as the
// raw `null` literal, a missing one as nil.
type SubmitAnswerRequest struct {
	QuestionId string          `json:"question_id" validate:"required,max=128"`
	Answer     json.RawMessage `json:"answer"`
}

// SubmitAnswerResponse carries either the next question or the completion.
type SubmitAnswerResponse struct {
	Completed bool                    `json:"completed"`
	Question  *flow.QuestionView      `json:"question,omitempty"`
	Progress  *flow.Progress          `json:"progress,omitempty"`
	Message   string                  `json:"message,omitempty"`
	Summary   *SessionSummaryResponse `json:"summary,omitempty"`
}

type SessionSummaryResponse struct {
	SessionId    uuid.UUID       `json:"session_id"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Progress     flow.Progress   `json:"progress"`
	Answers      []SummaryAnswer `json:"answers"`
}

type SummaryAnswer struct {
	QuestionId   string    `json:"question_id"`
	QuestionText string    `json:"question_text"`
	InputType    string    `json:"input_type"`
	Answer       string    `json:"answer"`
	DisplayValue string    `json:"display_value"`
	AnsweredAt   time.Time `json:"answered_at"`
}
