package dto

import (
	"time"

	"github.com/google/uuid"
)

type AdminResponseListRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

type AdminResponseListItem struct {
	SessionId    uuid.UUID  `json:"session_id"`
	IpAddress    string     `json:"ip_address"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	AnswerCount  int64      `json:"answer_count"`
}

type AdminResponseListResponse struct {
	Responses  []AdminResponseListItem `json:"responses"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	PerPage    int                     `json:"per_page"`
	TotalPages int                     `json:"total_pages"`
}

type AdminAnswerDetail struct {
	QuestionId   string      `json:"question_id"`
	QuestionText string      `json:"question_text"`
	InputType    string      `json:"input_type"`
	Answer       interface{} `json:"answer"`
	RawAnswer    string      `json:"raw_answer"`
	AnsweredAt   time.Time   `json:"answered_at"`
}

type AdminResponseDetailResponse struct {
	SessionId    uuid.UUID           `json:"session_id"`
	IpAddress    string              `json:"ip_address"`
	UserAgent    string              `json:"user_agent"`
	Status       string              `json:"status"`
	CurrentNode  string              `json:"current_node_id"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActivity time.Time           `json:"last_activity"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	Answers      []AdminAnswerDetail `json:"answers"`
}

type AdminCleanupRequest struct {
	Minutes int `query:"minutes"`
}

type AdminCleanupResponse struct {
	Removed          int64 `json:"removed"`
	ThresholdMinutes int   `json:"threshold_minutes"`
}
