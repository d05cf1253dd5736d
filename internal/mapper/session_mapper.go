package mapper

import (
	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// Session Mappers

func (m *SessionMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	return &entity.Session{
		Id:             s.Id,
		IpAddress:      s.IpAddress,
		UserAgent:      s.UserAgent,
		Status:         entity.SessionStatus(s.Status),
		CurrentNodeId:  s.CurrentNodeId,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		CompletedAt:    s.CompletedAt,
	}
}

func (m *SessionMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	return &model.Session{
		Id:             s.Id,
		IpAddress:      s.IpAddress,
		UserAgent:      s.UserAgent,
		Status:         string(s.Status),
		CurrentNodeId:  s.CurrentNodeId,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		CompletedAt:    s.CompletedAt,
	}
}

// Answer Mappers

func (m *SessionMapper) AnswerToEntity(a *model.Answer) *entity.Answer {
	if a == nil {
		return nil
	}

	return &entity.Answer{
		Id:           a.Id,
		SessionId:    a.SessionId,
		QuestionId:   a.QuestionId,
		QuestionText: a.QuestionText,
		InputType:    a.InputType,
		Value:        a.Value,
		Payload:      []byte(a.Payload),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m *SessionMapper) AnswerToModel(a *entity.Answer) *model.Answer {
	if a == nil {
		return nil
	}

	var payload datatypes.JSON
	if len(a.Payload) > 0 {
		payload = datatypes.JSON(a.Payload)
	}

	return &model.Answer{
		Id:           a.Id,
		SessionId:    a.SessionId,
		QuestionId:   a.QuestionId,
		QuestionText: a.QuestionText,
		InputType:    a.InputType,
		Value:        a.Value,
		Payload:      payload,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m *SessionMapper) AnswersToEntities(models []*model.Answer) []*entity.Answer {
	entities := make([]*entity.Answer, len(models))
	for i, a := range models {
		entities[i] = m.AnswerToEntity(a)
	}
	return entities
}
