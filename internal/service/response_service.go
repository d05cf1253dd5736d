package service

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"lola-discovery-be/internal/dto"
	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/internal/repository/memory"
	"lola-discovery-be/internal/repository/specification"
	"lola-discovery-be/internal/repository/unitofwork"
	"lola-discovery-be/pkg/flow"

	"github.com/google/uuid"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var exportHeader = []string{"Session ID", "Status", "Created At", "Question ID", "Question", "Answer"}

// IResponseService is the reporting side over stored sessions.
type IResponseService interface {
	List(ctx context.Context, req *dto.AdminResponseListRequest) (*dto.AdminResponseListResponse, error)
	Show(ctx context.Context, sessionId uuid.UUID) (*dto.AdminResponseDetailResponse, error)
	Delete(ctx context.Context, sessionId uuid.UUID) error
	ExportCSV(ctx context.Context, w io.Writer) error
}

type responseService struct {
	uowFactory unitofwork.RepositoryFactory
	staging    *memory.StagingRepository
	logger     logger.ILogger
}

// NewResponseService reports over stored sessions. staging is the session
// service's cache of unanswered sessions and may be nil.
func NewResponseService(uowFactory unitofwork.RepositoryFactory, staging *memory.StagingRepository, logger logger.ILogger) IResponseService {
	return &responseService{
		uowFactory: uowFactory,
		staging:    staging,
		logger:     logger,
	}
}

func (c *responseService) List(ctx context.Context, req *dto.AdminResponseListRequest) (*dto.AdminResponseListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.SessionRepository().Count(ctx)
	if err != nil {
		return nil, storageError("count sessions", err)
	}

	rows, err := uow.SessionRepository().FindAllWithAnswerCount(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	if err != nil {
		return nil, storageError("list sessions", err)
	}

	items := make([]dto.AdminResponseListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.AdminResponseListItem{
			SessionId:    r.Id,
			IpAddress:    r.IpAddress,
			Status:       string(r.Status),
			CreatedAt:    r.CreatedAt,
			LastActivity: r.LastActivityAt,
			CompletedAt:  r.CompletedAt,
			AnswerCount:  r.AnswerCount,
		})
	}

	return &dto.AdminResponseListResponse{
		Responses:  items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: int((total + int64(perPage) - 1) / int64(perPage)),
	}, nil
}

func (c *responseService) Show(ctx context.Context, sessionId uuid.UUID) (*dto.AdminResponseDetailResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, storageError("find session", err)
	}
	if session == nil {
		return nil, flow.ErrSessionNotFound
	}

	answers, err := uow.AnswerRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "id"},
	)
	if err != nil {
		return nil, storageError("load answers", err)
	}

	details := make([]dto.AdminAnswerDetail, 0, len(answers))
	for _, a := range answers {
		details = append(details, dto.AdminAnswerDetail{
			QuestionId:   a.QuestionId,
			QuestionText: a.QuestionText,
			InputType:    a.InputType,
			Answer:       flow.ParseStored(flow.InputType(a.InputType), a.Value),
			RawAnswer:    a.Value,
			AnsweredAt:   a.UpdatedAt,
		})
	}

	return &dto.AdminResponseDetailResponse{
		SessionId:    session.Id,
		IpAddress:    session.IpAddress,
		UserAgent:    session.UserAgent,
		Status:       string(session.Status),
		CurrentNode:  session.CurrentNodeId,
		CreatedAt:    session.CreatedAt,
		LastActivity: session.LastActivityAt,
		CompletedAt:  session.CompletedAt,
		Answers:      details,
	}, nil
}

// Delete removes a session whatever its status, including one that was
// started but never answered.
func (c *responseService) Delete(ctx context.Context, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageError("begin", err)
	}
	defer uow.Rollback()

	deleted, err := uow.SessionRepository().Delete(ctx, sessionId)
	if err != nil {
		return storageError("delete session", err)
	}
	if !deleted {
		if c.staging == nil {
			return flow.ErrSessionNotFound
		}
		if _, ok := c.staging.Get(sessionId); !ok {
			return flow.ErrSessionNotFound
		}
		c.staging.Delete(sessionId)
		c.logger.Info("ADMIN", "Unanswered session deleted", map[string]interface{}{
			"session_id": sessionId.String(),
		})
		return nil
	}
	if err := uow.Commit(); err != nil {
		return storageError("commit", err)
	}

	c.logger.Info("ADMIN", "Response deleted", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}

// ExportCSV writes one row per answer, oldest session first. Sessions without
// answers get a single row with empty question columns.
func (c *responseService) ExportCSV(ctx context.Context, w io.Writer) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.SessionRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return storageError("list sessions", err)
	}
	answers, err := uow.AnswerRepository().FindAll(ctx, specification.OrderBy{Field: "id"})
	if err != nil {
		return storageError("list answers", err)
	}

	bySession := make(map[uuid.UUID][]*entity.Answer, len(sessions))
	for _, a := range answers {
		bySession[a.SessionId] = append(bySession[a.SessionId], a)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		base := []string{s.Id.String(), string(s.Status), s.CreatedAt.UTC().Format(time.RFC3339)}
		rows := bySession[s.Id]
		if len(rows) == 0 {
			if err := cw.Write(append(base, "", "", "")); err != nil {
				return err
			}
			continue
		}
		for _, a := range rows {
			record := append(append([]string{}, base...),
				a.QuestionId,
				a.QuestionText,
				flow.FormatForDisplay(flow.InputType(a.InputType), a.Value),
			)
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	c.logger.Info("ADMIN", "Responses exported", map[string]interface{}{
		"sessions": len(sessions),
		"answers":  len(answers),
	})
	return nil
}
