package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lola-discovery-be/internal/dto"
	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/internal/pkg/metrics"
	"lola-discovery-be/internal/pkg/ratelimit"
	"lola-discovery-be/internal/repository/contract"
	"lola-discovery-be/internal/repository/memory"
	"lola-discovery-be/internal/repository/specification"
	"lola-discovery-be/internal/repository/unitofwork"
	"lola-discovery-be/pkg/events"
	"lola-discovery-be/pkg/flow"

	"github.com/google/uuid"
)

const (
	maxIPLength        = 64
	maxUserAgentLength = 500
	unknownClient      = "unknown"
)

// ISessionService walks a respondent through the flow graph.
type ISessionService interface {
	Start(ctx context.Context, client dto.ClientInfo) (*dto.StartSessionResponse, error)
	SubmitAnswer(ctx context.Context, sessionId uuid.UUID, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	GetSummary(ctx context.Context, sessionId uuid.UUID) (*dto.SessionSummaryResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	CleanupStale(ctx context.Context, thresholdMinutes int) (int64, error)
}

type SessionOptions struct {
	// StrictOrder rejects answers for any question other than the awaited one.
	StrictOrder bool
	// IncludeSummary attaches the session summary to the completion response.
	IncludeSummary bool
	// StaleAfter bounds how long a started session may wait for its first answer.
	StaleAfter time.Duration
	// Staging holds started sessions until their first answer. A fresh one is
	// created when nil.
	Staging *memory.StagingRepository
}

type sessionService struct {
	graph      *flow.Graph
	uowFactory unitofwork.RepositoryFactory
	staging    *memory.StagingRepository
	limiter    ratelimit.Limiter
	publisher  IPublisherService
	metrics    *metrics.FlowMetrics
	logger     logger.ILogger
	opts       SessionOptions
	now        func() time.Time
}

func NewSessionService(
	graph *flow.Graph,
	uowFactory unitofwork.RepositoryFactory,
	limiter ratelimit.Limiter,
	publisher IPublisherService,
	metrics *metrics.FlowMetrics,
	logger logger.ILogger,
	opts SessionOptions,
) ISessionService {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = time.Hour
	}
	if opts.Staging == nil {
		opts.Staging = memory.NewStagingRepository(opts.StaleAfter)
	}
	return &sessionService{
		graph:      graph,
		uowFactory: uowFactory,
		staging:    opts.Staging,
		limiter:    limiter,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func storageError(op string, err error) error {
	return fmt.Errorf("storage: %s: %w", op, err)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit])
	}
	return s
}

func (s *sessionService) Start(ctx context.Context, client dto.ClientInfo) (*dto.StartSessionResponse, error) {
	ip := truncate(client.IpAddress, maxIPLength)
	if ip == "" {
		ip = unknownClient
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, ip)
		if err != nil {
			// fail open
			s.logger.Warn("SESSION", "Rate limiter unavailable", map[string]interface{}{"error": err.Error()})
		} else if !allowed {
			s.metrics.StartRejected()
			s.logger.Warn("SESSION", "Session start rejected by rate limit", map[string]interface{}{"ip_address": ip})
			return nil, flow.ErrRateLimited
		}
	}

	first := s.graph.First()
	now := s.now()
	session := &entity.Session{
		Id:             uuid.New(),
		IpAddress:      ip,
		UserAgent:      truncate(client.UserAgent, maxUserAgentLength),
		Status:         entity.SessionInProgress,
		CurrentNodeId:  first.ID,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	// persisted together with the first accepted answer
	s.staging.Save(session)

	s.metrics.SessionStarted()
	s.publish(ctx, events.SessionStarted, map[string]interface{}{
		"session_id": session.Id.String(),
		"ip_address": session.IpAddress,
	})
	s.logger.Info("SESSION", "Session started", map[string]interface{}{"session_id": session.Id.String()})

	return &dto.StartSessionResponse{
		SessionId: session.Id,
		Question:  first.View(),
		Progress:  s.graph.ProgressFor(nil),
	}, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionId uuid.UUID, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	started := time.Now()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Locate the session, persisted or staged
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, storageError("find session", err)
	}
	staged := false
	if session == nil {
		var ok bool
		if session, ok = s.staging.Get(sessionId); ok {
			staged = true
		} else {
			// a concurrent first answer may have moved it out of staging
			if session, err = uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId}); err != nil {
				return nil, storageError("find session", err)
			}
			if session == nil {
				return nil, flow.ErrSessionNotFound
			}
		}
	}
	if session.IsCompleted() {
		return nil, flow.ErrSessionAlreadyCompleted
	}

	// 2. Check the question
	node, ok := s.graph.Question(req.QuestionId)
	if !ok {
		return nil, fmt.Errorf("%w: %q", flow.ErrInvalidQuestion, req.QuestionId)
	}
	if s.opts.StrictOrder && session.CurrentNodeId != "" && node.ID != session.CurrentNodeId {
		return nil, fmt.Errorf("%w: expected %q", flow.ErrQuestionOutOfOrder, session.CurrentNodeId)
	}

	// 3. Decode, sanitize, validate
	answer, err := flow.DecodeAnswer(node, req.Answer)
	if err == nil {
		answer = flow.Sanitize(answer)
		err = flow.Validate(node, answer)
	}
	if err != nil {
		s.metrics.ValidationFailed(node.ID)
		return nil, err
	}

	value, err := flow.Encode(answer)
	if err != nil {
		return nil, err
	}
	var payload []byte
	if answer != nil {
		if payload, err = flow.Payload(answer); err != nil {
			return nil, err
		}
	}

	// 4. Resolve the next node against the answers including this one
	answers := map[string]string{}
	if !staged {
		stored, err := uow.AnswerRepository().FindAll(ctx, specification.BySessionID{SessionID: sessionId})
		if err != nil {
			return nil, storageError("load answers", err)
		}
		for _, a := range stored {
			answers[a.QuestionId] = a.Value
		}
	}
	answers[node.ID] = value

	next, err := s.graph.Resolve(node, answers)
	if err != nil {
		s.logger.Error("SESSION", "Flow resolution failed", map[string]interface{}{
			"session_id":  sessionId.String(),
			"question_id": node.ID,
			"error":       err.Error(),
		})
		return nil, err
	}

	// 5. Persist answer and session transition atomically
	now := s.now()
	session.LastActivityAt = now
	session.CurrentNodeId = next.ID
	if next.IsEnd() {
		session.Status = entity.SessionCompleted
		session.CompletedAt = &now
	}

	record := &entity.Answer{
		SessionId:    sessionId,
		QuestionId:   node.ID,
		QuestionText: node.Text,
		InputType:    string(node.InputType),
		Value:        value,
		Payload:      payload,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.persistSubmission(ctx, uow, session, staged, record); err != nil {
		return nil, err
	}
	if staged {
		s.staging.Delete(sessionId)
	}

	s.metrics.AnswerAccepted(string(node.InputType), time.Since(started).Seconds())
	s.logger.Debug("SESSION", "Answer accepted", map[string]interface{}{
		"session_id":  sessionId.String(),
		"question_id": node.ID,
		"next_node":   next.ID,
	})

	if !next.IsEnd() {
		ids := make([]string, 0, len(answers))
		for id := range answers {
			ids = append(ids, id)
		}
		progress := s.graph.ProgressFor(ids)
		return &dto.SubmitAnswerResponse{
			Completed: false,
			Question:  next.View(),
			Progress:  &progress,
		}, nil
	}

	s.metrics.SessionCompleted()
	s.publish(ctx, events.SessionCompleted, map[string]interface{}{
		"session_id": sessionId.String(),
		"answers":    len(answers),
	})
	s.logger.Info("SESSION", "Session completed", map[string]interface{}{"session_id": sessionId.String()})

	res := &dto.SubmitAnswerResponse{
		Completed: true,
		Message:   next.CompletionMessage(),
	}
	if s.opts.IncludeSummary {
		summary, err := s.buildSummary(ctx, s.uowFactory.NewUnitOfWork(ctx), session)
		if err != nil {
			// the answer is committed; report completion without the summary
			s.logger.Warn("SESSION", "Failed to build completion summary", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		} else {
			res.Summary = summary
		}
	}
	return res, nil
}

func (s *sessionService) persistSubmission(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session, staged bool, answer *entity.Answer) error {
	if err := uow.Begin(ctx); err != nil {
		return storageError("begin", err)
	}
	defer uow.Rollback()

	sessions := uow.SessionRepository()

	update := !staged
	if staged {
		err := sessions.Create(ctx, session)
		switch {
		case errors.Is(err, contract.ErrAlreadyExists):
			// a concurrent first answer created it
			update = true
		case err != nil:
			return storageError("create session", err)
		}
	}

	if update {
		err := sessions.Update(ctx, session)
		if errors.Is(err, contract.ErrNoRows) {
			current, ferr := sessions.FindOne(ctx, specification.ByID{ID: session.Id})
			if ferr != nil {
				return storageError("find session", ferr)
			}
			if current == nil {
				return flow.ErrSessionNotFound
			}
			return flow.ErrSessionAlreadyCompleted
		}
		if err != nil {
			return storageError("update session", err)
		}
	}

	if err := uow.AnswerRepository().Upsert(ctx, answer); err != nil {
		return storageError("upsert answer", err)
	}

	if err := uow.Commit(); err != nil {
		return storageError("commit", err)
	}
	return nil
}

func (s *sessionService) GetSummary(ctx context.Context, sessionId uuid.UUID) (*dto.SessionSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, storageError("find session", err)
	}
	if session == nil {
		staged, ok := s.staging.Get(sessionId)
		if !ok {
			return nil, flow.ErrSessionNotFound
		}
		return &dto.SessionSummaryResponse{
			SessionId:    staged.Id,
			Status:       string(staged.Status),
			CreatedAt:    staged.CreatedAt,
			LastActivity: staged.LastActivityAt,
			Progress:     s.graph.ProgressFor(nil),
			Answers:      []dto.SummaryAnswer{},
		}, nil
	}

	return s.buildSummary(ctx, uow, session)
}

func (s *sessionService) buildSummary(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session) (*dto.SessionSummaryResponse, error) {
	answers, err := uow.AnswerRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.OrderBy{Field: "id"},
	)
	if err != nil {
		return nil, storageError("load answers", err)
	}

	ids := make([]string, 0, len(answers))
	items := make([]dto.SummaryAnswer, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionId)
		items = append(items, dto.SummaryAnswer{
			QuestionId:   a.QuestionId,
			QuestionText: a.QuestionText,
			InputType:    a.InputType,
			Answer:       a.Value,
			DisplayValue: flow.FormatForDisplay(flow.InputType(a.InputType), a.Value),
			AnsweredAt:   a.UpdatedAt,
		})
	}

	return &dto.SessionSummaryResponse{
		SessionId:    session.Id,
		Status:       string(session.Status),
		CreatedAt:    session.CreatedAt,
		LastActivity: session.LastActivityAt,
		CompletedAt:  session.CompletedAt,
		Progress:     s.graph.ProgressFor(ids),
		Answers:      items,
	}, nil
}

// DeleteSession removes an in-progress session. Completed or unknown sessions
// are left alone and reported as success.
func (s *sessionService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	if _, ok := s.staging.Get(sessionId); ok {
		s.staging.Delete(sessionId)
		s.afterDelete(ctx, sessionId)
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageError("begin", err)
	}
	defer uow.Rollback()

	deleted, err := uow.SessionRepository().Delete(ctx, sessionId,
		specification.ByStatus{Status: string(entity.SessionInProgress)},
	)
	if err != nil {
		return storageError("delete session", err)
	}
	if !deleted {
		return nil
	}
	if err := uow.Commit(); err != nil {
		return storageError("commit", err)
	}

	s.afterDelete(ctx, sessionId)
	return nil
}

func (s *sessionService) afterDelete(ctx context.Context, sessionId uuid.UUID) {
	s.metrics.SessionDeleted()
	s.publish(ctx, events.SessionDeleted, map[string]interface{}{"session_id": sessionId.String()})
	s.logger.Info("SESSION", "Session deleted", map[string]interface{}{"session_id": sessionId.String()})
}

// CleanupStale removes in-progress sessions, stored or staged, whose last
// activity is older than thresholdMinutes. Completed sessions are never touched.
func (s *sessionService) CleanupStale(ctx context.Context, thresholdMinutes int) (int64, error) {
	if thresholdMinutes < 1 {
		return 0, &flow.ValidationError{Reason: "Threshold must be at least 1 minute"}
	}
	cutoff := s.now().Add(-time.Duration(thresholdMinutes) * time.Minute)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, storageError("begin", err)
	}
	defer uow.Rollback()

	removed, err := uow.SessionRepository().DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, storageError("delete stale sessions", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, storageError("commit", err)
	}

	staged := s.staging.DeleteStale(cutoff)
	total := removed + staged

	s.metrics.SessionsCleaned(total)
	s.logger.Info("SESSION", "Stale sessions cleaned", map[string]interface{}{
		"threshold_minutes": thresholdMinutes,
		"stored":            removed,
		"staged":            staged,
	})
	if total > 0 {
		s.publish(ctx, events.SessionsCleaned, map[string]interface{}{
			"removed":           total,
			"threshold_minutes": thresholdMinutes,
		})
	}
	return total, nil
}

func (s *sessionService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("SESSION", "Failed to queue event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}
