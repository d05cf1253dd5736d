package implementation

import (
	"context"
	"errors"
	"time"

	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/mapper"
	"lola-discovery-be/internal/model"
	"lola-discovery-be/internal/repository/contract"
	"lola-discovery-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.SessionToModel(session)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrAlreadyExists
	}
	return nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entity.Session) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND status = ?", session.Id, string(entity.SessionInProgress)).
		Updates(map[string]interface{}{
			"status":           string(session.Status),
			"current_node_id":  session.CurrentNodeId,
			"last_activity_at": session.LastActivityAt,
			"completed_at":     session.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNoRows
	}
	return nil
}

// Delete removes the session and its answers. Answers are deleted explicitly so
// the behaviour does not depend on the driver enforcing ON DELETE CASCADE.
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, specs ...specification.Specification) (bool, error) {
	db := r.db.WithContext(ctx)

	match := append([]specification.Specification{specification.ByID{ID: id}}, specs...)
	res := r.applySpecifications(db, match...).Delete(&model.Session{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	bySession := specification.BySessionID{SessionID: id}
	if err := bySession.Apply(db).Delete(&model.Answer{}).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *SessionRepositoryImpl) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.db.WithContext(ctx)
	stale := []specification.Specification{
		specification.ByStatus{Status: string(entity.SessionInProgress)},
		specification.InactiveSince{Cutoff: cutoff},
	}

	var ids []uuid.UUID
	if err := r.applySpecifications(db.Model(&model.Session{}), stale...).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	// a session answered or completed since the pluck no longer matches
	res := r.applySpecifications(db, append(stale, specification.ByIDs{IDs: ids})...).Delete(&model.Session{})
	if res.Error != nil {
		return 0, res.Error
	}

	// answers go only with sessions that are actually gone
	err := r.applySpecifications(db,
		specification.BySessionIDs{SessionIDs: ids},
		specification.Orphaned{},
	).Delete(&model.Answer{}).Error
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Session, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

type sessionWithCount struct {
	model.Session
	AnswerCount int64
}

func (r *SessionRepositoryImpl) FindAllWithAnswerCount(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionListItem, error) {
	var rows []sessionWithCount
	query := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Select("sessions.*, (SELECT COUNT(*) FROM answers WHERE answers.session_id = sessions.id) AS answer_count")
	query = r.applySpecifications(query, specs...)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]*entity.SessionListItem, len(rows))
	for i := range rows {
		items[i] = &entity.SessionListItem{
			Session:     *r.mapper.SessionToEntity(&rows[i].Session),
			AnswerCount: rows[i].AnswerCount,
		}
	}
	return items, nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Session{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
