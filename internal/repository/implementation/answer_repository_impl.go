package implementation

import (
	"context"
	"errors"

	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/mapper"
	"lola-discovery-be/internal/model"
	"lola-discovery-be/internal/repository/contract"
	"lola-discovery-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewAnswerRepository(db *gorm.DB) contract.AnswerRepository {
	return &AnswerRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *AnswerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnswerRepositoryImpl) Upsert(ctx context.Context, answer *entity.Answer) error {
	m := r.mapper.AnswerToModel(answer)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"question_text", "input_type", "value", "payload", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*answer = *r.mapper.AnswerToEntity(m)
	return nil
}

func (r *AnswerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Answer, error) {
	var m model.Answer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AnswerToEntity(&m), nil
}

func (r *AnswerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Answer, error) {
	var models []*model.Answer
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.AnswersToEntities(models), nil
}

func (r *AnswerRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Answer{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
