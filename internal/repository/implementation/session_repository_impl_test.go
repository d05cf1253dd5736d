package implementation

import (
	"context"
	"testing"
	"time"

	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/model"
	"lola-discovery-be/internal/repository/specification"
	"lola-discovery-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(database.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func storeSession(t *testing.T, db *gorm.DB, status entity.SessionStatus, lastActivity time.Time, answers ...string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	session := &entity.Session{
		Id:             uuid.New(),
		Status:         status,
		CurrentNodeId:  "vertical",
		CreatedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}
	require.NoError(t, NewSessionRepository(db).Create(ctx, session))
	for _, q := range answers {
		require.NoError(t, NewAnswerRepository(db).Upsert(ctx, &entity.Answer{
			SessionId:  session.Id,
			QuestionId: q,
			InputType:  "text",
			Value:      "x",
			CreatedAt:  lastActivity,
			UpdatedAt:  lastActivity,
		}))
	}
	return session.Id
}

func answerCount(t *testing.T, db *gorm.DB, sessionId uuid.UUID) int64 {
	t.Helper()
	n, err := NewAnswerRepository(db).Count(context.Background(), specification.BySessionID{SessionID: sessionId})
	require.NoError(t, err)
	return n
}

func TestSessionRepository_DeleteStale(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	now := time.Now().UTC()
	old := now.Add(-2 * time.Hour)
	stale := storeSession(t, db, entity.SessionInProgress, old, "business_name", "vertical")
	completed := storeSession(t, db, entity.SessionCompleted, old, "business_name")
	fresh := storeSession(t, db, entity.SessionInProgress, now, "business_name")

	removed, err := repo.DeleteStale(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	gone, err := repo.FindOne(ctx, specification.ByID{ID: stale})
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, int64(0), answerCount(t, db, stale))

	assert.Equal(t, int64(1), answerCount(t, db, completed))
	assert.Equal(t, int64(1), answerCount(t, db, fresh))

	removed, err = repo.DeleteStale(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestSessionRepository_DeleteStaleKeepsAnswersOfSurvivors(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	now := time.Now().UTC()
	id := storeSession(t, db, entity.SessionInProgress, now.Add(-2*time.Hour), "business_name")

	// the row stops matching between the candidate lookup and the delete
	var touched bool
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:touch", func(tx *gorm.DB) {
		if touched || tx.Statement.Table != "sessions" {
			return
		}
		touched = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.Session{}).Where("id = ?", id).
			UpdateColumn("status", string(entity.SessionCompleted)).Error)
	}))

	removed, err := NewSessionRepository(db).DeleteStale(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, touched)
	assert.Equal(t, int64(0), removed)

	survivor, err := NewSessionRepository(db).FindOne(ctx, specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, survivor)
	assert.Equal(t, entity.SessionCompleted, survivor.Status)
	assert.Equal(t, int64(1), answerCount(t, db, id))
}

func TestSessionRepository_DeleteWithPredicate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	inProgress := specification.ByStatus{Status: string(entity.SessionInProgress)}
	completed := storeSession(t, db, entity.SessionCompleted, time.Now().UTC(), "business_name")

	deleted, err := repo.Delete(ctx, completed, inProgress)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, int64(1), answerCount(t, db, completed))

	deleted, err = repo.Delete(ctx, completed)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, int64(0), answerCount(t, db, completed))

	deleted, err = repo.Delete(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
}
