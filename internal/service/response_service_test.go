package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"lola-discovery-be/internal/dto"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/pkg/flow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSessions(t *testing.T, f *serviceFixture) (completed, partial uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	a, err := f.svc.Start(ctx, dto.ClientInfo{IpAddress: "10.0.0.1"})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, a.SessionId, answer("business_name", `"Acme, Inc."`))
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, a.SessionId, answer("vertical", `"Retail"`))
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, a.SessionId, answer("priorities", `["Growth","Cost","Retention"]`))
	require.NoError(t, err)

	b, err := f.svc.Start(ctx, dto.ClientInfo{IpAddress: "10.0.0.2"})
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, b.SessionId, answer("business_name", `"Beta"`))
	require.NoError(t, err)

	return a.SessionId, b.SessionId
}

func TestResponseService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, SessionOptions{})
	completed, partial := seedSessions(t, f)
	svc := NewResponseService(f.factory, f.svc.staging, logger.NewNopLogger())

	res, err := svc.List(ctx, &dto.AdminResponseListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PerPage)
	assert.Equal(t, 1, res.TotalPages)
	require.Len(t, res.Responses, 2)

	counts := map[uuid.UUID]int64{}
	for _, r := range res.Responses {
		counts[r.SessionId] = r.AnswerCount
	}
	assert.Equal(t, int64(3), counts[completed])
	assert.Equal(t, int64(1), counts[partial])

	paged, err := svc.List(ctx, &dto.AdminResponseListRequest{Page: 2, PerPage: 1})
	require.NoError(t, err)
	assert.Len(t, paged.Responses, 1)
	assert.Equal(t, 2, paged.TotalPages)

	capped, err := svc.List(ctx, &dto.AdminResponseListRequest{PerPage: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, capped.PerPage)
}

func TestResponseService_Show(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, SessionOptions{})
	completed, _ := seedSessions(t, f)
	svc := NewResponseService(f.factory, f.svc.staging, logger.NewNopLogger())

	detail, err := svc.Show(ctx, completed)
	require.NoError(t, err)
	assert.Equal(t, "completed", detail.Status)
	assert.Equal(t, "10.0.0.1", detail.IpAddress)
	require.Len(t, detail.Answers, 3)
	assert.Equal(t, []string{"Growth", "Cost", "Retention"}, detail.Answers[2].Answer)
	assert.Equal(t, "1. Growth, 2. Cost, 3. Retention", detail.Answers[2].RawAnswer)

	_, err = svc.Show(ctx, uuid.New())
	assert.ErrorIs(t, err, flow.ErrSessionNotFound)
}

func TestResponseService_DeleteAnyStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, SessionOptions{})
	completed, partial := seedSessions(t, f)
	svc := NewResponseService(f.factory, f.svc.staging, logger.NewNopLogger())

	require.NoError(t, svc.Delete(ctx, completed))
	require.NoError(t, svc.Delete(ctx, partial))
	assert.Equal(t, int64(0), f.sessionCount(t))
	assert.Equal(t, int64(0), f.answerCount(t, completed))

	assert.ErrorIs(t, svc.Delete(ctx, completed), flow.ErrSessionNotFound)
}

func TestResponseService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, SessionOptions{})
	completed, partial := seedSessions(t, f)

	// a stored session can only exist with answers, so stage one that has none
	empty, err := f.svc.Start(ctx, dto.ClientInfo{})
	require.NoError(t, err)

	svc := NewResponseService(f.factory, f.svc.staging, logger.NewNopLogger())

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, exportHeader, records[0])

	bySession := map[string][][]string{}
	for _, r := range records[1:] {
		require.Len(t, r, 6)
		bySession[r[0]] = append(bySession[r[0]], r)
	}
	require.Len(t, bySession[completed.String()], 3)
	assert.Equal(t, "Acme, Inc.", bySession[completed.String()][0][5])
	assert.Equal(t, "completed", bySession[completed.String()][0][1])
	require.Len(t, bySession[partial.String()], 1)
	assert.Equal(t, "in_progress", bySession[partial.String()][0][1])

	// staged sessions are not part of the stored responses
	assert.NotContains(t, bySession, empty.SessionId.String())
}

func TestResponseService_DeleteUnansweredSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, SessionOptions{})
	svc := NewResponseService(f.factory, f.svc.staging, logger.NewNopLogger())

	started, err := f.svc.Start(ctx, dto.ClientInfo{})
	require.NoError(t, err)
	_, err = f.svc.GetSummary(ctx, started.SessionId)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, started.SessionId))

	_, err = f.svc.GetSummary(ctx, started.SessionId)
	assert.ErrorIs(t, err, flow.ErrSessionNotFound)
	_, err = f.svc.SubmitAnswer(ctx, started.SessionId, answer("business_name", `"Acme"`))
	assert.ErrorIs(t, err, flow.ErrSessionNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, started.SessionId), flow.ErrSessionNotFound)
}
