package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lola-discovery-be/internal/dto"
	"lola-discovery-be/internal/pkg/logger"
	"lola-discovery-be/internal/pkg/metrics"
	"lola-discovery-be/internal/pkg/ratelimit"
	"lola-discovery-be/internal/pkg/serverutils"
	"lola-discovery-be/internal/repository/unitofwork"
	"lola-discovery-be/internal/service"
	"lola-discovery-be/pkg/database"
	"lola-discovery-be/pkg/flow"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionService struct {
	lastClient  dto.ClientInfo
	lastAnswer  *dto.SubmitAnswerRequest
	submitErr   error
	completed   bool
	deleted     []uuid.UUID
	cleanupMins int
}

func (f *fakeSessionService) Start(_ context.Context, client dto.ClientInfo) (*dto.StartSessionResponse, error) {
	f.lastClient = client
	return &dto.StartSessionResponse{
		SessionId: uuid.New(),
		Question:  &flow.QuestionView{ID: "business_name", InputType: flow.InputText},
		Progress:  flow.NewProgress(0, 3),
	}, nil
}

func (f *fakeSessionService) SubmitAnswer(_ context.Context, _ uuid.UUID, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	f.lastAnswer = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if f.completed {
		return &dto.SubmitAnswerResponse{Completed: true, Message: flow.DefaultCompletionMessage}, nil
	}
	p := flow.NewProgress(1, 3)
	return &dto.SubmitAnswerResponse{Question: &flow.QuestionView{ID: "vertical"}, Progress: &p}, nil
}

func (f *fakeSessionService) GetSummary(_ context.Context, id uuid.UUID) (*dto.SessionSummaryResponse, error) {
	return nil, flow.ErrSessionNotFound
}

func (f *fakeSessionService) DeleteSession(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSessionService) CleanupStale(_ context.Context, minutes int) (int64, error) {
	f.cleanupMins = minutes
	if minutes < 1 {
		return 0, &flow.ValidationError{Reason: "Threshold must be at least 1 minute"}
	}
	return 4, nil
}

func newTestApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	register(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestSessionController_Start(t *testing.T) {
	svc := &fakeSessionService{}
	app := newTestApp(NewSessionController(svc).RegisterRoutes)

	resp, body := doJSON(t, app, http.MethodPost, "/api/session/start", "", map[string]string{
		fiber.HeaderXForwardedFor: "203.0.113.7, 10.0.0.1",
		fiber.HeaderUserAgent:     "lola-test",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "203.0.113.7", svc.lastClient.IpAddress)
	assert.Equal(t, "lola-test", svc.lastClient.UserAgent)

	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["session_id"])
	assert.Equal(t, "business_name", data["question"].(map[string]interface{})["id"])
}

func TestSessionController_SubmitAnswer(t *testing.T) {
	svc := &fakeSessionService{}
	app := newTestApp(NewSessionController(svc).RegisterRoutes)
	path := "/api/session/" + uuid.NewString() + "/answer"

	resp, body := doJSON(t, app, http.MethodPost, path, `{"question_id":"business_name","answer":"Acme"}`, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Answer accepted", body["message"])
	assert.JSONEq(t, `"Acme"`, string(svc.lastAnswer.Answer))

	resp, body = doJSON(t, app, http.MethodPost, path, `{"answer":"Acme"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "QuestionId is required", body["message"])

	resp, body = doJSON(t, app, http.MethodPost, path, `{"question_id":"business_name"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", body["message"])

	// an explicit null reaches the service and is judged per question
	svc.lastAnswer = nil
	resp, _ = doJSON(t, app, http.MethodPost, path, `{"question_id":"anything_else","answer":null}`, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, svc.lastAnswer)
	assert.Equal(t, "null", string(svc.lastAnswer.Answer))

	resp, _ = doJSON(t, app, http.MethodPost, path, `{not json`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/session/not-a-uuid/answer", `{"question_id":"x","answer":"y"}`, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	svc.completed = true
	_, body = doJSON(t, app, http.MethodPost, path, `{"question_id":"priorities","answer":["a"]}`, nil)
	assert.Equal(t, "Questionnaire completed", body["message"])
}

func TestSessionController_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{flow.ErrSessionNotFound, fiber.StatusNotFound},
		{flow.ErrSessionAlreadyCompleted, fiber.StatusConflict},
		{flow.ErrInvalidQuestion, fiber.StatusBadRequest},
		{&flow.ValidationError{Reason: "This field is required"}, fiber.StatusBadRequest},
		{flow.ErrFlowConfig, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &fakeSessionService{submitErr: tc.err}
			app := newTestApp(NewSessionController(svc).RegisterRoutes)

			resp, body := doJSON(t, app, http.MethodPost, "/api/session/"+uuid.NewString()+"/answer",
				`{"question_id":"business_name","answer":""}`, nil)
			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			if tc.code == fiber.StatusInternalServerError {
				assert.Equal(t, "Internal server error", body["message"])
			}
		})
	}
}

func TestSessionController_SummaryAndDelete(t *testing.T) {
	svc := &fakeSessionService{}
	app := newTestApp(NewSessionController(svc).RegisterRoutes)
	id := uuid.New()

	resp, _ := doJSON(t, app, http.MethodGet, "/api/session/"+id.String()+"/summary", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/session/summary/"+id.String(), "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodDelete, "/api/session/"+id.String(), "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []uuid.UUID{id}, svc.deleted)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/session/garbage", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, svc.deleted, 1)
}

func TestSessionController_StartIgnoresBodyAddress(t *testing.T) {
	db, err := database.NewGormDB(database.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	graph, err := flow.LoadFile("../../pkg/flow/testdata/flow.json")
	require.NoError(t, err)

	svc := service.NewSessionService(
		graph,
		unitofwork.NewRepositoryFactory(db),
		ratelimit.NewLimiter(nil, 1, time.Hour),
		nil,
		metrics.NewFlowMetrics(),
		logger.NewNopLogger(),
		service.SessionOptions{},
	)
	app := newTestApp(NewSessionController(svc).RegisterRoutes)
	headers := map[string]string{fiber.HeaderXForwardedFor: "198.51.100.4"}

	var codes []int
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/session/start", `{"ip_address":"`+ip+`"}`, headers)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{
		fiber.StatusCreated,
		fiber.StatusTooManyRequests,
		fiber.StatusTooManyRequests,
		fiber.StatusTooManyRequests,
	}, codes)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/session/start", "", map[string]string{
		fiber.HeaderXForwardedFor: "198.51.100.5",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
