package serverutils

import (
	"errors"
	"fmt"
	"testing"

	"lola-discovery-be/pkg/flow"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", flow.ErrSessionNotFound, fiber.StatusNotFound},
		{"completed", flow.ErrSessionAlreadyCompleted, fiber.StatusConflict},
		{"wrapped invalid question", fmt.Errorf("%w: %q", flow.ErrInvalidQuestion, "x"), fiber.StatusBadRequest},
		{"out of order", flow.ErrQuestionOutOfOrder, fiber.StatusBadRequest},
		{"validation", &flow.ValidationError{Reason: "This field is required"}, fiber.StatusBadRequest},
		{"rate limited", flow.ErrRateLimited, fiber.StatusTooManyRequests},
		{"fiber error", fiber.NewError(fiber.StatusUnprocessableEntity, "bad body"), fiber.StatusUnprocessableEntity},
		{"flow config", fmt.Errorf("%w: too many hops", flow.ErrFlowConfig), fiber.StatusInternalServerError},
		{"storage", errors.New("storage: commit: connection reset"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

type createRequest struct {
	QuestionId string `json:"question_id" validate:"required,max=5"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(createRequest{QuestionId: "q1"}))

	err := ValidateRequest(createRequest{})
	var fe *fiber.Error
	if assert.True(t, errors.As(err, &fe)) {
		assert.Equal(t, fiber.StatusBadRequest, fe.Code)
		assert.Equal(t, "QuestionId is required", fe.Message)
	}

	err = ValidateRequest(createRequest{QuestionId: "toolong"})
	assert.EqualError(t, err, "QuestionId must be at most 5 characters")
}
