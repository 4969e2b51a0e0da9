package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ssc-prep/mocktest-backend/internal/engine"
	"github.com/ssc-prep/mocktest-backend/internal/middleware"
	"github.com/ssc-prep/mocktest-backend/internal/model"
	"github.com/ssc-prep/mocktest-backend/internal/response"
	"github.com/ssc-prep/mocktest-backend/internal/service"
	"github.com/ssc-prep/mocktest-backend/internal/validator"
)

// AttemptHandler exposes the mock test attempt operations to the host UI.
type AttemptHandler struct {
	attempts *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// identity extracts the authenticated user and the test id from the request.
func identity(c *gin.Context) (userID, testID string, ok bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return "", "", false
	}
	testID = c.Param("test_id")
	if testID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", "", false
	}
	return claims.UserID, testID, true
}

// failFromErr maps service and engine errors onto API error codes.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestUnavailable):
		response.Fail(c, http.StatusBadGateway, response.ErrTestUnavailable)
	case errors.Is(err, engine.ErrAlreadyStarted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptAlreadyStarted)
	case errors.Is(err, engine.ErrNotActive):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotActive)
	case errors.Is(err, engine.ErrNotPaused):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotPaused)
	case errors.Is(err, engine.ErrNotCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotCompleted)
	case errors.Is(err, engine.ErrNotSubmittable):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotSubmittable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// Start godoc
// POST /api/v1/attempts/:test_id/start
// Begins the attempt in the requested display language.
func (h *AttemptHandler) Start(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.Start(c.Request.Context(), userID, testID, req.Language)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Pause godoc
// POST /api/v1/attempts/:test_id/pause
func (h *AttemptHandler) Pause(c *gin.Context) {
	h.transition(c, h.attempts.Pause)
}

// Resume godoc
// POST /api/v1/attempts/:test_id/resume
func (h *AttemptHandler) Resume(c *gin.Context) {
	h.transition(c, h.attempts.Resume)
}

// Next godoc
// POST /api/v1/attempts/:test_id/next
func (h *AttemptHandler) Next(c *gin.Context) {
	h.transition(c, h.attempts.Next)
}

// Previous godoc
// POST /api/v1/attempts/:test_id/previous
func (h *AttemptHandler) Previous(c *gin.Context) {
	h.transition(c, h.attempts.Previous)
}

// Review godoc
// POST /api/v1/attempts/:test_id/review
// Enters the post-completion read-only walk-through.
func (h *AttemptHandler) Review(c *gin.Context) {
	h.transition(c, h.attempts.EnterReview)
}

// Reset godoc
// POST /api/v1/attempts/:test_id/reset
// Clears a finished attempt so the test can be taken again.
func (h *AttemptHandler) Reset(c *gin.Context) {
	h.transition(c, h.attempts.Reset)
}

func (h *AttemptHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, userID, testID string) (engine.State, error),
) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	state, err := op(c.Request.Context(), userID, testID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Answer godoc
// POST /api/v1/attempts/:test_id/answer
// Records a selected option; overwrites any prior answer for that question.
func (h *AttemptHandler) Answer(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.Answer(c.Request.Context(), userID, testID, req.QuestionID, req.SelectedOption)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// GoTo godoc
// POST /api/v1/attempts/:test_id/goto
// Jumps to a question index; out-of-range values are clamped.
func (h *AttemptHandler) GoTo(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	var req model.GoToRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.GoTo(c.Request.Context(), userID, testID, req.Index)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// SwitchLanguage godoc
// POST /api/v1/attempts/:test_id/language
func (h *AttemptHandler) SwitchLanguage(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	var req model.SwitchLanguageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.attempts.SwitchLanguage(c.Request.Context(), userID, testID, req.Language)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/attempts/:test_id/submit
// Finishes the attempt and returns the full result.
func (h *AttemptHandler) Submit(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	result, err := h.attempts.Submit(c.Request.Context(), userID, testID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// State godoc
// GET /api/v1/attempts/:test_id/state
// Returns the live attempt view. This is the page-reload path: a persisted
// in-progress attempt is recovered here.
func (h *AttemptHandler) State(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	state, err := h.attempts.State(c.Request.Context(), userID, testID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Paper godoc
// GET /api/v1/attempts/:test_id/paper
// Returns the question set. Correct answers and solutions appear only after
// the attempt completes.
func (h *AttemptHandler) Paper(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	questions, err := h.attempts.Paper(c.Request.Context(), userID, testID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Results godoc
// GET /api/v1/attempts/:test_id/results
func (h *AttemptHandler) Results(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	result, err := h.attempts.Results(c.Request.Context(), userID, testID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// SectionScores godoc
// GET /api/v1/attempts/:test_id/results/sections
func (h *AttemptHandler) SectionScores(c *gin.Context) {
	userID, testID, ok := identity(c)
	if !ok {
		return
	}

	scores, err := h.attempts.SectionScores(c.Request.Context(), userID, testID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sections": scores})
}
