package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kelasid/ruangkelas-backend/internal/llm"
	"github.com/kelasid/ruangkelas-backend/internal/model"
	"github.com/kelasid/ruangkelas-backend/internal/response"
	"github.com/kelasid/ruangkelas-backend/internal/service"
	"github.com/kelasid/ruangkelas-backend/internal/validator"
)

// AssistHandler handles the single-shot AI helper endpoints.
type AssistHandler struct {
	assistService *service.AssistService
}

// NewAssistHandler creates a new AssistHandler.
func NewAssistHandler(assistService *service.AssistService) *AssistHandler {
	return &AssistHandler{assistService: assistService}
}

// AnswerQuestion godoc
// POST /api/v1/assist/answer
func (h *AssistHandler) AnswerQuestion(c *gin.Context) {
	var req model.AnswerQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.assistService.AnswerQuestion(c.Request.Context(), req.Question, req.LessonContext)
	if err != nil {
		h.failAssistError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// ExtractQuestions godoc
// POST /api/v1/assist/extract-questions
func (h *AssistHandler) ExtractQuestions(c *gin.Context) {
	var req model.ExtractQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.assistService.ExtractQuestions(c.Request.Context(), req.Transcript)
	if err != nil {
		h.failAssistError(c, err)
		return
	}
	if questions == nil {
		questions = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Summarize godoc
// POST /api/v1/assist/summary
func (h *AssistHandler) Summarize(c *gin.Context) {
	var req model.SummarizeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	summary, err := h.assistService.Summarize(c.Request.Context(), req.Transcript, req.Topic)
	if err != nil {
		h.failAssistError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

func (h *AssistHandler) failAssistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFormat):
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationInvalidFormat)
	case errors.Is(err, llm.ErrUpstream):
		response.Fail(c, http.StatusBadGateway, response.ErrAIUpstream)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
