package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kelasid/ruangkelas-backend/internal/llm"
	"github.com/kelasid/ruangkelas-backend/internal/model"
	"github.com/kelasid/ruangkelas-backend/internal/response"
	"github.com/kelasid/ruangkelas-backend/internal/service"
	"github.com/kelasid/ruangkelas-backend/internal/store"
	"github.com/kelasid/ruangkelas-backend/internal/validator"
)

// QuizHandler handles quiz lifecycle endpoints.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// GenerateQuiz godoc
// POST /api/v1/quizzes
// Generates a quiz from a topic plus optional prior student questions.
// The response carries the question set without answer keys.
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	var req model.GenerateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Generate(c.Request.Context(), req.Topic, req.StudentQuestions, req.RoomName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		case errors.Is(err, service.ErrInvalidFormat):
			response.Fail(c, http.StatusBadGateway, response.ErrGenerationInvalidFormat)
		case errors.Is(err, llm.ErrUpstream):
			response.Fail(c, http.StatusBadGateway, response.ErrAIUpstream)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"quiz_id":   quiz.ID,
		"room_name": quiz.RoomName,
		"topic":     quiz.Topic,
		"questions": quiz.StudentView(),
	})
}

// GetQuiz godoc
// GET /api/v1/quizzes/:quiz_id
// Returns the question set without answer keys.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, views, err := h.quizService.GetQuestions(c.Param("quiz_id"))
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"quiz_id":   quiz.ID,
		"room_name": quiz.RoomName,
		"topic":     quiz.Topic,
		"questions": views,
	})
}

// SubmitQuiz godoc
// POST /api/v1/quizzes/:quiz_id/submissions
// Grades one student's answers and returns the per-question review.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.quizService.Submit(c.Request.Context(), c.Param("quiz_id"), req.StudentName, req.Answers)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"submission": result})
}

// GetQuizResults godoc
// GET /api/v1/quizzes/:quiz_id/results
// Returns the owning teacher's view: answer keys, submissions, statistics.
func (h *QuizHandler) GetQuizResults(c *gin.Context) {
	results, err := h.quizService.Results(c.Param("quiz_id"))
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// ListRoomQuizzes godoc
// GET /api/v1/rooms/:room_name/quizzes
// Lists a room's quizzes with pagination, newest first.
func (h *QuizHandler) ListRoomQuizzes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	all := h.quizService.ListRoomQuizzes(c.Param("room_name"))

	total := len(all)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": all[start:end]}, pagination)
}

func (h *QuizHandler) failQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
	case errors.Is(err, service.ErrMissingField):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
