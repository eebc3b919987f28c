package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/config"
	"github.com/kelasid/ruangkelas-backend/internal/llm"
	"github.com/kelasid/ruangkelas-backend/internal/model"
	"github.com/kelasid/ruangkelas-backend/internal/store"
)

// Quiz service errors.
var (
	// ErrMissingField signals a caller error: a required argument was empty.
	ErrMissingField = errors.New("required field is empty")
	// ErrInvalidFormat signals that the collaborator's response does not
	// match the expected JSON shape. The quiz is never stored.
	ErrInvalidFormat = errors.New("generation response has invalid format")
)

const quizSystemPrompt = `You are a quiz generator for a classroom session. ` +
	`Respond with ONLY a JSON array, no prose and no Markdown fence. ` +
	`The array must contain 5 to 10 objects, each with exactly these fields: ` +
	`"question" (string), "options" (array of exactly 4 strings), ` +
	`"correctAnswer" (integer 0-3, the index of the correct option).`

// QuizService implements the quiz lifecycle: generation, grading, and
// aggregation over the in-memory store.
type QuizService struct {
	store       *store.QuizStore
	completer   llm.Completer
	rdb         *redis.Client
	log         zerolog.Logger
	temperature float64
}

// NewQuizService creates a new QuizService. rdb may be nil; submission events
// are then simply not published.
func NewQuizService(quizStore *store.QuizStore, completer llm.Completer, rdb *redis.Client, log zerolog.Logger, temperature float64) *QuizService {
	return &QuizService{
		store:       quizStore,
		completer:   completer,
		rdb:         rdb,
		log:         log.With().Str("component", "quiz_service").Logger(),
		temperature: temperature,
	}
}

// candidateQuestion is the strict decode target for one collaborator-produced
// question. Pointer fields make absent keys detectable.
type candidateQuestion struct {
	Question      *string  `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
}

// Generate asks the collaborator for a question set on the given topic,
// validates the shape, and stores the resulting quiz. A failed generation
// never creates a quiz record.
func (s *QuizService) Generate(ctx context.Context, topic string, studentQuestions []string, roomName string) (*model.Quiz, error) {
	if strings.TrimSpace(topic) == "" || strings.TrimSpace(roomName) == "" {
		return nil, fmt.Errorf("%w: topic and room_name are required", ErrMissingField)
	}

	raw, err := s.completer.Complete(ctx, quizSystemPrompt, buildQuizUserPrompt(topic, studentQuestions), s.temperature)
	if err != nil {
		return nil, fmt.Errorf("complete quiz generation: %w", err)
	}

	questions, err := parseGeneratedQuestions(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("topic", topic).Msg("Rejected malformed generation response")
		return nil, err
	}

	quiz := &model.Quiz{
		ID:        uuid.New().String(),
		RoomName:  roomName,
		Topic:     topic,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Put(quiz); err != nil {
		return nil, fmt.Errorf("store quiz: %w", err)
	}

	s.log.Info().
		Str("quiz_id", quiz.ID).
		Str("room", roomName).
		Int("questions", len(questions)).
		Msg("Quiz generated")

	return quiz, nil
}

// buildQuizUserPrompt combines the topic with questions students asked during
// the session so generated items lean on what was actually discussed.
func buildQuizUserPrompt(topic string, studentQuestions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a multiple-choice quiz about: %s.", topic)
	if len(studentQuestions) > 0 {
		b.WriteString("\nBase some questions on what students asked during the session:")
		for _, q := range studentQuestions {
			fmt.Fprintf(&b, "\n- %s", q)
		}
	}
	return b.String()
}

// parseGeneratedQuestions strips any code fence and decodes the response into
// validated questions. Every shape violation is ErrInvalidFormat: the policy
// is reject, never coerce.
func parseGeneratedQuestions(raw string) ([]model.Question, error) {
	cleaned := llm.StripCodeFence(raw)

	var candidates []candidateQuestion
	if err := json.Unmarshal([]byte(cleaned), &candidates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: empty question array", ErrInvalidFormat)
	}

	questions := make([]model.Question, 0, len(candidates))
	for i, c := range candidates {
		if c.Question == nil || strings.TrimSpace(*c.Question) == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrInvalidFormat, i)
		}
		if len(c.Options) != 4 {
			return nil, fmt.Errorf("%w: question %d has %d options, want 4", ErrInvalidFormat, i, len(c.Options))
		}
		if c.CorrectAnswer == nil || *c.CorrectAnswer < 0 || *c.CorrectAnswer > 3 {
			return nil, fmt.Errorf("%w: question %d has an out-of-range correctAnswer", ErrInvalidFormat, i)
		}
		questions = append(questions, model.Question{
			Text:               *c.Question,
			Options:            c.Options,
			CorrectAnswerIndex: *c.CorrectAnswer,
		})
	}
	return questions, nil
}

// Submit grades one student's answers against the stored answer key, appends
// the submission, and returns the per-question review. Answers shorter or
// longer than the question set are legal; missing entries grade as incorrect.
func (s *QuizService) Submit(ctx context.Context, quizID, studentName string, answers []int) (*model.SubmissionResult, error) {
	if strings.TrimSpace(quizID) == "" || strings.TrimSpace(studentName) == "" {
		return nil, fmt.Errorf("%w: quiz_id and student_name are required", ErrMissingField)
	}

	quiz, err := s.store.Get(quizID)
	if err != nil {
		return nil, err
	}

	total := len(quiz.Questions)
	correct := 0
	reviews := make([]model.AnswerReview, 0, total)

	for i, question := range quiz.Questions {
		studentAnswer := model.AnswerNone
		if i < len(answers) {
			studentAnswer = answers[i]
		}
		isCorrect := studentAnswer == question.CorrectAnswerIndex
		if isCorrect {
			correct++
		}
		reviews = append(reviews, model.AnswerReview{
			QuestionIndex: i,
			QuestionText:  question.Text,
			StudentAnswer: studentAnswer,
			CorrectAnswer: question.CorrectAnswerIndex,
			IsCorrect:     isCorrect,
		})
	}

	score := roundedPercent(correct, total)

	sub := model.Submission{
		StudentName:    studentName,
		Answers:        answers,
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		SubmittedAt:    time.Now().UTC(),
	}

	count, err := s.store.AppendSubmission(quizID, sub)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("quiz_id", quizID).
		Str("student", studentName).
		Int("score", score).
		Int("correct", correct).
		Int("total", total).
		Msg("Submission graded")

	s.publishSubmissionEvent(ctx, quizID, sub, count)

	return &model.SubmissionResult{
		QuizID:         quizID,
		StudentName:    studentName,
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Results:        reviews,
	}, nil
}

// Results computes the owning teacher's view with answer keys, every
// submission, and aggregate statistics. Pure read.
func (s *QuizService) Results(quizID string) (*model.QuizResultsView, error) {
	quiz, err := s.store.Get(quizID)
	if err != nil {
		return nil, err
	}

	stats := model.QuizStats{TotalSubmissions: len(quiz.Submissions)}
	if len(quiz.Submissions) > 0 {
		sum := 0
		stats.HighestScore = quiz.Submissions[0].Score
		stats.LowestScore = quiz.Submissions[0].Score
		for _, sub := range quiz.Submissions {
			sum += sub.Score
			if sub.Score > stats.HighestScore {
				stats.HighestScore = sub.Score
			}
			if sub.Score < stats.LowestScore {
				stats.LowestScore = sub.Score
			}
		}
		stats.AverageScore = int(math.Round(float64(sum) / float64(len(quiz.Submissions))))
	}

	return &model.QuizResultsView{
		QuizID:      quiz.ID,
		RoomName:    quiz.RoomName,
		Topic:       quiz.Topic,
		CreatedAt:   quiz.CreatedAt,
		Questions:   quiz.Questions,
		Submissions: quiz.Submissions,
		Stats:       stats,
	}, nil
}

// GetQuestions returns the student-facing question set (no answer keys).
func (s *QuizService) GetQuestions(quizID string) (*model.Quiz, []model.QuestionView, error) {
	quiz, err := s.store.Get(quizID)
	if err != nil {
		return nil, nil, err
	}
	return &quiz, quiz.StudentView(), nil
}

// ListRoomQuizzes returns summaries of every quiz in a room, newest first.
func (s *QuizService) ListRoomQuizzes(roomName string) []model.QuizSummary {
	quizzes := s.store.ListByRoom(roomName)
	summaries := make([]model.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		summaries = append(summaries, model.QuizSummary{
			ID:              q.ID,
			Topic:           q.Topic,
			QuestionCount:   len(q.Questions),
			SubmissionCount: len(q.Submissions),
			CreatedAt:       q.CreatedAt,
		})
	}
	return summaries
}

// publishSubmissionEvent notifies the live monitor channel. Best-effort: a
// failed publish never fails the submission.
func (s *QuizService) publishSubmissionEvent(ctx context.Context, quizID string, sub model.Submission, totalSubmissions int) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"quiz_id":           quizID,
		"student_name":      sub.StudentName,
		"score":             sub.Score,
		"correct_count":     sub.CorrectCount,
		"total_questions":   sub.TotalQuestions,
		"total_submissions": totalSubmissions,
		"submitted_at":      sub.SubmittedAt,
	})
	if err != nil {
		return
	}

	if err := s.rdb.Publish(ctx, config.CacheKey.QuizMonitorChannel(quizID), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID).Msg("Submission event publish failed")
	}
}

// roundedPercent converts a correct/total ratio into an integer percentage,
// rounding half away from zero. A zero total grades to 0.
func roundedPercent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
