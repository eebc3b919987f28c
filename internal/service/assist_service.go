package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/llm"
)

const (
	answerSystemPrompt = `You are a helpful teaching assistant in a live ` +
		`classroom video session. Answer the student's question clearly and ` +
		`concisely. When lesson context is provided, ground your answer in it.`

	extractSystemPrompt = `You extract questions that students asked from a ` +
		`speech transcript of a classroom session. Respond with ONLY a JSON ` +
		`array of strings, one per question, no prose and no Markdown fence. ` +
		`Respond with [] if the transcript contains no questions.`

	summarySystemPrompt = `You summarize classroom video sessions for ` +
		`teachers. Produce a short structured summary: topics covered, ` +
		`student questions, and suggested follow-ups.`
)

// AssistService proxies single-shot AI helpers: answering questions,
// extracting questions from transcripts, and summarizing sessions. It holds
// no state; every call is a pass-through to the collaborator.
type AssistService struct {
	completer   llm.Completer
	log         zerolog.Logger
	temperature float64
}

// NewAssistService creates a new AssistService.
func NewAssistService(completer llm.Completer, log zerolog.Logger, temperature float64) *AssistService {
	return &AssistService{
		completer:   completer,
		log:         log.With().Str("component", "assist_service").Logger(),
		temperature: temperature,
	}
}

// AnswerQuestion answers a student question, optionally grounded in the
// lesson context so far.
func (s *AssistService) AnswerQuestion(ctx context.Context, question, lessonContext string) (string, error) {
	prompt := question
	if strings.TrimSpace(lessonContext) != "" {
		prompt = fmt.Sprintf("Lesson context:\n%s\n\nQuestion: %s", lessonContext, question)
	}

	answer, err := s.completer.Complete(ctx, answerSystemPrompt, prompt, s.temperature)
	if err != nil {
		return "", fmt.Errorf("complete answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// ExtractQuestions pulls student questions out of a raw speech transcript.
// An empty array is a valid outcome: not every transcript contains questions.
func (s *AssistService) ExtractQuestions(ctx context.Context, transcript string) ([]string, error) {
	raw, err := s.completer.Complete(ctx, extractSystemPrompt, transcript, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("complete extraction: %w", err)
	}

	cleaned := llm.StripCodeFence(raw)
	var questions []string
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		s.log.Warn().Err(err).Msg("Rejected malformed extraction response")
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return questions, nil
}

// Summarize produces a session summary from a transcript.
func (s *AssistService) Summarize(ctx context.Context, transcript, topic string) (string, error) {
	prompt := transcript
	if strings.TrimSpace(topic) != "" {
		prompt = fmt.Sprintf("Session topic: %s\n\nTranscript:\n%s", topic, transcript)
	}

	summary, err := s.completer.Complete(ctx, summarySystemPrompt, prompt, s.temperature)
	if err != nil {
		return "", fmt.Errorf("complete summary: %w", err)
	}
	return strings.TrimSpace(summary), nil
}
