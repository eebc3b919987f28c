package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/llm"
)

func newAssistService(completer llm.Completer) *AssistService {
	return NewAssistService(completer, zerolog.Nop(), 0.7)
}

func TestAnswerQuestion(t *testing.T) {
	completer := &fakeCompleter{response: "  Klorofil menyerap cahaya.  "}
	svc := newAssistService(completer)

	answer, err := svc.AnswerQuestion(context.Background(), "Mengapa daun hijau?", "")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "Klorofil menyerap cahaya." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if completer.lastUser != "Mengapa daun hijau?" {
		t.Fatalf("unexpected prompt %q", completer.lastUser)
	}
}

func TestAnswerQuestionWithContext(t *testing.T) {
	completer := &fakeCompleter{response: "jawaban"}
	svc := newAssistService(completer)

	if _, err := svc.AnswerQuestion(context.Background(), "Apa itu ATP?", "Kita membahas respirasi sel."); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !strings.Contains(completer.lastUser, "respirasi sel") || !strings.Contains(completer.lastUser, "Apa itu ATP?") {
		t.Fatalf("context missing from prompt: %q", completer.lastUser)
	}
}

func TestExtractQuestions(t *testing.T) {
	svc := newAssistService(&fakeCompleter{
		response: "```json\n[\"Mengapa daun hijau?\",\"Apa itu klorofil?\"]\n```",
	})

	questions, err := svc.ExtractQuestions(context.Background(), "transkrip sesi")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(questions) != 2 || questions[0] != "Mengapa daun hijau?" {
		t.Fatalf("unexpected questions: %v", questions)
	}
}

func TestExtractQuestionsEmptyArray(t *testing.T) {
	svc := newAssistService(&fakeCompleter{response: "[]"})

	questions, err := svc.ExtractQuestions(context.Background(), "tidak ada pertanyaan di sini")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(questions) != 0 {
		t.Fatalf("expected no questions, got %v", questions)
	}
}

func TestExtractQuestionsInvalidShape(t *testing.T) {
	svc := newAssistService(&fakeCompleter{response: `{"questions":["a"]}`})

	if _, err := svc.ExtractQuestions(context.Background(), "transkrip"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestAssistUpstreamFailure(t *testing.T) {
	svc := newAssistService(&fakeCompleter{err: fmt.Errorf("%w: timeout", llm.ErrUpstream)})

	if _, err := svc.AnswerQuestion(context.Background(), "q", ""); !errors.Is(err, llm.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if _, err := svc.ExtractQuestions(context.Background(), "t"); !errors.Is(err, llm.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if _, err := svc.Summarize(context.Background(), "t", ""); !errors.Is(err, llm.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestSummarizeIncludesTopic(t *testing.T) {
	completer := &fakeCompleter{response: "ringkasan sesi"}
	svc := newAssistService(completer)

	summary, err := svc.Summarize(context.Background(), "transkrip panjang", "Fotosintesis")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary != "ringkasan sesi" {
		t.Fatalf("unexpected summary %q", summary)
	}
	if !strings.Contains(completer.lastUser, "Fotosintesis") {
		t.Fatalf("topic missing from prompt: %q", completer.lastUser)
	}
}
