package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/config"
	"github.com/kelasid/ruangkelas-backend/internal/llm"
	"github.com/kelasid/ruangkelas-backend/internal/model"
	"github.com/kelasid/ruangkelas-backend/internal/store"
)

// fakeCompleter scripts the text-generation collaborator.
type fakeCompleter struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, userPrompt string, _ float64) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fiveQuestionJSON returns a well-formed response whose answer key is
// [0,1,1,3,2].
func fiveQuestionJSON() string {
	type q struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
	}
	key := []int{0, 1, 1, 3, 2}
	items := make([]q, 0, len(key))
	for i, k := range key {
		items = append(items, q{
			Question:      fmt.Sprintf("Pertanyaan %d tentang fotosintesis?", i+1),
			Options:       []string{"Opsi A", "Opsi B", "Opsi C", "Opsi D"},
			CorrectAnswer: k,
		})
	}
	raw, _ := json.Marshal(items)
	return string(raw)
}

func newQuizService(completer llm.Completer) (*QuizService, *store.QuizStore) {
	quizStore := store.NewQuizStore()
	return NewQuizService(quizStore, completer, nil, zerolog.Nop(), 0.7), quizStore
}

func mustGenerate(t *testing.T, svc *QuizService) *model.Quiz {
	t.Helper()
	quiz, err := svc.Generate(context.Background(), "Fotosintesis", nil, "room-a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return quiz
}

// Scenario A: a well-formed 5-question response creates a quiz with empty
// statistics.
func TestGenerateWellFormed(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	if len(quiz.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(quiz.Questions))
	}
	if quiz.ID == "" || quiz.RoomName != "room-a" || quiz.Topic != "Fotosintesis" {
		t.Fatalf("unexpected quiz metadata: %+v", quiz)
	}
	for i, q := range quiz.Questions {
		if len(q.Options) != 4 {
			t.Fatalf("question %d has %d options", i, len(q.Options))
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex > 3 {
			t.Fatalf("question %d key out of range: %d", i, q.CorrectAnswerIndex)
		}
	}

	results, err := svc.Results(quiz.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Stats.TotalSubmissions != 0 || results.Stats.AverageScore != 0 {
		t.Fatalf("expected zeroed stats, got %+v", results.Stats)
	}
}

func TestGeneratePromptIncludesStudentQuestions(t *testing.T) {
	completer := &fakeCompleter{response: fiveQuestionJSON()}
	svc, _ := newQuizService(completer)

	_, err := svc.Generate(context.Background(), "Fotosintesis", []string{"Mengapa daun hijau?"}, "room-a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if completer.lastUser == "" || !contains(completer.lastUser, "Mengapa daun hijau?") {
		t.Fatalf("student question missing from prompt: %q", completer.lastUser)
	}
	if !contains(completer.lastUser, "Fotosintesis") {
		t.Fatalf("topic missing from prompt: %q", completer.lastUser)
	}
}

// Scenario D: a code-fenced response still parses.
func TestGenerateStripsCodeFence(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{
		response: "```json\n" + fiveQuestionJSON() + "\n```",
	})
	quiz := mustGenerate(t, svc)
	if len(quiz.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(quiz.Questions))
	}
}

// Scenario E: a JSON object instead of an array is rejected and nothing is
// stored.
func TestGenerateRejectsNonArray(t *testing.T) {
	svc, quizStore := newQuizService(&fakeCompleter{
		response: `{"question":"x","options":["a","b","c","d"],"correctAnswer":1}`,
	})

	_, err := svc.Generate(context.Background(), "Fotosintesis", nil, "room-a")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if quizStore.Len() != 0 {
		t.Fatalf("quiz stored despite invalid format")
	}
}

func TestGenerateRejectsMalformedShapes(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "sorry, I cannot do that"},
		{"empty array", `[]`},
		{"three options", `[{"question":"x","options":["a","b","c"],"correctAnswer":0}]`},
		{"five options", `[{"question":"x","options":["a","b","c","d","e"],"correctAnswer":0}]`},
		{"index too large", `[{"question":"x","options":["a","b","c","d"],"correctAnswer":4}]`},
		{"negative index", `[{"question":"x","options":["a","b","c","d"],"correctAnswer":-1}]`},
		{"missing key", `[{"question":"x","options":["a","b","c","d"]}]`},
		{"blank question", `[{"question":"  ","options":["a","b","c","d"],"correctAnswer":0}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, quizStore := newQuizService(&fakeCompleter{response: tc.response})
			_, err := svc.Generate(context.Background(), "Fotosintesis", nil, "room-a")
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
			if quizStore.Len() != 0 {
				t.Fatal("quiz stored despite invalid format")
			}
		})
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	svc, quizStore := newQuizService(&fakeCompleter{err: fmt.Errorf("%w: status 503", llm.ErrUpstream)})

	_, err := svc.Generate(context.Background(), "Fotosintesis", nil, "room-a")
	if !errors.Is(err, llm.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if quizStore.Len() != 0 {
		t.Fatal("quiz stored despite upstream failure")
	}
}

func TestGenerateValidatesArguments(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})

	if _, err := svc.Generate(context.Background(), "  ", nil, "room-a"); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for empty topic, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), "Fotosintesis", nil, ""); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for empty room, got %v", err)
	}
}

// Scenario B: answers [0,1,2,3,0] against key [0,1,1,3,2] grade to 3/5 = 60.
func TestSubmitGrading(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	result, err := svc.Submit(context.Background(), quiz.ID, "Alice", []int{0, 1, 2, 3, 0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.CorrectCount != 3 || result.Score != 60 || result.TotalQuestions != 5 {
		t.Fatalf("expected 3 correct / score 60, got %+v", result)
	}
	if len(result.Results) != 5 {
		t.Fatalf("expected 5 review rows, got %d", len(result.Results))
	}

	wantCorrect := []bool{true, true, false, true, false}
	for i, row := range result.Results {
		if row.IsCorrect != wantCorrect[i] {
			t.Fatalf("row %d correctness = %v, want %v", i, row.IsCorrect, wantCorrect[i])
		}
		if row.CorrectAnswer != quiz.Questions[i].CorrectAnswerIndex {
			t.Fatalf("row %d does not expose the answer key", i)
		}
	}
}

func TestSubmitShortAndLongAnswerSets(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	// Short: only the first two answers given, both correct → 2/5 = 40.
	short, err := svc.Submit(context.Background(), quiz.ID, "Budi", []int{0, 1})
	if err != nil {
		t.Fatalf("submit short: %v", err)
	}
	if short.CorrectCount != 2 || short.Score != 40 {
		t.Fatalf("short answers: got %+v", short)
	}
	if short.Results[4].StudentAnswer != model.AnswerNone {
		t.Fatalf("missing answer should be AnswerNone, got %d", short.Results[4].StudentAnswer)
	}

	// Long: trailing extras are ignored; out-of-range entries never match.
	long, err := svc.Submit(context.Background(), quiz.ID, "Citra", []int{0, 1, 1, 3, 2, 9, 9})
	if err != nil {
		t.Fatalf("submit long: %v", err)
	}
	if long.CorrectCount != 5 || long.Score != 100 {
		t.Fatalf("long answers: got %+v", long)
	}
}

func TestSubmitScoreRoundsExactly(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	// 1/5, 2/5, ... exercise the rounding identity on every count.
	for correct := 0; correct <= 5; correct++ {
		answers := make([]int, 5)
		for i := range answers {
			if i < correct {
				answers[i] = quiz.Questions[i].CorrectAnswerIndex
			} else {
				answers[i] = (quiz.Questions[i].CorrectAnswerIndex + 1) % 4
			}
		}
		result, err := svc.Submit(context.Background(), quiz.ID, "Siswa", answers)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		want := correct * 100 / 5
		if result.Score != want || result.CorrectCount != correct {
			t.Fatalf("correct=%d: got score %d correct %d", correct, result.Score, result.CorrectCount)
		}
	}
}

// Scenario C: submitting to an unknown quiz id changes nothing.
func TestSubmitUnknownQuiz(t *testing.T) {
	svc, quizStore := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})

	_, err := svc.Submit(context.Background(), "does-not-exist", "Alice", []int{0})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if quizStore.Len() != 0 {
		t.Fatal("state changed by failed submission")
	}
}

func TestSubmitValidatesArguments(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	if _, err := svc.Submit(context.Background(), quiz.ID, " ", []int{0}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestResubmissionsCreateDistinctRecords(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(context.Background(), quiz.ID, "Alice", []int{0, 1, 1, 3, 2}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	results, _ := svc.Results(quiz.ID)
	if results.Stats.TotalSubmissions != 3 {
		t.Fatalf("expected 3 submissions, got %d", results.Stats.TotalSubmissions)
	}
}

// Scenario F: Alice 80 and Bob 60 → average 70, highest 80, lowest 60.
func TestResultsStatistics(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	// Alice: 4/5 = 80.
	if _, err := svc.Submit(context.Background(), quiz.ID, "Alice", []int{0, 1, 1, 3, 0}); err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	// Bob: 3/5 = 60.
	if _, err := svc.Submit(context.Background(), quiz.ID, "Bob", []int{0, 1, 2, 3, 0}); err != nil {
		t.Fatalf("submit bob: %v", err)
	}

	results, err := svc.Results(quiz.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	stats := results.Stats
	if stats.TotalSubmissions != 2 || stats.AverageScore != 70 || stats.HighestScore != 80 || stats.LowestScore != 60 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(results.Questions) != 5 || results.Questions[0].CorrectAnswerIndex != 0 {
		t.Fatal("owner view must include answer keys")
	}
	if len(results.Submissions) != 2 {
		t.Fatalf("expected submissions verbatim, got %d", len(results.Submissions))
	}
}

func TestResultsIdempotent(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	if _, err := svc.Submit(context.Background(), quiz.ID, "Alice", []int{0, 1, 1, 3, 2}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	first, _ := svc.Results(quiz.ID)
	second, _ := svc.Results(quiz.ID)
	if first.Stats != second.Stats {
		t.Fatalf("stats changed without submissions: %+v vs %+v", first.Stats, second.Stats)
	}
}

func TestResultsUnknownQuiz(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	if _, err := svc.Results("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetQuestionsHidesAnswerKeys(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)

	_, views, err := svc.GetQuestions(quiz.ID)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(views) != 5 {
		t.Fatalf("expected 5 views, got %d", len(views))
	}
	raw, _ := json.Marshal(views)
	if contains(string(raw), "correct_answer") {
		t.Fatalf("student view leaks the answer key: %s", raw)
	}
}

func TestListRoomQuizzes(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})
	quiz := mustGenerate(t, svc)
	if _, err := svc.Submit(context.Background(), quiz.ID, "Alice", []int{0}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	summaries := svc.ListRoomQuizzes("room-a")
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].QuestionCount != 5 || summaries[0].SubmissionCount != 1 {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestSubmissionEventPublished(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	quizStore := store.NewQuizStore()
	svc := NewQuizService(quizStore, &fakeCompleter{response: fiveQuestionJSON()}, rdb, zerolog.Nop(), 0.7)
	quiz := mustGenerate(t, svc)

	pubsub := rdb.Subscribe(context.Background(), config.CacheKey.QuizMonitorChannel(quiz.ID))
	defer pubsub.Close()
	if _, err := pubsub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := svc.Submit(context.Background(), quiz.ID, "Alice", []int{0, 1, 1, 3, 2}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case msg := <-pubsub.Channel():
		var event map[string]interface{}
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event["student_name"] != "Alice" || event["score"].(float64) != 100 {
			t.Fatalf("unexpected event: %v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no submission event received")
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func TestResultsWithNoSubmissionsMarshalsEmptyArray(t *testing.T) {
	svc, _ := newQuizService(&fakeCompleter{response: fiveQuestionJSON()})

	quiz, err := svc.Generate(context.Background(), "Fotosintesis", nil, "room-a")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	results, err := svc.Results(quiz.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.Submissions == nil {
		t.Fatal("submissions slice is nil")
	}

	raw, err := json.Marshal(results)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !contains(string(raw), `"submissions":[]`) {
		t.Fatalf("empty submissions did not serialize as []: %s", raw)
	}
}
