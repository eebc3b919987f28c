package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/kelasid/ruangkelas-backend/internal/model"
)

// Store errors.
var (
	// ErrNotFound is returned when a quiz id is unknown.
	ErrNotFound = errors.New("quiz not found")
	// ErrDuplicateID is returned when inserting under an existing id.
	// The generator's uuid policy makes this unreachable in practice.
	ErrDuplicateID = errors.New("quiz id already exists")
)

// QuizStore is the process-wide in-memory quiz registry. Mutations are
// serialized under a single write lock; reads return snapshot copies so a
// caller never observes a submissions slice mid-append. Nothing survives a
// process restart.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]*model.Quiz
}

// NewQuizStore creates an empty QuizStore.
func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]*model.Quiz)}
}

// Put inserts a quiz under its id.
func (s *QuizStore) Put(quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.quizzes[quiz.ID]; exists {
		return ErrDuplicateID
	}

	stored := snapshot(quiz)
	s.quizzes[quiz.ID] = &stored
	return nil
}

// Get returns a snapshot of the quiz with the given id.
func (s *QuizStore) Get(id string) (model.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return model.Quiz{}, ErrNotFound
	}
	return snapshot(quiz), nil
}

// AppendSubmission atomically appends a submission to the quiz's record and
// returns the new submission count.
func (s *QuizStore) AppendSubmission(id string, sub model.Submission) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return 0, ErrNotFound
	}
	quiz.Submissions = append(quiz.Submissions, sub)
	return len(quiz.Submissions), nil
}

// ListByRoom returns snapshots of every quiz owned by a room, newest first.
func (s *QuizStore) ListByRoom(roomName string) []model.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Quiz
	for _, quiz := range s.quizzes {
		if quiz.RoomName == roomName {
			result = append(result, snapshot(quiz))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Len returns the number of stored quizzes.
func (s *QuizStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quizzes)
}

// snapshot copies a quiz so callers cannot alias the stored record. The
// nested Options and Answers slices are cloned too: mutating any element of
// a returned snapshot must never reach stored state.
func snapshot(quiz *model.Quiz) model.Quiz {
	copied := *quiz
	copied.Questions = make([]model.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		copied.Questions[i] = q
		copied.Questions[i].Options = append([]string(nil), q.Options...)
	}
	copied.Submissions = make([]model.Submission, len(quiz.Submissions))
	for i, sub := range quiz.Submissions {
		copied.Submissions[i] = sub
		copied.Submissions[i].Answers = append([]int(nil), sub.Answers...)
	}
	return copied
}
