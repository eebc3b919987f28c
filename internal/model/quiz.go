package model

import (
	"time"
)

// AnswerNone is the sentinel for a question the student did not answer.
// It never equals a valid option index.
const AnswerNone = -1

// Question is a single multiple-choice question with exactly four options.
// CorrectAnswerIndex is the 0-based answer key (0=A .. 3=D) and must never
// reach students before they submit.
type Question struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
}

// QuestionView is a question as exposed to students: no answer key.
type QuestionView struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Submission is one student's graded attempt. Score fields are derived at
// submission time and never recomputed.
type Submission struct {
	StudentName    string    `json:"student_name"`
	Answers        []int     `json:"answers"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Quiz is a generated question set bound to one room and topic.
// Questions are immutable after creation; Submissions are append-only.
type Quiz struct {
	ID          string       `json:"id"`
	RoomName    string       `json:"room_name"`
	Topic       string       `json:"topic"`
	Questions   []Question   `json:"questions"`
	Submissions []Submission `json:"submissions"`
	CreatedAt   time.Time    `json:"created_at"`
}

// StudentView returns the question set without answer keys.
func (q *Quiz) StudentView() []QuestionView {
	views := make([]QuestionView, len(q.Questions))
	for i, question := range q.Questions {
		views[i] = QuestionView{
			Index:   i,
			Text:    question.Text,
			Options: question.Options,
		}
	}
	return views
}

// AnswerReview is the per-question outcome returned to a student right after
// submitting. The correct answer is exposed here on purpose: this is the
// post-submission review payload.
type AnswerReview struct {
	QuestionIndex int    `json:"question_index"`
	QuestionText  string `json:"question_text"`
	StudentAnswer int    `json:"student_answer"` // AnswerNone if unanswered
	CorrectAnswer int    `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// SubmissionResult is the full grading outcome for one submission.
type SubmissionResult struct {
	QuizID         string         `json:"quiz_id"`
	StudentName    string         `json:"student_name"`
	Score          int            `json:"score"`
	CorrectCount   int            `json:"correct_count"`
	TotalQuestions int            `json:"total_questions"`
	Results        []AnswerReview `json:"results"`
}

// QuizStats summarizes all submissions of a quiz. Zero-valued when there are
// no submissions yet.
type QuizStats struct {
	TotalSubmissions int `json:"total_submissions"`
	AverageScore     int `json:"average_score"`
	HighestScore     int `json:"highest_score"`
	LowestScore      int `json:"lowest_score"`
}

// QuizResultsView is the owning teacher's view: full question set with answer
// keys, every submission verbatim, and aggregate statistics.
type QuizResultsView struct {
	QuizID      string       `json:"quiz_id"`
	RoomName    string       `json:"room_name"`
	Topic       string       `json:"topic"`
	CreatedAt   time.Time    `json:"created_at"`
	Questions   []Question   `json:"questions"`
	Submissions []Submission `json:"submissions"`
	Stats       QuizStats    `json:"stats"`
}

// QuizSummary is a lightweight listing entry for a room's quizzes.
type QuizSummary struct {
	ID              string    `json:"id"`
	Topic           string    `json:"topic"`
	QuestionCount   int       `json:"question_count"`
	SubmissionCount int       `json:"submission_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// GenerateQuizRequest is the payload for generating a new quiz.
type GenerateQuizRequest struct {
	Topic            string   `json:"topic" binding:"required,min=2,max=200"`
	RoomName         string   `json:"room_name" binding:"required,min=1,max=128"`
	StudentQuestions []string `json:"student_questions" binding:"omitempty,max=50,dive,max=1000"`
}

// SubmitQuizRequest is the payload for submitting answers to a quiz.
// Answers may be shorter or longer than the question set; missing or
// out-of-range entries are graded as incorrect, never rejected.
type SubmitQuizRequest struct {
	StudentName string `json:"student_name" binding:"required,min=1,max=128"`
	Answers     []int  `json:"answers"`
}
