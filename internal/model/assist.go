package model

// AnswerQuestionRequest asks the AI helper to answer a student question,
// optionally grounded in the lesson context so far.
type AnswerQuestionRequest struct {
	Question      string `json:"question" binding:"required,min=2,max=2000"`
	LessonContext string `json:"lesson_context" binding:"omitempty,max=20000"`
}

// ExtractQuestionsRequest asks the AI helper to pull student questions out of
// a raw speech transcript.
type ExtractQuestionsRequest struct {
	Transcript string `json:"transcript" binding:"required,min=2,max=50000"`
}

// SummarizeRequest asks the AI helper for a session summary.
type SummarizeRequest struct {
	Transcript string `json:"transcript" binding:"required,min=2,max=100000"`
	Topic      string `json:"topic" binding:"omitempty,max=200"`
}
