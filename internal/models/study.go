package models

import "time"

// ── Core Structs ───────────────────────────────────────

// Document is the single active source document for a session. Summary holds
// the generated key takeaways in relevance order.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Summary    []string  `json:"summary"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Question is one generated multiple-choice question. Immutable once
// installed for a document.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Topic         string   `json:"topic"`
	Explanation   string   `json:"explanation"`
}

// OptionCount is the required number of options per question.
const OptionCount = 4

// TestResult is the outcome of one completed test. Recomputed wholesale on
// retake; the old result is discarded.
type TestResult struct {
	DocumentID         string    `json:"document_id"`
	Score              int       `json:"score"`
	TotalQuestions     int       `json:"total_questions"`
	IncorrectQuestions []string  `json:"incorrect_questions"`
	CompletedAt        time.Time `json:"completed_at"`
}

// Flashcard is one remedial card for a missed topic. Mastered is the only
// mutable field.
type Flashcard struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Mastered bool   `json:"mastered"`
}

// ── Request/Response Types ───────────────────────────────

type AnswerRequest struct {
	SelectedOption int `json:"selected_option"`
}

type AnswerResponse struct {
	QuestionID     string `json:"question_id"`
	SelectedOption int    `json:"selected_option"`
	Correct        bool   `json:"correct"`
	Explanation    string `json:"explanation"`
	Answered       int    `json:"answered"`
	Total          int    `json:"total"`
}

type SubmitTestResponse struct {
	Result          TestResult `json:"result"`
	IncorrectTopics []string   `json:"incorrect_topics"`
}

type GenerateQuestionsResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

type FlashcardsResponse struct {
	Flashcards []Flashcard `json:"flashcards"`
	Remaining  int         `json:"remaining"`
}

type SessionResponse struct {
	Document   *Document      `json:"document,omitempty"`
	Questions  []Question     `json:"questions"`
	Answers    map[string]int `json:"answers"`
	TestResult *TestResult    `json:"test_result,omitempty"`
	Flashcards []Flashcard    `json:"flashcards"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
