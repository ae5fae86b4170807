// Package session owns the single mutable aggregate for one user: current
// document, question set, answer map, test result, and flashcard set. All
// mutation goes through named transition methods; each transition is
// all-or-nothing, so a failed generation or decode never leaves the
// aggregate half-updated.
package session

import (
	"errors"
	"time"

	"github.com/studycycle/backend/internal/assessment"
	"github.com/studycycle/backend/internal/models"
)

var (
	ErrNoDocument         = errors.New("no active document")
	ErrNoQuestions        = errors.New("no question set installed")
	ErrQuestionsInstalled = errors.New("question set already installed")
	ErrUnknownQuestion    = errors.New("question id not in current question set")
	ErrAnswerLocked       = errors.New("answer already recorded for this question")
	ErrInvalidOption      = errors.New("selected option out of range")
	ErrStaleGeneration    = errors.New("session changed while the request was in flight")
)

// Session is the root aggregate. Not safe for concurrent use; the owning
// controller serializes access (one logical thread of control per session).
type Session struct {
	Document   *models.Document
	Questions  []models.Question
	Answers    map[string]int
	Result     *models.TestResult
	Flashcards []models.Flashcard

	// generation increments on every transition that invalidates in-flight
	// generative calls. Results keyed to an older generation are rejected.
	generation uint64
}

func New() *Session {
	return &Session{
		Questions:  []models.Question{},
		Answers:    map[string]int{},
		Flashcards: []models.Flashcard{},
	}
}

// Generation returns the current session generation. Callers capture it
// before a generative call and pass it back when installing the result.
func (s *Session) Generation() uint64 {
	return s.generation
}

// ReplaceDocument installs a new current document and atomically clears the
// question set, answer map, test result, and flashcard set. There is no
// partial-reset path.
func (s *Session) ReplaceDocument(doc models.Document) {
	s.Document = &doc
	s.clearAssessment()
	s.generation++
}

// ResetTest clears everything downstream of the document but keeps the
// document and its summary, so a retake regenerates questions without
// re-summarizing.
func (s *Session) ResetTest() error {
	if s.Document == nil {
		return ErrNoDocument
	}
	s.clearAssessment()
	s.generation++
	return nil
}

func (s *Session) clearAssessment() {
	s.Questions = []models.Question{}
	s.Answers = map[string]int{}
	s.Result = nil
	s.Flashcards = []models.Flashcard{}
}

// InstallQuestions installs a freshly generated question set. Rejects stale
// results (the document or test was reset while the call was in flight) and
// refuses to overwrite an existing set — questions are immutable once
// installed for a document.
func (s *Session) InstallQuestions(generation uint64, questions []models.Question) error {
	if generation != s.generation {
		return ErrStaleGeneration
	}
	if s.Document == nil {
		return ErrNoDocument
	}
	if len(s.Questions) > 0 {
		return ErrQuestionsInstalled
	}
	s.Questions = questions
	return nil
}

// RecordAnswer records the selected option for a question. The first
// recorded answer is final: a present entry is locked and further writes
// for that id are rejected.
func (s *Session) RecordAnswer(questionID string, selected int) error {
	q := s.findQuestion(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if selected < 0 || selected >= len(q.Options) {
		return ErrInvalidOption
	}
	if _, locked := s.Answers[questionID]; locked {
		return ErrAnswerLocked
	}
	s.Answers[questionID] = selected
	return nil
}

// Answered reports whether every question has a recorded answer.
func (s *Session) Answered() bool {
	return assessment.IsComplete(s.Questions, s.Answers)
}

// SubmitTest scores the current answers and installs the result, discarding
// any prior result. Unanswered questions count as incorrect — no credit for
// unanswered. The result always covers the full question set.
func (s *Session) SubmitTest(now time.Time) (models.TestResult, error) {
	if s.Document == nil {
		return models.TestResult{}, ErrNoDocument
	}
	if len(s.Questions) == 0 {
		return models.TestResult{}, ErrNoQuestions
	}

	scored := assessment.Score(s.Questions, s.Answers)
	result := models.TestResult{
		DocumentID:         s.Document.ID,
		Score:              scored.CorrectCount,
		TotalQuestions:     len(s.Questions),
		IncorrectQuestions: scored.IncorrectQuestionIDs,
		CompletedAt:        now,
	}
	s.Result = &result
	return result, nil
}

// InstallFlashcards installs the materialized flashcard set for the current
// test result, rejecting stale results.
func (s *Session) InstallFlashcards(generation uint64, cards []models.Flashcard) error {
	if generation != s.generation {
		return ErrStaleGeneration
	}
	if s.Result == nil {
		return ErrNoQuestions
	}
	s.Flashcards = cards
	return nil
}

func (s *Session) findQuestion(id string) *models.Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
