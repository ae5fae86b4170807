package study

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studycycle/backend/internal/extract"
	"github.com/studycycle/backend/internal/models"
	"github.com/studycycle/backend/internal/remediation"
	"github.com/studycycle/backend/internal/session"
)

var (
	ErrEmptyDocument    = errors.New("document appears to be empty")
	ErrTestNotSubmitted = errors.New("test has not been submitted")
)

// SnapshotStore persists one session snapshot per user.
type SnapshotStore interface {
	Save(userID int64, snap session.Snapshot) error
	Load(userID int64) (*session.Session, error)
}

// ContentGenerator is the generative-model boundary: three opaque
// text-generation contracts, each returning validated typed data.
type ContentGenerator interface {
	GenerateSummary(ctx context.Context, content string) ([]string, error)
	GenerateQuestions(ctx context.Context, summary []string) ([]models.Question, error)
	GenerateFlashcards(ctx context.Context, topics []string) ([]models.Flashcard, error)
}

// Service drives the learning cycle over per-user sessions. Session
// mutation is serialized under one mutex; generative calls run outside it,
// and their results are rejected when the session moved on in the meantime
// (generation check in the session package).
type Service struct {
	mu        sync.Mutex
	sessions  map[int64]*session.Session
	store     SnapshotStore
	generator ContentGenerator
}

func NewService(store SnapshotStore, gen ContentGenerator) *Service {
	return &Service{
		sessions:  make(map[int64]*session.Session),
		store:     store,
		generator: gen,
	}
}

// sessionFor returns the user's live session, restoring it from the
// snapshot store on first access. Callers must hold s.mu.
func (s *Service) sessionFor(userID int64) *session.Session {
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}

	sess, err := s.store.Load(userID)
	if err != nil {
		log.Printf("[study] session restore failed for user %d, starting fresh: %v", userID, err)
		sess = nil
	}
	if sess == nil {
		sess = session.New()
	}
	s.sessions[userID] = sess
	return sess
}

// persist writes the reduced projection. The in-memory session stays
// authoritative when the write fails; the failure is logged, not surfaced.
func (s *Service) persist(userID int64, sess *session.Session) {
	if err := s.store.Save(userID, sess.Snapshot()); err != nil {
		log.Printf("[study] persist failed for user %d: %v", userID, err)
	}
}

// UploadDocument extracts text from the uploaded file, summarizes it, and
// installs the result as the new current document — clearing all prior
// assessment state. Nothing changes when extraction or summarization fails.
func (s *Service) UploadDocument(ctx context.Context, userID int64, filename string, data []byte) (*models.Document, error) {
	text, err := extract.Text(data, filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	summary, err := s.generator.GenerateSummary(ctx, text)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		ID:         uuid.NewString(),
		Name:       filename,
		Content:    text,
		Summary:    summary,
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessionFor(userID)
	sess.ReplaceDocument(doc)
	s.persist(userID, sess)
	return &doc, nil
}

// GenerateQuestions generates and installs the question set for the current
// document. An already-installed set is returned as-is — questions are
// immutable until the document is replaced or the test is reset.
func (s *Service) GenerateQuestions(ctx context.Context, userID int64) ([]models.Question, error) {
	s.mu.Lock()
	sess := s.sessionFor(userID)
	if sess.Document == nil {
		s.mu.Unlock()
		return nil, session.ErrNoDocument
	}
	if len(sess.Questions) > 0 {
		existing := append([]models.Question{}, sess.Questions...)
		s.mu.Unlock()
		return existing, nil
	}
	generation := sess.Generation()
	summary := append([]string{}, sess.Document.Summary...)
	s.mu.Unlock()

	questions, err := s.generator.GenerateQuestions(ctx, summary)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess = s.sessionFor(userID)
	if err := sess.InstallQuestions(generation, questions); err != nil {
		return nil, err
	}
	s.persist(userID, sess)
	return questions, nil
}

// RecordAnswer records an immutable answer and returns immediate feedback.
func (s *Service) RecordAnswer(userID int64, questionID string, selected int) (models.AnswerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(userID)
	if err := sess.RecordAnswer(questionID, selected); err != nil {
		return models.AnswerResponse{}, err
	}
	s.persist(userID, sess)

	var correct bool
	var explanation string
	for _, q := range sess.Questions {
		if q.ID == questionID {
			correct = q.CorrectAnswer == selected
			explanation = q.Explanation
			break
		}
	}

	return models.AnswerResponse{
		QuestionID:     questionID,
		SelectedOption: selected,
		Correct:        correct,
		Explanation:    explanation,
		Answered:       len(sess.Answers),
		Total:          len(sess.Questions),
	}, nil
}

// SubmitTest scores the current answers, installs the result, and reports
// the topics needing remediation.
func (s *Service) SubmitTest(userID int64) (models.SubmitTestResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(userID)
	result, err := sess.SubmitTest(time.Now())
	if err != nil {
		return models.SubmitTestResponse{}, err
	}
	s.persist(userID, sess)

	return models.SubmitTestResponse{
		Result:          result,
		IncorrectTopics: remediation.TopicsForReview(sess.Questions, result),
	}, nil
}

// GenerateFlashcards requests one flashcard per missed topic and installs
// the materialized set. A perfect score short-circuits with an empty set
// and no generative call.
func (s *Service) GenerateFlashcards(ctx context.Context, userID int64) (models.FlashcardsResponse, error) {
	s.mu.Lock()
	sess := s.sessionFor(userID)
	if sess.Result == nil {
		s.mu.Unlock()
		return models.FlashcardsResponse{}, ErrTestNotSubmitted
	}
	if len(sess.Flashcards) > 0 {
		resp := flashcardsView(sess.Flashcards)
		s.mu.Unlock()
		return resp, nil
	}
	topics := remediation.TopicsForReview(sess.Questions, *sess.Result)
	generation := sess.Generation()
	s.mu.Unlock()

	if len(topics) == 0 {
		return models.FlashcardsResponse{Flashcards: []models.Flashcard{}}, nil
	}

	decoded, err := s.generator.GenerateFlashcards(ctx, topics)
	if err != nil {
		return models.FlashcardsResponse{}, err
	}
	cards := remediation.Materialize(decoded)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess = s.sessionFor(userID)
	if err := sess.InstallFlashcards(generation, cards); err != nil {
		return models.FlashcardsResponse{}, err
	}
	s.persist(userID, sess)
	return flashcardsView(sess.Flashcards), nil
}

// MarkMastered idempotently marks one flashcard mastered.
func (s *Service) MarkMastered(userID int64, cardID string) (models.FlashcardsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(userID)
	sess.Flashcards = remediation.MarkMastered(sess.Flashcards, cardID)
	s.persist(userID, sess)
	return flashcardsView(sess.Flashcards), nil
}

// ResetTest clears the assessment but keeps the current document, so the
// retake reuses the existing summary.
func (s *Service) ResetTest(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(userID)
	if err := sess.ResetTest(); err != nil {
		return err
	}
	s.persist(userID, sess)
	return nil
}

// GetSession returns the current session view.
func (s *Service) GetSession(userID int64) models.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(userID)
	answers := make(map[string]int, len(sess.Answers))
	for id, sel := range sess.Answers {
		answers[id] = sel
	}
	return models.SessionResponse{
		Document:   sess.Document,
		Questions:  append([]models.Question{}, sess.Questions...),
		Answers:    answers,
		TestResult: sess.Result,
		Flashcards: append([]models.Flashcard{}, sess.Flashcards...),
	}
}

func flashcardsView(cards []models.Flashcard) models.FlashcardsResponse {
	return models.FlashcardsResponse{
		Flashcards: append([]models.Flashcard{}, cards...),
		Remaining:  len(remediation.Remaining(cards)),
	}
}
