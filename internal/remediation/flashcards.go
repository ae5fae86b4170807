// Package remediation derives the flashcard-generation request from a test
// result and manages per-card mastery state thereafter.
package remediation

import (
	"github.com/google/uuid"

	"github.com/studycycle/backend/internal/assessment"
	"github.com/studycycle/backend/internal/models"
)

// TopicsForReview returns the distinct topics of the questions missed in the
// given result, first-occurrence order preserved. Exactly one flashcard is
// later requested per topic — two missed questions sharing a topic yield
// one card. An empty return means flashcard generation is skipped entirely.
func TopicsForReview(questions []models.Question, result models.TestResult) []string {
	return assessment.IncorrectTopics(questions, result.IncorrectQuestions)
}

// Materialize attaches a fresh identifier to each decoded card and resets
// mastery, regardless of what the model returned for those fields.
func Materialize(decoded []models.Flashcard) []models.Flashcard {
	cards := make([]models.Flashcard, len(decoded))
	for i, c := range decoded {
		cards[i] = models.Flashcard{
			ID:       uuid.NewString(),
			Topic:    c.Topic,
			Question: c.Question,
			Answer:   c.Answer,
			Mastered: false,
		}
	}
	return cards
}

// MarkMastered sets the mastered flag on the card with the given id.
// Idempotent: marking an already-mastered card changes nothing, and an
// unknown id is a no-op.
func MarkMastered(cards []models.Flashcard, cardID string) []models.Flashcard {
	for i := range cards {
		if cards[i].ID == cardID {
			cards[i].Mastered = true
		}
	}
	return cards
}

// Remaining returns the cards not yet mastered — the review queue.
func Remaining(cards []models.Flashcard) []models.Flashcard {
	remaining := []models.Flashcard{}
	for _, c := range cards {
		if !c.Mastered {
			remaining = append(remaining, c)
		}
	}
	return remaining
}

// Complete reports whether the remediation cycle is finished: there are
// cards and every one of them is mastered.
func Complete(cards []models.Flashcard) bool {
	return len(cards) > 0 && len(Remaining(cards)) == 0
}
