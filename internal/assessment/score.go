// Package assessment holds the pure scoring functions over a question set
// and an answer map. Nothing here touches session state; the functions are
// reentrant and safe to call concurrently across independent sessions.
package assessment

import "github.com/studycycle/backend/internal/models"

// Result is the outcome of scoring one question set against one answer map.
// CorrectCount + len(IncorrectQuestionIDs) always equals the question count.
type Result struct {
	CorrectCount         int
	IncorrectQuestionIDs []string
}

// Score counts a question correct iff the recorded answer matches its
// correct-answer index. A question with no recorded answer counts as
// incorrect — no credit for unanswered. Answer entries for ids not in the
// question set are ignored.
func Score(questions []models.Question, answers map[string]int) Result {
	result := Result{IncorrectQuestionIDs: []string{}}
	for _, q := range questions {
		selected, answered := answers[q.ID]
		if answered && selected == q.CorrectAnswer {
			result.CorrectCount++
		} else {
			result.IncorrectQuestionIDs = append(result.IncorrectQuestionIDs, q.ID)
		}
	}
	return result
}

// IsComplete reports whether every question has a recorded answer.
func IsComplete(questions []models.Question, answers map[string]int) bool {
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			return false
		}
	}
	return true
}

// IncorrectTopics maps incorrect question ids back to their topics,
// deduplicated, preserving first-occurrence order.
func IncorrectTopics(questions []models.Question, incorrectIDs []string) []string {
	incorrect := make(map[string]bool, len(incorrectIDs))
	for _, id := range incorrectIDs {
		incorrect[id] = true
	}

	topics := []string{}
	seen := make(map[string]bool)
	for _, q := range questions {
		if !incorrect[q.ID] || seen[q.Topic] {
			continue
		}
		seen[q.Topic] = true
		topics = append(topics, q.Topic)
	}
	return topics
}
