package assessment

import (
	"reflect"
	"testing"

	"github.com/studycycle/backend/internal/models"
)

func threeQuestions() []models.Question {
	return []models.Question{
		{ID: "q1", Topic: "cells", CorrectAnswer: 1, Options: []string{"a", "b", "c", "d"}},
		{ID: "q2", Topic: "energy", CorrectAnswer: 0, Options: []string{"a", "b", "c", "d"}},
		{ID: "q3", Topic: "cells", CorrectAnswer: 2, Options: []string{"a", "b", "c", "d"}},
	}
}

func TestScore_Basic(t *testing.T) {
	answers := map[string]int{"q1": 1, "q2": 1, "q3": 2}

	result := Score(threeQuestions(), answers)
	if result.CorrectCount != 2 {
		t.Errorf("score = %d, want 2", result.CorrectCount)
	}
	if !reflect.DeepEqual(result.IncorrectQuestionIDs, []string{"q2"}) {
		t.Errorf("incorrect = %v, want [q2]", result.IncorrectQuestionIDs)
	}
}

func TestScore_MissingAnswersCountIncorrect(t *testing.T) {
	result := Score(threeQuestions(), map[string]int{"q1": 1})
	if result.CorrectCount != 1 {
		t.Errorf("score = %d, want 1", result.CorrectCount)
	}
	if !reflect.DeepEqual(result.IncorrectQuestionIDs, []string{"q2", "q3"}) {
		t.Errorf("incorrect = %v, want [q2 q3]", result.IncorrectQuestionIDs)
	}
}

func TestScore_UnknownAnswerIDsIgnored(t *testing.T) {
	answers := map[string]int{"q1": 1, "q2": 0, "q3": 2, "q99": 3}
	result := Score(threeQuestions(), answers)
	if result.CorrectCount != 3 {
		t.Errorf("score = %d, want 3", result.CorrectCount)
	}
	if len(result.IncorrectQuestionIDs) != 0 {
		t.Errorf("incorrect = %v, want empty", result.IncorrectQuestionIDs)
	}
}

// Score + incorrect count must always equal the question count, whatever the
// answer map contains.
func TestScore_Partition(t *testing.T) {
	questions := threeQuestions()
	maps := []map[string]int{
		{},
		{"q1": 1},
		{"q1": 0, "q2": 0, "q3": 0},
		{"q1": 1, "q2": 0, "q3": 2},
		{"nope": 1, "q2": 3},
	}
	for _, answers := range maps {
		result := Score(questions, answers)
		if result.CorrectCount+len(result.IncorrectQuestionIDs) != len(questions) {
			t.Errorf("answers %v: %d correct + %d incorrect != %d questions",
				answers, result.CorrectCount, len(result.IncorrectQuestionIDs), len(questions))
		}
	}
}

func TestIsComplete(t *testing.T) {
	questions := threeQuestions()

	if IsComplete(questions, map[string]int{"q1": 0, "q2": 0}) {
		t.Error("expected incomplete with a missing answer")
	}
	if !IsComplete(questions, map[string]int{"q1": 0, "q2": 0, "q3": 0}) {
		t.Error("expected complete with all answers present")
	}
	if !IsComplete(nil, map[string]int{}) {
		t.Error("an empty question set is trivially complete")
	}
}

func TestIncorrectTopics_DeduplicatedInOrder(t *testing.T) {
	topics := IncorrectTopics(threeQuestions(), []string{"q1", "q3", "q2"})
	if !reflect.DeepEqual(topics, []string{"cells", "energy"}) {
		t.Errorf("topics = %v, want [cells energy]", topics)
	}
}

func TestIncorrectTopics_Empty(t *testing.T) {
	topics := IncorrectTopics(threeQuestions(), nil)
	if len(topics) != 0 {
		t.Errorf("topics = %v, want empty", topics)
	}
}
