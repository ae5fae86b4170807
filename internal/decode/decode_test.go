package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/studycycle/backend/internal/models"
)

func validQuestionsJSON(count int) string {
	questions := make([]models.Question, count)
	for i := 0; i < count; i++ {
		questions[i] = models.Question{
			ID:       fmt.Sprintf("q%d", i+1),
			Question: fmt.Sprintf("What does key takeaway %d describe?", i+1),
			Options: []string{
				"The first candidate mechanism",
				"The second candidate mechanism",
				"The third candidate mechanism",
				"The fourth candidate mechanism",
			},
			CorrectAnswer: i % 4,
			Topic:         fmt.Sprintf("topic %d", i%3+1),
			Explanation:   "The correct option restates the takeaway.",
		}
	}
	data, _ := json.Marshal(questions)
	return string(data)
}

func TestQuestions_ValidJSON(t *testing.T) {
	questions, err := Questions(validQuestionsJSON(10))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if len(q.Options) != 4 {
			t.Errorf("question %d: expected 4 options, got %d", i+1, len(q.Options))
		}
		if q.ID == "" || q.Topic == "" {
			t.Errorf("question %d: missing id or topic", i+1)
		}
	}
}

func TestQuestions_MarkdownFences(t *testing.T) {
	inputs := []string{
		"```json\n" + validQuestionsJSON(3) + "\n```",
		"```\n" + validQuestionsJSON(3) + "\n```",
	}
	for _, input := range inputs {
		questions, err := Questions(input)
		if err != nil {
			t.Fatalf("expected no error with fences, got: %v", err)
		}
		if len(questions) != 3 {
			t.Errorf("expected 3 questions, got %d", len(questions))
		}
	}
}

func TestQuestions_SurroundingProse(t *testing.T) {
	input := "Here are your questions:\n\n" + validQuestionsJSON(2) + "\n\nLet me know if you need more."
	questions, err := Questions(input)
	if err != nil {
		t.Fatalf("expected no error with surrounding prose, got: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(questions))
	}
}

func TestQuestions_FencedWithProse(t *testing.T) {
	input := "Sure! Here is the JSON you asked for:\n```json\n" + validQuestionsJSON(1) + "\n```\nHope that helps."
	questions, err := Questions(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("expected 1 question, got %d", len(questions))
	}
}

func TestFlashcards_UnescapedQuoteInValue(t *testing.T) {
	input := "```json\n[{\"topic\":\"cells\",\"question\":\"What is a \"cell\"?\",\"answer\":\"Basic unit.\"}]\n```"

	cards, err := Flashcards(input)
	if err != nil {
		t.Fatalf("expected repair to succeed, got: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Question != `What is a "cell"?` {
		t.Errorf("question = %q, want %q", cards[0].Question, `What is a "cell"?`)
	}
	if cards[0].Topic != "cells" || cards[0].Answer != "Basic unit." {
		t.Errorf("adjacent fields corrupted: topic=%q answer=%q", cards[0].Topic, cards[0].Answer)
	}
}

func TestFlashcards_LiteralNewlinesInValue(t *testing.T) {
	input := "[{\"topic\":\"mitosis\",\"question\":\"Name the\nphases of\tmitosis\",\"answer\":\"Prophase,\r\nmetaphase, anaphase, telophase.\"}]"

	cards, err := Flashcards(input)
	if err != nil {
		t.Fatalf("expected repair to succeed, got: %v", err)
	}
	if cards[0].Question != "Name the phases of mitosis" {
		t.Errorf("question = %q", cards[0].Question)
	}
	if cards[0].Answer != "Prophase, metaphase, anaphase, telophase." {
		t.Errorf("answer = %q", cards[0].Answer)
	}
}

func TestFlashcards_AlreadyEscapedQuotesPreserved(t *testing.T) {
	input := `[{"topic":"cells","question":"What is a \"cell\"?","answer":"Basic unit."}]`

	cards, err := Flashcards(input)
	if err != nil {
		t.Fatalf("expected no error on valid input, got: %v", err)
	}
	if cards[0].Question != `What is a "cell"?` {
		t.Errorf("question = %q, escaped quotes were mangled", cards[0].Question)
	}
}

func TestQuestions_IdempotentOnOwnOutput(t *testing.T) {
	first, err := Questions("```json\n" + validQuestionsJSON(4) + "\n```")
	if err != nil {
		t.Fatalf("first decode failed: %v", err)
	}

	reserialized, _ := json.Marshal(first)
	second, err := Questions(string(reserialized))
	if err != nil {
		t.Fatalf("second decode failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("decoding the decoder's own re-serialization changed the value")
	}
}

func TestQuestions_MalformedJSON(t *testing.T) {
	_, err := Questions(`[{"id":"q1","question":`)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got: %v", err)
	}
	if decodeErr.Kind != KindMalformed {
		t.Errorf("kind = %s, want %s", decodeErr.Kind, KindMalformed)
	}
	if decodeErr.Snippet == "" {
		t.Error("expected a diagnostic snippet")
	}
}

func TestQuestions_SnippetIsBounded(t *testing.T) {
	_, err := Questions("[" + strings.Repeat("x", 2000))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got: %v", err)
	}
	if len(decodeErr.Snippet) > snippetLimit {
		t.Errorf("snippet length %d exceeds limit %d", len(decodeErr.Snippet), snippetLimit)
	}
}

func TestQuestions_WrongShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"top-level object without array", `{"count": 10}`},
		{"missing field", `[{"id":"q1","question":"text?","options":["a","b","c","d"],"correctAnswer":0,"topic":"t"}]`},
		{"wrong primitive type", `[{"id":"q1","question":"text?","options":["a","b","c","d"],"correctAnswer":"0","topic":"t","explanation":"e"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Questions(tt.input)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got: %v", err)
			}
			if decodeErr.Kind != KindShape {
				t.Errorf("kind = %s, want %s", decodeErr.Kind, KindShape)
			}
		})
	}
}

func TestQuestions_InvariantViolations(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"three options", `[{"id":"q1","question":"text?","options":["a","b","c"],"correctAnswer":0,"topic":"t","explanation":"e"}]`},
		{"answer index out of range", `[{"id":"q1","question":"text?","options":["a","b","c","d"],"correctAnswer":4,"topic":"t","explanation":"e"}]`},
		{"duplicate ids", `[{"id":"q1","question":"one?","options":["a","b","c","d"],"correctAnswer":0,"topic":"t","explanation":"e"},` +
			`{"id":"q1","question":"two?","options":["a","b","c","d"],"correctAnswer":1,"topic":"t","explanation":"e"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Questions(tt.input)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got: %v", err)
			}
			if len(validationErr.Errors) == 0 {
				t.Error("expected at least one validation message")
			}
		})
	}
}

func TestSummary_Valid(t *testing.T) {
	input := "```json\n[\"The cell is the basic unit of life.\",\"Mitochondria produce ATP.\"]\n```"
	points, err := Summary(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	want := []string{"The cell is the basic unit of life.", "Mitochondria produce ATP."}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("points = %v, want %v", points, want)
	}
}

func TestSummary_NonStringElement(t *testing.T) {
	_, err := Summary(`["a point", 42]`)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got: %v", err)
	}
	if decodeErr.Kind != KindShape {
		t.Errorf("kind = %s, want %s", decodeErr.Kind, KindShape)
	}
}

func TestSummary_ProseOnly(t *testing.T) {
	_, err := Summary("I could not produce a summary for this document.")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got: %v", err)
	}
	if decodeErr.Kind != KindMalformed {
		t.Errorf("kind = %s, want %s", decodeErr.Kind, KindMalformed)
	}
}

func TestFlashcards_IgnoresIDAndMastered(t *testing.T) {
	input := `[{"id":"fc1","topic":"cells","question":"What is a cell?","answer":"Basic unit.","mastered":true}]`
	cards, err := Flashcards(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cards[0].ID != "" {
		t.Errorf("decoded card should not carry the model's id, got %q", cards[0].ID)
	}
	if cards[0].Mastered {
		t.Error("decoded card should not carry the model's mastered flag")
	}
}

func TestFlashcards_MissingField(t *testing.T) {
	_, err := Flashcards(`[{"topic":"cells","question":"What is a cell?"}]`)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got: %v", err)
	}
	if decodeErr.Kind != KindShape {
		t.Errorf("kind = %s, want %s", decodeErr.Kind, KindShape)
	}
}

func TestRepairStringFields_ValidInputUntouched(t *testing.T) {
	input := validQuestionsJSON(5)
	if got := repairStringFields(input); got != input {
		t.Error("repair pass modified already-valid JSON")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"[1]", "[1]"},
		{"  [1]  ", "[1]"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
