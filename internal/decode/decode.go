// Package decode turns raw generative-model text into validated, typed data.
//
// Model output is near-valid JSON with recurring defects: markdown fences,
// surrounding prose, and unescaped quotes or literal newlines inside
// natural-language string values. The pipeline here targets exactly those
// defects, in order, each step best-effort and harmless on already-valid
// input: trim, strip fences, extract the array literal, repair known string
// fields, parse, validate shape. There is no second heuristic pass — if the
// repaired text does not parse, the caller gets a DecodeError carrying a
// snippet of the original text.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/studycycle/backend/internal/models"
)

type Shape string

const (
	ShapeSummary    Shape = "summary"
	ShapeQuestions  Shape = "questions"
	ShapeFlashcards Shape = "flashcards"
)

type ErrorKind string

const (
	// KindMalformed means the repaired text is not valid JSON at all.
	KindMalformed ErrorKind = "malformed_json"
	// KindShape means the JSON parsed but does not match the expected shape
	// (not an array, missing required fields, wrong primitive types).
	KindShape ErrorKind = "wrong_shape"
)

// DecodeError reports an unparseable or ill-shaped model response. Snippet
// holds a bounded prefix of the pre-repair text for diagnostics.
type DecodeError struct {
	Shape   Shape
	Kind    ErrorKind
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s: %v", e.Shape, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError reports decoded data that violates a data-model invariant
// (wrong option count, answer index out of range).
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

const snippetLimit = 500

// ── Public Decoders ─────────────────────────────────────

// Summary decodes a model response into an ordered list of key-point strings.
func Summary(raw string) ([]string, error) {
	elements, err := decodeArray(ShapeSummary, raw)
	if err != nil {
		return nil, err
	}

	points := make([]string, 0, len(elements))
	for i, el := range elements {
		var s string
		if err := json.Unmarshal(el, &s); err != nil {
			return nil, shapeError(ShapeSummary, raw, fmt.Errorf("element %d: expected a string", i+1))
		}
		points = append(points, s)
	}
	return points, nil
}

type questionPayload struct {
	ID            *string  `json:"id"`
	Question      *string  `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Topic         *string  `json:"topic"`
	Explanation   *string  `json:"explanation"`
}

// Questions decodes a model response into a list of multiple-choice
// questions and validates the per-question invariants.
func Questions(raw string) ([]models.Question, error) {
	elements, err := decodeArray(ShapeQuestions, raw)
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(elements))
	for i, el := range elements {
		var p questionPayload
		if err := json.Unmarshal(el, &p); err != nil {
			return nil, shapeError(ShapeQuestions, raw, fmt.Errorf("element %d: %w", i+1, err))
		}
		if missing := missingQuestionFields(p); missing != "" {
			return nil, shapeError(ShapeQuestions, raw, fmt.Errorf("element %d: missing field %q", i+1, missing))
		}
		questions = append(questions, models.Question{
			ID:            *p.ID,
			Question:      *p.Question,
			Options:       p.Options,
			CorrectAnswer: *p.CorrectAnswer,
			Topic:         *p.Topic,
			Explanation:   *p.Explanation,
		})
	}

	if err := validateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

type flashcardPayload struct {
	Topic    *string `json:"topic"`
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// Flashcards decodes a model response into flashcards. Identifiers and
// mastery state are assigned later by the remediation engine; any id or
// mastered field in the response is ignored.
func Flashcards(raw string) ([]models.Flashcard, error) {
	elements, err := decodeArray(ShapeFlashcards, raw)
	if err != nil {
		return nil, err
	}

	cards := make([]models.Flashcard, 0, len(elements))
	for i, el := range elements {
		var p flashcardPayload
		if err := json.Unmarshal(el, &p); err != nil {
			return nil, shapeError(ShapeFlashcards, raw, fmt.Errorf("element %d: %w", i+1, err))
		}
		if p.Topic == nil || p.Question == nil || p.Answer == nil {
			return nil, shapeError(ShapeFlashcards, raw, fmt.Errorf("element %d: topic, question, and answer are required", i+1))
		}
		cards = append(cards, models.Flashcard{
			Topic:    *p.Topic,
			Question: *p.Question,
			Answer:   *p.Answer,
		})
	}
	return cards, nil
}

// ── Pipeline ─────────────────────────────────────────────

func decodeArray(shape Shape, raw string) ([]json.RawMessage, error) {
	cleaned := extractArray(stripCodeFences(raw))
	repaired := repairStringFields(cleaned)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(repaired), &elements); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, shapeError(shape, raw, errors.New("expected a JSON array"))
		}
		return nil, &DecodeError{Shape: shape, Kind: KindMalformed, Snippet: snippet(raw), Err: err}
	}
	return elements, nil
}

func shapeError(shape Shape, raw string, err error) *DecodeError {
	return &DecodeError{Shape: shape, Kind: KindShape, Snippet: snippet(raw), Err: err}
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > snippetLimit {
		return s[:snippetLimit]
	}
	return s
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Drop the opening fence and its optional language tag.
		if idx := strings.IndexByte(s, '\n'); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// extractArray slices the text down to the outermost array literal,
// discarding any leading or trailing prose. Left unchanged when no
// bracket pair is found.
func extractArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// ── Field-Scoped Repair ──────────────────────────────────

// repairedFields are the string fields whose values get the repair pass.
// Fields outside this set (ids, option arrays) pass through untouched.
var repairedFields = map[string]bool{
	"question":    true,
	"answer":      true,
	"topic":       true,
	"explanation": true,
}

const escapedQuoteMarker = "__ESCAPED_QUOTE__"

// repairStringFields normalizes the values of recognized string fields:
// literal newlines, carriage returns, and tabs become single spaces, and
// bare double quotes are escaped. Quotes that are already escaped are
// protected from double-escaping by a marker round trip. Already-valid
// input passes through byte-identical.
func repairStringFields(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		valStart, ok := matchFieldOpen(s, i)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}

		valEnd := findValueEnd(s, valStart)
		if valEnd == -1 {
			// No plausible closing quote; leave the rest untouched and let
			// the parser report it.
			b.WriteString(s[i:])
			return b.String()
		}

		b.WriteString(s[i:valStart])
		b.WriteString(sanitizeValue(s[valStart:valEnd]))
		b.WriteByte('"')
		i = valEnd + 1
	}
	return b.String()
}

// matchFieldOpen reports whether position i starts a recognized field
// opening of the form `"key": "`. Returns the index of the first value byte.
func matchFieldOpen(s string, i int) (int, bool) {
	if s[i] != '"' {
		return 0, false
	}
	keyEnd := strings.IndexByte(s[i+1:], '"')
	if keyEnd == -1 {
		return 0, false
	}
	key := s[i+1 : i+1+keyEnd]
	if !repairedFields[key] {
		return 0, false
	}

	j := i + 1 + keyEnd + 1
	j = skipSpaces(s, j)
	if j >= len(s) || s[j] != ':' {
		return 0, false
	}
	j = skipSpaces(s, j+1)
	if j >= len(s) || s[j] != '"' {
		return 0, false
	}
	return j + 1, true
}

// findValueEnd locates the closing quote of a string value: an unescaped
// quote whose next non-space character is a structural delimiter. A quote
// in the middle of a sentence does not qualify, which is what lets the
// repair pass keep scanning across it.
func findValueEnd(s string, start int) int {
	for j := start; j < len(s); j++ {
		if s[j] != '"' || escaped(s, j) {
			continue
		}
		k := skipSpaces(s, j+1)
		if k >= len(s) || s[k] == ',' || s[k] == '}' || s[k] == ']' {
			return j
		}
	}
	return -1
}

// escaped reports whether the byte at position j is preceded by an odd
// number of backslashes.
func escaped(s string, j int) bool {
	n := 0
	for k := j - 1; k >= 0 && s[k] == '\\'; k-- {
		n++
	}
	return n%2 == 1
}

func skipSpaces(s string, j int) int {
	for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
		j++
	}
	return j
}

func sanitizeValue(v string) string {
	v = strings.ReplaceAll(v, "\r\n", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\t", " ")
	v = strings.ReplaceAll(v, `\"`, escapedQuoteMarker)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, escapedQuoteMarker, `\"`)
	return v
}

// ── Shape Validation ─────────────────────────────────────

func missingQuestionFields(p questionPayload) string {
	switch {
	case p.ID == nil:
		return "id"
	case p.Question == nil:
		return "question"
	case p.Options == nil:
		return "options"
	case p.CorrectAnswer == nil:
		return "correctAnswer"
	case p.Topic == nil:
		return "topic"
	case p.Explanation == nil:
		return "explanation"
	}
	return ""
}

func validateQuestions(questions []models.Question) error {
	var errs []string
	seen := make(map[string]bool)

	for i, q := range questions {
		qNum := i + 1

		if seen[q.ID] {
			errs = append(errs, fmt.Sprintf("question %d: duplicate id %q", qNum, q.ID))
		}
		seen[q.ID] = true

		if len(q.Options) != models.OptionCount {
			errs = append(errs, fmt.Sprintf("question %d: expected %d options, got %d", qNum, models.OptionCount, len(q.Options)))
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= models.OptionCount {
			errs = append(errs, fmt.Sprintf("question %d: correctAnswer %d out of range [0,%d]", qNum, q.CorrectAnswer, models.OptionCount-1))
		}
		if q.Question == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty question text", qNum))
		}
		if q.Topic == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty topic", qNum))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
