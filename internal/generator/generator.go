package generator

import (
	"context"
	"log"

	"github.com/studycycle/backend/internal/decode"
	"github.com/studycycle/backend/internal/models"
)

// maxQuestions is the question set size. Over-production is truncated to
// the first maxQuestions; under-production is accepted as-is.
const maxQuestions = 10

// Generator wraps an LLMClient with the three generation contracts of the
// learning cycle: summary points, question set, flashcards. Each call is a
// single attempt — a failure surfaces as a GenerationError or DecodeError
// and the user repeats the step.
type Generator struct {
	llm   LLMClient
	model string
}

func NewGenerator() *Generator {
	llm, model := NewClient()
	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateSummary produces 5-10 key takeaways from the document text.
func (g *Generator) GenerateSummary(ctx context.Context, content string) ([]string, error) {
	resp, err := g.llm.Generate(ctx, SystemPrompt(), BuildSummaryPrompt(content))
	if err != nil {
		return nil, &GenerationError{Step: "summary", Err: err}
	}

	points, err := decode.Summary(resp.Content)
	if err != nil {
		logDecodeFailure("summary", err)
		return nil, err
	}
	return points, nil
}

// GenerateQuestions produces the multiple-choice question set for the given
// summary points, truncated to the first maxQuestions when the model
// over-produces.
func (g *Generator) GenerateQuestions(ctx context.Context, summary []string) ([]models.Question, error) {
	resp, err := g.llm.Generate(ctx, SystemPrompt(), BuildQuestionsPrompt(summary))
	if err != nil {
		return nil, &GenerationError{Step: "questions", Err: err}
	}

	questions, err := decode.Questions(resp.Content)
	if err != nil {
		logDecodeFailure("questions", err)
		return nil, err
	}

	if len(questions) > maxQuestions {
		log.Printf("[generator] model returned %d questions, truncating to %d", len(questions), maxQuestions)
		questions = questions[:maxQuestions]
	}
	return questions, nil
}

// GenerateFlashcards produces one flashcard per topic. An empty topic list
// short-circuits without a generative call.
func (g *Generator) GenerateFlashcards(ctx context.Context, topics []string) ([]models.Flashcard, error) {
	if len(topics) == 0 {
		return []models.Flashcard{}, nil
	}

	resp, err := g.llm.Generate(ctx, SystemPrompt(), BuildFlashcardsPrompt(topics))
	if err != nil {
		return nil, &GenerationError{Step: "flashcards", Err: err}
	}

	cards, err := decode.Flashcards(resp.Content)
	if err != nil {
		logDecodeFailure("flashcards", err)
		return nil, err
	}
	return cards, nil
}

func logDecodeFailure(step string, err error) {
	if decodeErr, ok := err.(*decode.DecodeError); ok {
		log.Printf("[generator] %s decode failed (%s): %v\nsnippet: %s", step, decodeErr.Kind, decodeErr.Err, decodeErr.Snippet)
		return
	}
	log.Printf("[generator] %s response rejected: %v", step, err)
}
