package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockClient serves canned responses for local development without an API
// key. It sniffs the prompt to decide which of the three generation
// contracts is being exercised.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	var content string
	switch {
	case strings.Contains(userPrompt, "flashcard"):
		content = buildMockFlashcardsJSON(userPrompt)
	case strings.Contains(userPrompt, "multiple choice"):
		content = buildMockQuestionsJSON()
	default:
		content = buildMockSummaryJSON()
	}

	return &LLMResponse{
		Content:      content,
		PromptTokens: 1200,
		OutputTokens: 900,
	}, nil
}

var mockTopics = []string{
	"cell structure", "energy metabolism", "genetic inheritance",
	"protein synthesis", "membrane transport",
}

func buildMockSummaryJSON() string {
	points := make([]string, len(mockTopics))
	for i, topic := range mockTopics {
		points[i] = fmt.Sprintf(`"[Mock] The document explains %s and its role in the overall system."`, topic)
	}
	// Wrapped in a fence on purpose — the decoder must cope with it.
	return "```json\n[" + strings.Join(points, ",") + "]\n```"
}

func buildMockQuestionsJSON() string {
	var questions []string
	for i := 0; i < 10; i++ {
		topic := mockTopics[i%len(mockTopics)]
		correct := i % 4
		options := make([]string, 4)
		for j := range options {
			label := "an unrelated process"
			if j == correct {
				label = "the mechanism described in the document"
			}
			options[j] = fmt.Sprintf(`"[Mock] Option %d describes %s."`, j+1, label)
		}
		questions = append(questions, fmt.Sprintf(
			`{"id":"q%d","question":"[Mock] Which statement best describes %s?","options":[%s],"correctAnswer":%d,"topic":"%s","explanation":"[Mock] The correct option restates the document passage about %s."}`,
			i+1, topic, strings.Join(options, ","), correct, topic, topic))
	}
	return "[" + strings.Join(questions, ",") + "]"
}

func buildMockFlashcardsJSON(userPrompt string) string {
	// One card per entry on the "Topics:" line of the prompt.
	topics := mockTopics[:1]
	for _, line := range strings.Split(userPrompt, "\n") {
		if rest, ok := strings.CutPrefix(line, "Topics: "); ok {
			topics = strings.Split(rest, ", ")
			break
		}
	}

	var cards []string
	for i, entry := range topics {
		topic := entry
		if _, after, ok := strings.Cut(entry, ". "); ok {
			topic = after
		}
		cards = append(cards, fmt.Sprintf(
			`{"id":"fc%d","topic":"%s","question":"[Mock] What is the key idea of %s?","answer":"[Mock] It is the central process covered in the document.","mastered":false}`,
			i+1, topic, topic))
	}
	return "[" + strings.Join(cards, ",") + "]"
}
