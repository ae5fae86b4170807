package generator

import (
	"fmt"
	"strings"
)

// maxDocumentChars bounds how much document text goes into the summary
// prompt, to stay under rate limits.
const maxDocumentChars = 15000

func SystemPrompt() string {
	return "You are a study assistant. You respond with valid JSON only, no additional text."
}

// BuildSummaryPrompt asks for 5-10 key takeaways from the document text as
// a JSON array of strings.
func BuildSummaryPrompt(content string) string {
	if len(content) > maxDocumentChars {
		content = content[:maxDocumentChars]
	}

	return fmt.Sprintf(`Analyze the following document and extract 5-10 key takeaways. Present them as a JSON array of strings, where each string is a clear, concise main point from the document. Format your response as valid JSON only, with no additional text.

Document:
%s

Return format: ["key point 1", "key point 2", ...]`, content)
}

// BuildQuestionsPrompt asks for exactly 10 four-option multiple-choice
// questions over the given key takeaways.
func BuildQuestionsPrompt(summary []string) string {
	var points strings.Builder
	for i, point := range summary {
		fmt.Fprintf(&points, "%d. %s\n", i+1, point)
	}

	return fmt.Sprintf(`Based on the following key takeaways from a document, generate exactly 10 multiple choice questions that test understanding (not just memorization). Each question should have 4 options with only one correct answer.

Key Takeaways:
%s
Return the questions as a JSON array with this exact structure:
[
  {
    "id": "q1",
    "question": "question text",
    "options": ["option A", "option B", "option C", "option D"],
    "correctAnswer": 0,
    "topic": "which key takeaway this relates to",
    "explanation": "why the correct answer is correct"
  }
]

Generate exactly 10 questions. Return only valid JSON with no additional text.`, points.String())
}

// BuildFlashcardsPrompt asks for exactly one flashcard per supplied topic.
// The rules about simple words and no quotes reduce JSON-escaping defects
// in the response, but the decoder still repairs whatever comes back.
func BuildFlashcardsPrompt(topics []string) string {
	var list strings.Builder
	for i, topic := range topics {
		if i > 0 {
			list.WriteString(", ")
		}
		fmt.Fprintf(&list, "%d. %s", i+1, topic)
	}

	return fmt.Sprintf(`Create ONE simple flashcard for each topic.

Topics: %s

Return ONLY valid JSON array:
[
  {
    "id": "fc1",
    "topic": "topic name",
    "question": "simple question",
    "answer": "simple answer in 1 sentence, 20 words max",
    "mastered": false
  }
]

CRITICAL RULES:
- Exactly 1 flashcard per topic
- Answers must be under 20 words
- Use ONLY simple words, NO apostrophes, NO quotes
- NO special characters or punctuation except periods
- Return ONLY the JSON array, nothing else`, list.String())
}
