package generator

import (
	"strings"
	"testing"
)

func TestBuildSummaryPrompt_IncludesDocument(t *testing.T) {
	prompt := BuildSummaryPrompt("Mitochondria are the powerhouse of the cell.")

	if !strings.Contains(prompt, "Mitochondria are the powerhouse of the cell.") {
		t.Error("prompt does not contain the document text")
	}
	if !strings.Contains(prompt, "5-10 key takeaways") {
		t.Error("prompt does not ask for 5-10 key takeaways")
	}
	if !strings.Contains(prompt, "JSON array of strings") {
		t.Error("prompt does not pin the response shape")
	}
}

func TestBuildSummaryPrompt_TruncatesLongDocuments(t *testing.T) {
	content := strings.Repeat("x", maxDocumentChars+5000)

	prompt := BuildSummaryPrompt(content)

	if strings.Contains(prompt, strings.Repeat("x", maxDocumentChars+1)) {
		t.Error("document text was not truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("x", maxDocumentChars)) {
		t.Error("truncation cut below the document limit")
	}
}

func TestBuildQuestionsPrompt_NumbersTakeaways(t *testing.T) {
	prompt := BuildQuestionsPrompt([]string{"cells divide by mitosis", "ATP stores energy"})

	if !strings.Contains(prompt, "1. cells divide by mitosis") {
		t.Error("first takeaway not numbered into the prompt")
	}
	if !strings.Contains(prompt, "2. ATP stores energy") {
		t.Error("second takeaway not numbered into the prompt")
	}
	if !strings.Contains(prompt, "exactly 10 multiple choice questions") {
		t.Error("prompt does not fix the question count")
	}
	if !strings.Contains(prompt, `"correctAnswer": 0`) {
		t.Error("prompt does not show the expected JSON structure")
	}
}

func TestBuildFlashcardsPrompt_ListsTopics(t *testing.T) {
	prompt := BuildFlashcardsPrompt([]string{"cell structure", "photosynthesis"})

	if !strings.Contains(prompt, "Topics: 1. cell structure, 2. photosynthesis") {
		t.Errorf("topics not listed as expected:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Exactly 1 flashcard per topic") {
		t.Error("prompt does not fix one card per topic")
	}
}

func TestSystemPrompt_DemandsJSONOnly(t *testing.T) {
	if !strings.Contains(SystemPrompt(), "valid JSON only") {
		t.Error("system prompt does not demand JSON-only output")
	}
}
