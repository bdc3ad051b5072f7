package prompt

import (
	"strings"

	"github.com/yoockh/buuzzer/internal/models"
)

// HistoryWindow is how many of the most recent turns are shown to the model.
const HistoryWindow = 5

// RenderExamples renders the candidate's sample answers as style references.
func RenderExamples(examples []models.ExampleAnswer) string {
	if len(examples) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(examples))
	for _, ex := range examples {
		blocks = append(blocks, "\nQ: \""+ex.Question+"\"\nA: \""+ex.Answer+"\"\n")
	}

	var b strings.Builder
	b.WriteString("\nEXAMPLE ANSWER STYLES (for reference only)\n")
	b.WriteString(strings.Join(blocks, "\n"))
	b.WriteString("\n")
	return b.String()
}

// RecentHistory returns at most HistoryWindow entries from the end of history,
// most recent first. The input is not modified.
func RecentHistory(history []models.InterviewResponse) []models.InterviewResponse {
	start := len(history) - HistoryWindow
	if start < 0 {
		start = 0
	}
	tail := history[start:]

	out := make([]models.InterviewResponse, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out
}

// RenderHistory renders the rolling interview context block.
func RenderHistory(history []models.InterviewResponse) string {
	recent := RecentHistory(history)
	if len(recent) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(recent))
	for _, h := range recent {
		blocks = append(blocks, "\nInterviewer: \""+h.QuestionContext+"\"\nCandidate: \""+h.Answer+"\"\n")
	}

	var b strings.Builder
	b.WriteString("\nRECENT INTERVIEW CONTEXT\n")
	b.WriteString(strings.Join(blocks, "\n"))
	b.WriteString("\n")
	return b.String()
}
