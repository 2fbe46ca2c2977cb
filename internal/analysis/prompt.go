package analysis

import (
	"fmt"
	"strings"

	"github.com/trainlog/trainlog/internal/database"
)

// NoTrainingsMessage is returned instead of a generated summary when the window is empty.
const NoTrainingsMessage = "No trainings recorded in the last 30 days. Log a few sessions and come back for an analysis of your progress."

const promptTemplate = `You are an experienced athletics coach. Analyze the training log of an athlete from the last %d days.

Training log:
%s

Write a short summary of at most 3 paragraphs covering:
1. overall training volume and consistency,
2. how the athlete felt and what that says about recovery,
3. concrete recommendations for the coming weeks.

Format the answer as Markdown.`

// FormatTraining renders one session as a single prompt line.
func FormatTraining(t database.Training) string {
	line := fmt.Sprintf("- %s: %s, %d min, feeling: %s",
		t.Date.UTC().Format("2006-01-02"), t.Type, t.DurationMinutes, t.Feeling)
	if notes := strings.Join(strings.Fields(t.Notes), " "); notes != "" {
		line += ", " + notes
	}
	return line
}

// BuildPrompt embeds the sessions, in the order given, into the coach prompt.
func BuildPrompt(trainings []database.Training, windowDays int) string {
	lines := make([]string, 0, len(trainings))
	for _, t := range trainings {
		lines = append(lines, FormatTraining(t))
	}
	return fmt.Sprintf(promptTemplate, windowDays, strings.Join(lines, "\n"))
}
