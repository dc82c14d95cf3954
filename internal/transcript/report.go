package transcript

import "strings"

// summaryTurns is how many trailing turns the report summary renders.
const summaryTurns = 3

// Report is a derived view of a transcript. It has no lifecycle of its own
// and is recomputed from a snapshot on every request.
type Report struct {
	Industry      string `json:"industry,omitempty"`
	Level         string `json:"level,omitempty"`
	QuestionCount int    `json:"questionCount"`
	AnswerCount   int    `json:"answerCount"`
	Summary       string `json:"summary"`
}

// BuildReport computes turn counts and a short role-labelled summary of the
// last few turns. It is a pure function: the same snapshot always yields the
// same report.
func BuildReport(industry, level string, turns []Turn) Report {
	report := Report{Industry: industry, Level: level}

	for _, turn := range turns {
		switch turn.Role {
		case RoleAI:
			report.QuestionCount++
		case RoleCandidate:
			report.AnswerCount++
		}
	}

	report.Summary = summarize(turns)
	return report
}

func summarize(turns []Turn) string {
	if len(turns) == 0 {
		return "No conversation"
	}

	start := len(turns) - summaryTurns
	if start < 0 {
		start = 0
	}

	parts := make([]string, 0, summaryTurns)
	for _, turn := range turns[start:] {
		label := "You"
		if turn.Role == RoleAI {
			label = "AI"
		}
		parts = append(parts, label+": "+turn.Text)
	}
	return strings.Join(parts, " | ")
}
