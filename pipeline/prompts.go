package pipeline

import "fmt"

// DefaultNextStep is the next-step fallback when analysis is disabled
// or unparseable.
const DefaultNextStep = "Review and follow up"

// AnalyzePrompt asks for a structured JSON triage of the inbound
// message.
func AnalyzePrompt(message string) string {
	return fmt.Sprintf(`Return JSON only:
{
  "summary": "1-2 sentences",
  "priority": "P1|P2|P3|P4",
  "nextStep": "string",
  "questions": ["q1","q2","q3"]
}

Lead message:
%s`, message)
}

// DraftPrompt asks for a plain-text reply draft.
func DraftPrompt(message, summary, priority string) string {
	if summary == "" {
		summary = "(none)"
	}
	if priority == "" {
		priority = "(none)"
	}
	return fmt.Sprintf(`Write a short professional reply. Goal: book a call and ask 1-2 clarifying questions.
Return plain text only.

Lead:
%s

Summary:
%s
Priority:
%s`, message, summary, priority)
}
