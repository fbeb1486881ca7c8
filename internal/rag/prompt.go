package rag

import (
	"fmt"
	"strings"
)

// noContextAnswer is returned without calling the synthesizer when search
// finds nothing relevant.
const noContextAnswer = "I don't have any relevant documentation to answer your question. " +
	"Please make sure the relevant equipment manuals have been ingested."

// answerSystemPrompt steers the synthesizer toward short, actionable
// troubleshooting guidance.
const answerSystemPrompt = `You are a helpful retail equipment support assistant. Your role is to help users troubleshoot equipment issues, find maintenance procedures, understand error codes, and provide guidance based on equipment documentation.

Guidelines:
- For greetings (hi, hello, hey, etc.) or casual conversation, respond briefly and friendly without diving into technical details. Simply greet back and ask how you can help.
- Only provide technical guidance when the user asks a specific question about equipment.
- Provide clear, step-by-step instructions when applicable
- If the documentation mentions safety warnings, always include them
- If you're not sure about something, say so rather than guessing
- Reference specific error codes or procedures when mentioned in the documentation
- Be concise and to the point, brief the answers to max of 5 pointed steps. Each step should be of 1 short sentence.`

// summarizeSystemPrompt steers the summarizer toward actionable support
// summaries.
const summarizeSystemPrompt = `You are a support conversation summarizer. Given a chat conversation, create a concise summary that includes:
1. The main issue or question
2. Key troubleshooting steps attempted
3. Current status/outcome
4. Any error codes or specific equipment mentioned

Keep the summary under 200 words and focus on actionable information.`

const summarizeMaxTokens = 300

// degradedAnswerLimit caps the excerpt of the top passage used when the
// synthesizer is unavailable.
const degradedAnswerLimit = 500

// degradedAnswerPrefix opens every degraded answer and marks the response as
// degraded for audit classification.
const degradedAnswerPrefix = "I found relevant documentation but encountered an error generating a response."

// buildAnswerPrompt assembles the retrieved passages and the question into
// the synthesizer's user prompt. Each passage is tagged with its source
// filename so answers can reference where guidance came from.
func buildAnswerPrompt(contextParts []string, question string) string {
	context := strings.Join(contextParts, "\n\n---\n\n")
	return fmt.Sprintf(`Based on the following documentation excerpts, please answer the user's question.

DOCUMENTATION:
%s

USER QUESTION: %s

Please provide a helpful response based on the documentation above. If the documentation doesn't contain relevant information to answer the question, let the user know.`, context, question)
}

// degradedAnswer builds the fallback answer from the top retrieved passage
// when synthesis fails. The request still succeeds; a shorter answer beats a
// 5xx for the person standing at a broken machine.
func degradedAnswer(topPassage string) string {
	excerpt := topPassage
	if runes := []rune(excerpt); len(runes) > degradedAnswerLimit {
		excerpt = string(runes[:degradedAnswerLimit])
	}
	return fmt.Sprintf("%s Here's a summary of what I found:\n\n%s...", degradedAnswerPrefix, excerpt)
}

// transcript renders chat messages as "User:"/"Assistant:" lines.
func transcript(messages []ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		role := "Assistant"
		if m.Role == "user" {
			role = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// fallbackSummary is used when the synthesizer fails: the tail of the
// conversation verbatim.
func fallbackSummary(messages []ChatMessage) string {
	start := 0
	if len(messages) > 5 {
		start = len(messages) - 5
	}
	lines := make([]string, 0, len(messages)-start)
	for _, m := range messages[start:] {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}
