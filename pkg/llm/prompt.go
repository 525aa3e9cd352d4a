package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer strictly from the provided
// context and to close with the suggestions block the composer parses.
func SystemPrompt(owner string) string {
	if owner == "" {
		owner = "the portfolio owner"
	}

	return fmt.Sprintf(
		"You are a helpful and professional AI assistant for %s's portfolio. "+
			"You answer questions based strictly on the provided context. "+
			"If the answer is not in the context, politely say you don't know.\n\n"+
			"IMPORTANT: At the very end of your response, strictly following the main answer, "+
			"generate exactly 3 short, relevant follow-up questions that the user might want to ask next based on the context. "+
			"Format them exactly like this:\n"+
			"<<SUGGESTIONS>>\n"+
			"Question 1\n"+
			"Question 2\n"+
			"Question 3",
		owner)
}

// UserContent renders the grounding context, flattened history, and
// query as a single user message.
func UserContent(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Context:\n%s\n\n", req.Context)

	if len(req.History) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range req.History {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question:\n%s", req.Query)

	return b.String()
}
