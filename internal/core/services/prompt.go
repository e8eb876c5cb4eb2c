package services

import (
	"strings"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// ragPromptTemplate is the single-shot prompt sent per chat turn.
// Retrieved context, formatted history and the current question are
// substituted into the placeholders.
const ragPromptTemplate = `You are a helpful AI assistant. Use the following context retrieved from uploaded documents to answer the user's question. If the context doesn't contain the answer, state that you couldn't find the information in the provided documents.

Context:
---
{context}
---

Chat History:
---
{chatHistory}
---

User Question: {question}

Answer:`

// Placeholder strings substituted when a section is empty.
const (
	noContextPlaceholder = "No relevant context found in documents."
	noHistoryPlaceholder = "No previous messages."
)

// assemblePrompt substitutes context, history and question into the
// prompt template.
func assemblePrompt(matches []driven.VectorMatch, history []domain.ChatMessage, question string) string {
	prompt := strings.Replace(ragPromptTemplate, "{context}", renderContext(matches), 1)
	prompt = strings.Replace(prompt, "{chatHistory}", renderHistory(history), 1)
	return strings.Replace(prompt, "{question}", question, 1)
}

// renderContext joins retrieved chunk texts in the order the store
// returned them (descending score), separated by blank lines.
func renderContext(matches []driven.VectorMatch) string {
	texts := make([]string, 0, len(matches))
	for _, match := range matches {
		if match.Metadata.Text != "" {
			texts = append(texts, match.Metadata.Text)
		}
	}
	if len(texts) == 0 {
		return noContextPlaceholder
	}
	return strings.Join(texts, "\n\n")
}

// renderHistory formats prior messages as one "role: content" line each.
func renderHistory(history []domain.ChatMessage) string {
	if len(history) == 0 {
		return noHistoryPlaceholder
	}
	lines := make([]string, len(history))
	for i, msg := range history {
		lines[i] = msg.Render()
	}
	return strings.Join(lines, "\n")
}
