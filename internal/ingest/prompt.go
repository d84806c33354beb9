package ingest

import (
	"fmt"

	"github.com/markis/flashdeck/internal/deck"
	"github.com/markis/flashdeck/internal/document"
	"google.golang.org/genai"
)

// Persona is the first turn of every new conversation.
const Persona = `You are a flashcard generator. Create unique and educational flashcards based on the uploaded document. Output ONLY JSON objects, one per line, each containing a "question" and an "answer" key. Example:
{"question": "Q1?", "answer": "A1"}
{"question": "Q2?", "answer": "A2"}
Do not include any other text, explanations, markdown formatting, or JSON array brackets. Ensure questions are unique and different from previous ones in the chat history.`

const lineFormat = `Output ONLY JSON objects, one per line, like {"question": "Q", "answer": "A"}. Do not repeat questions.`

// firstTurn asks for the opening batch and carries the document itself.
func firstTurn(doc *document.Document, n int) *genai.Content {
	return &genai.Content{
		Role: deck.RoleRequester,
		Parts: []*genai.Part{
			{Text: fmt.Sprintf("Generate %d flashcards from this document. %s", n, lineFormat)},
			{InlineData: &genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data}},
		},
	}
}

// followUpTurn asks for another batch, relying on the document sent earlier
// in the conversation.
func followUpTurn(n int) *genai.Content {
	text := fmt.Sprintf("Generate %d more unique flashcards based on the document provided earlier. %s", n, lineFormat)
	return deck.TextTurn(deck.RoleRequester, text)
}

// NewSession starts a session for a freshly selected document, seeded with
// the persona turn.
func NewSession(maxCards int) *deck.Session {
	return deck.NewSession(maxCards, Persona)
}
