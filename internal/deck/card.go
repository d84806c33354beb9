// Package deck holds flashcards and the study session they belong to.
package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Card is a single question/answer flashcard. Cards are never mutated once
// accepted into a session.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ErrInvalidCard is returned when a line of model output is not a card.
var ErrInvalidCard = errors.New("invalid card")

// rawCard uses pointers so a missing field can be told apart from an empty one.
type rawCard struct {
	Question *string `json:"question" validate:"required"`
	Answer   *string `json:"answer" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseCard decodes one line of model output. It accepts the line iff it is a
// JSON object with string-typed "question" and "answer" fields. Duplicates of
// earlier cards are not detected here.
func ParseCard(line string) (Card, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Card{}, fmt.Errorf("%w: not a JSON object", ErrInvalidCard)
	}

	var raw rawCard
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}

	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Card{}, fmt.Errorf("%w: missing %s", ErrInvalidCard, strings.ToLower(verrs[0].Field()))
		}
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}

	return Card{Question: *raw.Question, Answer: *raw.Answer}, nil
}
