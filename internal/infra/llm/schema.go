package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"askme-quiz-service/internal/domain"
	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
)

// ResponseSchema is the JSON shape requested from the completion service. It is quoted
// verbatim in the system prompt and, in strict mode, enforced on the reply.
var ResponseSchema = fmt.Sprintf(`{
    "type": "object",
    "properties": {
        "items": {
            "type": "array",
            "minItems": %[1]d,
            "maxItems": %[1]d,
            "items": {
                "type": "object",
                "properties": {
                    "question": {
                        "title": "Question",
                        "type": "string",
                        "description": "The actual question text"
                    },
                    "options": {
                        "title": "Options",
                        "type": "array",
                        "items": { "type": "string" },
                        "minItems": %[2]d,
                        "maxItems": %[2]d,
                        "uniqueItems": true,
                        "description": "Array of %[2]d possible answer choices"
                    },
                    "answer": {
                        "title": "Answer",
                        "type": "string",
                        "description": "The correct answer (must be one of the options)"
                    }
                },
                "required": ["question", "options", "answer"]
            }
        }
    },
    "required": ["items"]
}`, domain.QuestionsPerQuiz, domain.OptionsPerQuestion)

type quizPayload struct {
	Items *[]domain.QuizQuestion `json:"items"`
}

// parseQuestions decodes a completion into questions. Only the shape is checked.
func parseQuestions(content string) ([]domain.QuizQuestion, error) {
	var payload quizPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("completion has no items array")
	}
	return *payload.Items, nil
}

// strictValidator enforces ResponseSchema plus the rule that every answer is one of its options.
type strictValidator struct {
	schema *gojsonschema.Schema
}

func newStrictValidator() (*strictValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(ResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &strictValidator{schema: schema}, nil
}

func (v *strictValidator) validate(content string, questions []domain.QuizQuestion) error {
	result, err := v.schema.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		return fmt.Errorf("validate completion: %w", err)
	}
	if !result.Valid() {
		messages := lo.Map(result.Errors(), func(e gojsonschema.ResultError, _ int) string {
			return e.String()
		})
		return fmt.Errorf("completion failed schema validation: %s", strings.Join(messages, "; "))
	}
	for i, q := range questions {
		if !lo.Contains(q.Options, q.Answer) {
			return fmt.Errorf("question %d: answer %q is not one of its options", i+1, q.Answer)
		}
	}
	return nil
}
