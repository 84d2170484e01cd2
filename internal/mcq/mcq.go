// Package mcq generates multiple-choice question sets with a hosted language
// model and validates what comes back.
package mcq

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/muhammadolammi/facultyhire/internal/llm"
)

const parseFailureMessage = "Failed to parse generated content"

// MCQ is one question with four labeled options and the correct letter.
type MCQ struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// ParseFailure is returned to clients when model output is not a valid MCQ list.
type ParseFailure struct {
	Error        string `json:"error"`
	ResponseText string `json:"response_text"`
	Exception    string `json:"exception"`
}

// Result holds either a question set or the failure describing why the model
// output was rejected.
type Result struct {
	Questions []MCQ
	Failure   *ParseFailure
	Cached    bool
}

// Payload is what the HTTP layer serializes.
func (r *Result) Payload() any {
	if r.Failure != nil {
		return r.Failure
	}
	return r.Questions
}

var questionSetSchema = gojsonschema.NewStringLoader(`{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["question", "options", "answer"],
    "properties": {
      "question": {"type": "string", "minLength": 1},
      "options": {
        "type": "array",
        "minItems": 4,
        "maxItems": 4,
        "items": {"type": "string", "minLength": 1}
      },
      "answer": {"type": "string", "pattern": "^\\s*[A-Da-d]\\s*$"}
    }
  }
}`)

// BuildPrompt renders the question-generation prompt.
func BuildPrompt(topic string, count int) string {
	return fmt.Sprintf(`
You are an expert educator in %[1]s. Generate %[2]d multiple-choice questions (MCQs) strictly on the topic of %[1]s.
For each question, provide:
- A clear question statement.
- Four answer options labeled A, B, C, and D.
- The correct answer letter.
Return the output as a JSON list in this format:
[
    {"question": "Question text", "options": ["A. Option1", "B. Option2", "C. Option3", "D. Option4"], "answer": "B"}
]
`, topic, count)
}

// Parse cleans model output and validates it as a question list. It never
// returns an error: invalid output is described by the Result's Failure.
// Well-formed JSON that does not match the question schema (for example a
// question with three options) is also reported as a Failure, with the
// schema violations as the exception text.
func Parse(raw string) *Result {
	cleaned := llm.CleanResponse(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return failure(raw, err.Error())
	}

	validation, err := gojsonschema.Validate(questionSetSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return failure(raw, err.Error())
	}
	if !validation.Valid() {
		msgs := make([]string, 0, len(validation.Errors()))
		for _, e := range validation.Errors() {
			msgs = append(msgs, e.String())
		}
		return failure(raw, strings.Join(msgs, "; "))
	}

	var questions []MCQ
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return failure(raw, err.Error())
	}
	for i := range questions {
		questions[i].Answer = strings.ToUpper(strings.TrimSpace(questions[i].Answer))
	}
	return &Result{Questions: questions}
}

func failure(raw, exception string) *Result {
	return &Result{Failure: &ParseFailure{
		Error:        parseFailureMessage,
		ResponseText: raw,
		Exception:    exception,
	}}
}
