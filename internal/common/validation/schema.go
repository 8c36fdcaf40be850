package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// chatRequestSchema describes the accepted shape of the chat endpoint body.
// The empty-message rule is a pipeline precondition, not a schema concern,
// so "message" is allowed to be empty here.
const chatRequestSchema = `{
	"type": "object",
	"properties": {
		"message": {"type": "string", "maxLength": 2000}
	},
	"additionalProperties": false
}`

var chatRequestLoader = gojsonschema.NewStringLoader(chatRequestSchema)

// ValidationResult reports schema violations for a request body.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateChatRequest checks a raw JSON body against the chat request schema.
func ValidateChatRequest(body []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(chatRequestLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return &ValidationResult{Valid: false, Errors: msgs}, nil
}

// ErrorSummary joins violations into a single human-readable line.
func (vr *ValidationResult) ErrorSummary() string {
	return strings.Join(vr.Errors, "; ")
}
