package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"debatecraft/models"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"google.golang.org/genai"
)

const maxFeedbackItems = 3

// feedbackResponseSchema is sent with every scoring request so the model
// emits the fixed feedback shape directly.
var feedbackResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":             {Type: genai.TypeInteger},
		"strengths":         {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"improvements":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"fallaciesDetected": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"suggestions":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"score", "strengths", "improvements", "fallaciesDetected", "suggestions"},
}

// feedbackSchemaDef is the same contract as a JSON Schema, used to validate
// what actually came back before it is trusted.
var feedbackSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"score":             map[string]any{"type": "number"},
		"strengths":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"improvements":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"fallaciesDetected": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"suggestions":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"score", "strengths", "improvements", "fallaciesDetected", "suggestions"},
}

var (
	compileFeedbackSchemaOnce sync.Once
	compiledFeedbackSchema    *jsonschema.Schema
	compileFeedbackSchemaErr  error
)

func feedbackSchema() (*jsonschema.Schema, error) {
	compileFeedbackSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://feedback.json", feedbackSchemaDef); err != nil {
			compileFeedbackSchemaErr = err
			return
		}
		compiledFeedbackSchema, compileFeedbackSchemaErr = c.Compile("schema://feedback.json")
	})
	return compiledFeedbackSchema, compileFeedbackSchemaErr
}

// cleanModelOutput strips surrounding whitespace and code fences that models
// like to wrap structured payloads in.
func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// extractJSONObject trims any prose around the outermost {...} block.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}

// parseFeedback turns raw model output into a validated Feedback. The score
// is clamped to [0,100]; the three advice lists are capped at three entries.
// Anything that still fails after stripping is ErrMalformedResponse.
func parseFeedback(raw string) (*models.Feedback, error) {
	payload := extractJSONObject(cleanModelOutput(raw))

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	schema, err := feedbackSchema()
	if err != nil {
		return nil, fmt.Errorf("compile feedback schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var fb models.Feedback
	if err := json.Unmarshal([]byte(payload), &fb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if fb.Score < 0 {
		fb.Score = 0
	}
	if fb.Score > 100 {
		fb.Score = 100
	}
	fb.Strengths = capItems(fb.Strengths)
	fb.Improvements = capItems(fb.Improvements)
	fb.Suggestions = capItems(fb.Suggestions)
	return &fb, nil
}

func capItems(items []string) []string {
	if len(items) > maxFeedbackItems {
		return items[:maxFeedbackItems]
	}
	return items
}
