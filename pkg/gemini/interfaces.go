package gemini

import (
	"context"

	"google.golang.org/genai"
)

// Generator is the slice of the genai Models service the client uses.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Cache stores raw suggestion payloads by key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte)
}

// ZoneValidator rejects identifiers that do not resolve.
type ZoneValidator interface {
	Validate(id string) error
}
