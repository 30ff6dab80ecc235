// Package gemini asks Google's Gemini models for the time zone of a place name
// when neither the city catalog nor geocoding can resolve it.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/genai"
)

const (
	defaultModel    = "gemini-2.5-flash-lite"
	defaultLocation = "us-central1"
)

var (
	// ErrNoSuggestion is returned when the model answers without a usable zone.
	ErrNoSuggestion = errors.New("gemini returned no time zone")

	// ErrNotConfigured is returned when neither an API key nor a GCP project is set.
	ErrNotConfigured = errors.New("gemini not configured: set GEMINI_API_KEY or GCP_PROJECT")
)

// Suggestion is the model's answer for a place.
type Suggestion struct {
	Zone       string `json:"detected_timezone"`
	Location   string `json:"detected_location"`
	Confidence string `json:"confidence_level"` // "high", "medium", or "low"
	Reasoning  string `json:"detection_reasoning"`
}

// Client suggests zones for place names.
type Client struct {
	generator  Generator
	cache      Cache
	validator  ZoneValidator
	logger     *slog.Logger
	apiKey     string
	model      string
	gcpProject string
	attempts   uint
	delay      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithGenerator replaces the genai backend, mainly for tests.
func WithGenerator(g Generator) Option {
	return func(c *Client) {
		c.generator = g
	}
}

// WithCache stores answers so the same place is only asked once.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithValidator rejects suggestions that do not resolve locally.
func WithValidator(v ZoneValidator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// WithRetry overrides the retry policy for transient API errors.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient creates a Gemini client. With an API key it talks to the Gemini API;
// otherwise it uses Vertex AI with application default credentials in gcpProject.
func NewClient(apiKey, model, gcpProject string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = defaultModel
	}
	c := &Client{
		apiKey:     apiKey,
		model:      strings.TrimPrefix(model, "models/"),
		gcpProject: gcpProject,
		logger:     logger,
		attempts:   4,
		delay:      100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SuggestZone asks the model for the IANA zone of place.
func (c *Client) SuggestZone(ctx context.Context, place string) (*Suggestion, error) {
	place = strings.TrimSpace(place)
	key := fmt.Sprintf("genai:%s:%s", c.model, strings.ToLower(place))

	if s := c.cached(key); s != nil {
		return s, nil
	}

	gen, err := c.backend(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.generate(ctx, gen, ZonePrompt(place))
	if err != nil {
		return nil, err
	}

	s, err := c.parse(resp)
	if err != nil {
		return nil, fmt.Errorf("suggest zone for %q: %w", place, err)
	}
	if c.validator != nil {
		if err := c.validator.Validate(s.Zone); err != nil {
			c.logger.Warn("Gemini suggested an unknown zone", "place", place, "zone", s.Zone)
			return nil, fmt.Errorf("suggest zone for %q: %w", place, err)
		}
	}

	if c.cache != nil {
		if data, err := json.Marshal(s); err == nil {
			c.cache.Set(key, data)
		}
	}
	c.logger.Debug("Gemini zone suggestion", "place", place, "zone", s.Zone, "confidence", s.Confidence)
	return s, nil
}

func (c *Client) cached(key string) *Suggestion {
	if c.cache == nil {
		return nil
	}
	data, found := c.cache.Get(key)
	if !found {
		return nil
	}
	var s Suggestion
	if err := json.Unmarshal(data, &s); err != nil || s.Zone == "" {
		c.logger.Debug("ignoring unusable cached Gemini response", "error", err)
		return nil
	}
	c.logger.Debug("Gemini cache hit", "zone", s.Zone)
	return &s
}

// backend returns the injected generator or builds a genai client.
func (c *Client) backend(ctx context.Context) (Generator, error) {
	if c.generator != nil {
		return c.generator, nil
	}

	var config *genai.ClientConfig
	switch {
	case c.apiKey != "":
		config = &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  c.apiKey,
		}
	case c.projectID() != "":
		config = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  c.projectID(),
			Location: defaultLocation,
		}
		c.logger.Debug("Using Vertex AI with Application Default Credentials", "project", config.Project)
	default:
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.generator = client.Models
	return c.generator, nil
}

func (c *Client) projectID() string {
	if c.gcpProject != "" {
		return c.gcpProject
	}
	if p := os.Getenv("GCP_PROJECT"); p != "" {
		return p
	}
	return os.Getenv("GOOGLE_CLOUD_PROJECT")
}

func (c *Client) generate(ctx context.Context, gen Generator, prompt string) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	temperature := float32(0.1)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  512,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	var resp *genai.GenerateContentResponse
	err := retry.Do(
		func() error {
			var err error
			resp, err = gen.GenerateContent(ctx, c.model, contents, config)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransientError),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("Retrying Gemini API call", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return resp, nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"detected_timezone": {
				Type:        genai.TypeString,
				Description: "IANA time zone identifier, e.g. 'America/New_York', 'Europe/London', 'Asia/Tokyo'",
			},
			"confidence_level": {
				Type:        genai.TypeString,
				Enum:        []string{"high", "medium", "low"},
				Description: "high when the place maps to one zone, low when it spans several",
			},
			"detected_location": {
				Type:        genai.TypeString,
				Description: "The place that was resolved, e.g. 'Porto, Portugal'",
			},
			"detection_reasoning": {
				Type:        genai.TypeString,
				Description: "One sentence explaining the choice",
			},
		},
		PropertyOrdering: []string{"detected_timezone", "confidence_level", "detected_location", "detection_reasoning"},
		Required:         []string{"detected_timezone", "confidence_level", "detected_location", "detection_reasoning"},
	}
}

// isTransientError determines if an error should trigger a retry.
func isTransientError(err error) bool {
	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "502", "503", "504",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

func (c *Client) parse(resp *genai.GenerateContentResponse) (*Suggestion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrNoSuggestion)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 || candidate.Content.Parts[0].Text == "" {
		return nil, fmt.Errorf("%w: no content", ErrNoSuggestion)
	}
	text := candidate.Content.Parts[0].Text
	c.logger.Debug("Raw Gemini response", "response_text", text)

	jsonText, err := extractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSuggestion, err)
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(jsonText), &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSuggestion, err)
	}

	s.Zone = strings.TrimSpace(s.Zone)
	s.Location = strings.TrimSpace(strings.ReplaceAll(s.Location, "\n", " "))
	s.Reasoning = strings.TrimSpace(strings.ReplaceAll(s.Reasoning, "\n", " "))
	if s.Zone == "" {
		return nil, fmt.Errorf("%w: missing detected_timezone", ErrNoSuggestion)
	}
	return &s, nil
}

// extractJSON pulls a JSON object out of text that may be wrapped in a code fence.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if isValidJSON(text) {
		return text, nil
	}

	for _, fence := range []string{"```json", "```"} {
		if start := strings.Index(text, fence); start != -1 {
			start += len(fence)
			if end := strings.Index(text[start:], "```"); end != -1 {
				if candidate := strings.TrimSpace(text[start : start+end]); isValidJSON(candidate) {
					return candidate, nil
				}
			}
		}
	}

	if start := strings.Index(text, "{"); start != -1 {
		if end := strings.LastIndex(text, "}"); end > start {
			if candidate := text[start : end+1]; isValidJSON(candidate) {
				return candidate, nil
			}
		}
	}
	return "", errors.New("no valid JSON found in response")
}

func isValidJSON(s string) bool {
	var js map[string]any
	return json.Unmarshal([]byte(s), &js) == nil
}
