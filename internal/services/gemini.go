package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ReasoningService is the engine's only gateway to the underlying model.
// GenerateJSON wraps every reasoning call uniformly: bounded attempts with
// exponential backoff, a per-attempt timeout, and structured-output
// validation (malformed JSON counts as a failed attempt).
type ReasoningService interface {
	GenerateJSON(ctx context.Context, prompt string, temperature float32, target interface{}) error
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// generateFunc is the raw text-generation call the retry loop drives.
type generateFunc func(ctx context.Context, prompt string, temperature float32) (string, error)

type geminiService struct {
	client       *genai.Client
	modelName    string
	embedModel   string
	maxAttempts  int
	initialDelay time.Duration
	callTimeout  time.Duration
	generate     generateFunc
}

func NewGeminiService(apiKey string, maxAttempts int, initialDelay, callTimeout time.Duration) (ReasoningService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	svc := &geminiService{
		client:       client,
		modelName:    "gemini-2.5-flash",
		embedModel:   "text-embedding-004",
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		callTimeout:  callTimeout,
	}
	svc.generate = svc.generateText

	return svc, nil
}

// GenerateEmbedding implements ReasoningService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateJSON implements ReasoningService.
func (g *geminiService) GenerateJSON(ctx context.Context, prompt string, temperature float32, target interface{}) error {
	var lastErr error
	delay := g.initialDelay

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		response, err := g.generate(ctx, prompt, temperature)
		if err == nil {
			err = ParseJSONResponse(response, target)
			if err == nil {
				return nil
			}
		}

		lastErr = err
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		if attempt < g.maxAttempts {
			log.Printf("⚠️ Attempt %d failed: %v. Retrying...\n", attempt, err)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", g.maxAttempts, lastErr)
}

func (g *geminiService) generateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// ParseJSONResponse unmarshals model output into target, tolerating
// markdown fences and prose around the JSON body.
func ParseJSONResponse(response string, target interface{}) error {
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w\nResponse: %s", err, response)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	// Find JSON object or array boundaries
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
