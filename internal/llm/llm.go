// Package llm wraps the hosted Gemini models used for question generation,
// text analysis and embeddings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/muhammadolammi/facultyhire/internal/metrics"
)

var ErrEmptyResponse = errors.New("empty model response")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a fixed-size vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var fencePattern = regexp.MustCompile("```json|```")

// CleanResponse strips Markdown code fences from model output.
func CleanResponse(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// GeminiClient implements Generator and Embedder on top of the Gemini API.
type GeminiClient struct {
	client         *genai.Client
	textModel      string
	embeddingModel string
}

type Options struct {
	APIKey         string
	TextModel      string
	EmbeddingModel string
	// BaseURL overrides the API endpoint; empty uses the public endpoint.
	BaseURL string
}

func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if opts.TextModel == "" {
		opts.TextModel = "gemini-2.0-flash-001"
	}
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = "gemini-embedding-001"
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:         client,
		textModel:      opts.TextModel,
		embeddingModel: opts.EmbeddingModel,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (text string, err error) {
	defer func(start time.Time) { metrics.ObserveModelCall("generate", start, err) }(time.Now())

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", c.textModel, err)
	}
	text = resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *GeminiClient) Embed(ctx context.Context, text string) (vec []float32, err error) {
	defer func(start time.Time) { metrics.ObserveModelCall("embed", start, err) }(time.Now())

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, fmt.Errorf("embed content with %s: %w", c.embeddingModel, err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}
