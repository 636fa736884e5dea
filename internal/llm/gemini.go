package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

type GeminiClient struct {
	client  *genai.Client
	timeout time.Duration
}

func NewGemini(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client, timeout: timeout}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(req.Prompt)}, genai.RoleUser),
	}
	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	resp := &Response{Text: text, Model: req.Model}
	if result.UsageMetadata != nil {
		resp.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}
