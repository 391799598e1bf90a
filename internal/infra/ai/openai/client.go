package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/habarihub/mediamon/internal/domain/ai"
)

const maxTokens = 4096

// Client talks to an OpenAI-compatible endpoint. It satisfies both
// ai.ChatClient and ai.Embedder.
type Client struct {
	api            *openai.Client
	model          string
	embeddingModel string
	chatTimeout    time.Duration
	embedTimeout   time.Duration
}

func NewClient(apiKey, baseURL, model, embeddingModel string, chatTimeout, embedTimeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:            openai.NewClientWithConfig(cfg),
		model:          model,
		embeddingModel: embeddingModel,
		chatTimeout:    chatTimeout,
		embedTimeout:   embedTimeout,
	}
}

// Complete runs one chat completion in JSON mode and returns the raw content
// of the first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.chatTimeout)
		defer cancel()
	}
	model := c.model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapProviderErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", domai.ErrBadResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.embedTimeout)
		defer cancel()
	}
	model := c.embeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(model),
		Input: []string{text},
	})
	if err != nil {
		return nil, mapProviderErr(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding data", domai.ErrBadResponse)
	}
	return resp.Data[0].Embedding, nil
}

func mapProviderErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", domai.ErrProvider, err)
}
