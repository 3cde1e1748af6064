package openai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = float32(0.7)
	DefaultMaxTokens   = 8192
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client is the OpenAI-backed completion provider.
type Client struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int

	once sync.Once
	api  chatCompleter
}

// NewClient builds a client. A nil temperature selects DefaultTemperature.
func NewClient(apiKey, baseURL, model string, temperature *float32, maxTokens int) *Client {
	if model == "" {
		model = DefaultModel
	}
	temp := DefaultTemperature
	if temperature != nil {
		temp = *temperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{APIKey: apiKey, BaseURL: baseURL, Model: model, Temperature: temp, MaxTokens: maxTokens}
}

func (c *Client) completer() chatCompleter {
	c.once.Do(func() {
		if c.api != nil {
			return
		}
		cfg := openai.DefaultConfig(c.APIKey)
		if c.BaseURL != "" {
			cfg.BaseURL = c.BaseURL
		}
		c.api = openai.NewClientWithConfig(cfg)
	})
	return c.api
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", analysis.Configuration("OPENAI_API_KEY is not configured")
	}
	temp := c.Temperature
	if temp == 0 {
		// the request omits a zero temperature, which the API reads as its default of 1
		temp = math.SmallestNonzeroFloat32
	}
	req := openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = c.MaxTokens
		req.Temperature = 0
	} else {
		req.MaxTokens = c.MaxTokens
	}

	resp, err := c.completer().CreateChatCompletion(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("openai chat completion: %w", ctx.Err())
		}
		return "", analysis.Upstream(fmt.Errorf("failed to create chat completion: %w", err))
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", analysis.UpstreamMessage("no text generated from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
