package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

const (
	DefaultModel           = "gemini-2.0-flash"
	DefaultTemperature     = float32(0.7)
	DefaultMaxOutputTokens = int32(8192)
)

// contentGenerator is the slice of *genai.Models this client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client calls the Gemini API. The SDK client is built on first use and
// reused afterwards; construction only captures configuration.
type Client struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32

	once   sync.Once
	models contentGenerator
	err    error
}

// NewClient builds a client. A nil temperature selects DefaultTemperature;
// zero is a valid, deterministic setting.
func NewClient(apiKey, model string, temperature *float32, maxOutputTokens int32) *Client {
	if model == "" {
		model = DefaultModel
	}
	temp := DefaultTemperature
	if temperature != nil {
		temp = *temperature
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	return &Client{APIKey: apiKey, Model: model, Temperature: temp, MaxOutputTokens: maxOutputTokens}
}

func (c *Client) generator(ctx context.Context) (contentGenerator, error) {
	c.once.Do(func() {
		if c.models != nil {
			return
		}
		cli, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			c.err = analysis.Configuration(fmt.Sprintf("create gemini client: %v", err))
			return
		}
		c.models = cli.Models
	})
	return c.models, c.err
}

// Generate sends one prompt, once. There is no retry.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", analysis.Configuration("GEMINI_API_KEY is not configured")
	}
	models, err := c.generator(ctx)
	if err != nil {
		return "", err
	}

	temp := c.Temperature
	resp, err := models.GenerateContent(ctx, c.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: c.MaxOutputTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("gemini generate: %w", ctx.Err())
		}
		return "", analysis.Upstream(fmt.Errorf("failed to generate analysis: %w", err))
	}
	if resp == nil {
		return "", analysis.UpstreamMessage("no text generated from Gemini")
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", analysis.UpstreamMessage("no text generated from Gemini")
	}
	return text, nil
}
