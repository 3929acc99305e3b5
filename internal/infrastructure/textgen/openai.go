// Package textgen writes certificate prose, either with an OpenAI
// chat-completions model or from a fixed template.
package textgen

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"artisanx/internal/domain/service"
	"artisanx/pkg/logger"
)

const systemPrompt = "You write short, warm certificates of appreciation for volunteers who helped traditional artisans. Reply with the certificate body only, two or three sentences, no title."

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator talks to baseURL, which may point at any
// chat-completions compatible endpoint.
func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *OpenAIGenerator) GenerateCertificateText(ctx context.Context, req service.CertificateTextRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt(req)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		var apiErr *openai.APIError
		if stderrors.As(err, &apiErr) {
			logger.Error("OpenAI API error: %d %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", errors.Wrap(err, "call chat completions")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completions returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completions returned empty text")
	}
	return text, nil
}

func prompt(req service.CertificateTextRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Artisan: %s\n", req.IssuerName)
	fmt.Fprintf(&b, "Volunteer: %s\n", req.RecipientName)
	fmt.Fprintf(&b, "Project: %s\n", req.ProjectTitle)
	fmt.Fprintf(&b, "Hours contributed: %d\n", req.DurationHours)
	if len(req.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(req.Skills, ", "))
	}
	fmt.Fprintf(&b, "Write it in the language with locale code %q.", localeOrDefault(req.Locale))
	return b.String()
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return "en"
	}
	return locale
}
