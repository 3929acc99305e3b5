package textgen

import (
	"context"
	"fmt"
	"strings"

	"artisanx/internal/domain/service"
)

// TemplateGenerator fills a fixed English template. It is used when no
// model is configured and never fails.
type TemplateGenerator struct{}

func (TemplateGenerator) GenerateCertificateText(_ context.Context, req service.CertificateTextRequest) (string, error) {
	text := fmt.Sprintf("This certificate is presented to %s in recognition of %d hours of dedicated work on \"%s\" with %s.",
		req.RecipientName, req.DurationHours, req.ProjectTitle, req.IssuerName)
	if len(req.Skills) > 0 {
		text += fmt.Sprintf(" Their skill in %s made a lasting difference to the craft.", strings.Join(req.Skills, ", "))
	}
	return text, nil
}

// New picks the OpenAI generator when an API key is set.
func New(apiKey, model, baseURL string) service.CertificateTextGenerator {
	if apiKey == "" {
		return TemplateGenerator{}
	}
	return NewOpenAIGenerator(apiKey, model, baseURL)
}
