package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artisanx/internal/domain/service"
)

var request = service.CertificateTextRequest{
	IssuerName:    "Meera Joshi",
	RecipientName: "Priya Sharma",
	ProjectTitle:  "Catalogue Shoot",
	DurationHours: 40,
	Skills:        []string{"Photography"},
	Locale:        "hi",
}

func TestOpenAIGenerator(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Thank you, Priya.  "}}]}`))
	}))
	defer srv.Close()

	g := NewOpenAIGenerator("sk-test", "gpt-4o-mini", srv.URL+"/")
	text, err := g.GenerateCertificateText(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, "Thank you, Priya.", text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "Volunteer: Priya Sharma")
	assert.Contains(t, got.Messages[1].Content, "Hours contributed: 40")
	assert.Contains(t, got.Messages[1].Content, `"hi"`)
}

func TestOpenAIGenerator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty text", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIGenerator("sk-test", "m", srv.URL).GenerateCertificateText(context.Background(), request)
			assert.Error(t, err)
		})
	}
}

func TestNew_FallsBackToTemplate(t *testing.T) {
	g := New("", "gpt-4o-mini", "https://api.openai.com/v1")
	require.IsType(t, TemplateGenerator{}, g)

	text, err := g.GenerateCertificateText(context.Background(), request)
	require.NoError(t, err)
	assert.Contains(t, text, "Priya Sharma")
	assert.Contains(t, text, "40 hours")
	assert.Contains(t, text, "Photography")

	assert.IsType(t, &OpenAIGenerator{}, New("sk", "m", "u"))
}
