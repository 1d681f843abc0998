package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newsweb/internal/retry"
)

// Gemini wraps the generative model used for direct answers.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// Explain asks the model to answer a reader's question about the attached
// news cards. The model call is retried a couple of times since transient
// API errors are common.
func (g *Gemini) Explain(ctx context.Context, message string, items []ContextItem, article string) (string, error) {
	model := g.client.GenerativeModel("gemini-1.5-flash")
	prompt := buildPrompt(message, items, article)

	var answer string
	err := retry.WithRetry(ctx, retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}, func() error {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return fmt.Errorf("failed to generate content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no response from Gemini")
		}
		answer = strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
		if answer == "" {
			return fmt.Errorf("empty response from Gemini")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

func buildPrompt(message string, items []ContextItem, article string) string {
	var b strings.Builder
	b.WriteString("You are a news assistant. Answer the reader's question in plain language, ")
	b.WriteString("using only the news context below. Keep it short, no preamble.\n\n")

	if len(items) > 0 {
		b.WriteString("NEWS CONTEXT:\n")
		for i, it := range items {
			if i >= 10 {
				break
			}
			b.WriteString(fmt.Sprintf("- %s", it.Title))
			if it.Source != "" {
				b.WriteString(fmt.Sprintf(" (%s)", it.Source))
			}
			b.WriteString("\n")
			if it.Description != "" {
				b.WriteString("  " + it.Description + "\n")
			}
		}
		b.WriteString("\n")
	}

	if article != "" {
		b.WriteString("FULL ARTICLE TEXT:\n")
		b.WriteString(article)
		b.WriteString("\n\n")
	}

	b.WriteString("QUESTION: ")
	b.WriteString(message)
	return b.String()
}
