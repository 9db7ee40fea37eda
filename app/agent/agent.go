package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkoukk/tiktoken-go"
	"google.golang.org/api/option"
)

const defaultModelName = "gemini-2.0-flash"

// Answerer produces an answer to a question given the full document text
// as context. One remote exchange per call; no session state carries over
// between questions.
type Answerer interface {
	Answer(ctx context.Context, docText, question string) (string, error)
}

type GeminiAgent struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGeminiAgent(ctx context.Context) (*GeminiAgent, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModelName
	}

	return &GeminiAgent{
		client: client,
		model:  model,
		logger: slog.Default(),
	}, nil
}

func (a *GeminiAgent) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Error("error closing GenAI client", "error", err)
		}
	}
}

// Answer starts a fresh chat session and submits the whole document text
// with the question. Oversized context is not truncated; whatever failure
// the remote API reports is forwarded as is.
func (a *GeminiAgent) Answer(ctx context.Context, docText, question string) (string, error) {
	start := time.Now()
	defer func() {
		a.logger.Info("LLM answer finished", "took", time.Since(start))
	}()

	prompt := BuildPrompt(docText, question)

	if count, err := CountTokens(prompt); err == nil {
		a.logger.Info("submitting prompt", "model", a.model, "tokens", count, "symbols", len(prompt))
	}

	session := a.client.GenerativeModel(a.model).StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", fmt.Errorf("gemini returned no text parts")
	}
	return answer, nil
}

// BuildPrompt embeds the full document text and the question into the
// fixed template the model is asked with.
func BuildPrompt(docText, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion:\n%s\n\nAnswer:", docText, question)
}

// CountTokens is informational only; the prompt is never truncated.
func CountTokens(s string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(s, nil, nil)), nil
}
