// Package responder generates replies to customer complaints.
//
// The Generator contract is deliberately error-free: whatever goes wrong
// internally (network, quota, malformed response), the caller always receives
// well-formed reply text, falling back to a fixed apology so a submission is
// never attempted with an empty body.
package responder

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// FallbackReply is the fixed apology sent when a real answer cannot be
// produced. It promises a human follow-up instead of guessing at a solution.
const FallbackReply = "Thank you for reaching out. We are sorry for what " +
	"happened and would like to look into your case more closely. Our team " +
	"will contact you within 48 business hours to resolve the situation. " +
	"We apologize for the inconvenience and appreciate your understanding."

// Generator produces reply text for a complaint. Implementations never
// return an error; on internal failure they return a safe fallback reply.
type Generator interface {
	Generate(ctx context.Context, complaintText, systemPrompt string) string
}

// OpenAIResponder generates replies through the OpenAI chat-completions API.
type OpenAIResponder struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a responder for the given API key and model.
func NewOpenAI(apiKey, model string) *OpenAIResponder {
	return newOpenAI(apiKey, model, "")
}

// NewOpenAIWithBaseURL creates a responder pointed at an alternate endpoint.
// Used by tests and by OpenAI-compatible gateways.
func NewOpenAIWithBaseURL(apiKey, model, baseURL string) *OpenAIResponder {
	return newOpenAI(apiKey, model, baseURL)
}

func newOpenAI(apiKey, model, baseURL string) *OpenAIResponder {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = newHTTPClient(30 * time.Second)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIResponder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate produces a reply to complaintText steered by systemPrompt.
//
// Never raises past this boundary: every failure is logged and converted to
// the fallback reply.
func (r *OpenAIResponder) Generate(ctx context.Context, complaintText, systemPrompt string) string {
	log.Printf("  → Generating response for complaint: %s...", truncate(complaintText, 50))

	userPrompt := fmt.Sprintf("Complaint: '%s'. Reply in a clear and objective manner.", complaintText)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		log.Println("  ✗ Response generation failed:", err)
		return FallbackReply
	}

	if len(resp.Choices) == 0 {
		log.Println("  ✗ Response generation returned no choices")
		return FallbackReply
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		log.Println("  ✗ Response generation returned empty text")
		return FallbackReply
	}

	log.Printf("  ✓ Generated response: %s...", truncate(text, 50))
	return text
}

// newHTTPClient builds a client with connection pooling so repeated
// generation calls within a cycle reuse keep-alive connections.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
