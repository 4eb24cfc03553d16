package localllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/recipe"
)

// Client talks to an OpenAI-compatible chat-completions endpoint, typically a
// locally hosted model, as an alternative recipe generator.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient creates a new client for the local LLM.
func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = "http://localhost:1234/v1/chat/completions"
	}
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		model:      "gemma-3-12b-it:2",
	}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateContent sends a single prompt to the local LLM and returns the
// response text.
func (c *Client) GenerateContent(ctx context.Context, text string) (string, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "user", Content: text},
		},
		Temperature: 1,
		MaxTokens:   1024,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}
	return llmResp.Choices[0].Message.Content, nil
}

// GenerateRecipe asks the local LLM for a recipe built from the candidate
// ingredients. Same contract as the Gemini client: single attempt, validated
// response.
func (c *Client) GenerateRecipe(ctx context.Context, ingredients []string) (*recipe.Recipe, error) {
	responseText, err := c.GenerateContent(ctx, recipe.GenerationPrompt(ingredients))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return recipe.ParseGenerated(responseText)
}
