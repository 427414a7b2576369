package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hivemind/internal/logging"
)

// OllamaConfig holds configuration for the Ollama client.
type OllamaConfig struct {
	// BaseURL of the Ollama server. Default: http://localhost:11434.
	BaseURL string
	// Timeout for each request. Generation can be slow on local hardware,
	// so the default is generous. Default: 10 minutes.
	Timeout time.Duration
}

// DefaultOllamaConfig returns defaults matching a local Ollama install.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		BaseURL: "http://localhost:11434",
		Timeout: 10 * time.Minute,
	}
}

// OllamaClient implements Client against the Ollama chat API.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOllamaClient creates an Ollama client with default config.
func NewOllamaClient() *OllamaClient {
	return NewOllamaClientWithConfig(DefaultOllamaConfig())
}

// NewOllamaClientWithConfig creates an Ollama client with custom config.
func NewOllamaClientWithConfig(config OllamaConfig) *OllamaClient {
	defaults := DefaultOllamaConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// ollamaRequest is the /api/chat request body.
type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// ollamaResponse covers both a full chat response and one streamed chunk.
type ollamaResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Chat performs one blocking completion.
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []Message, options map[string]any) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.BackendDebug("[Ollama] Chat: model=%s messages=%d", model, len(messages))

	body, err := json.Marshal(ollamaRequest{Model: model, Messages: messages, Options: options})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("API error: %s", parsed.Error)
	}

	logging.Backend("[Ollama] Chat: completed in %v response_len=%d", time.Since(startTime), len(parsed.Message.Content))
	return parsed.Message.Content, nil
}

// ChatStream starts a streaming completion. Ollama streams newline-
// delimited JSON chunks; each chunk's message content is forwarded as one
// delta until a chunk arrives with done=true.
func (c *OllamaClient) ChatStream(ctx context.Context, model string, messages []Message, options map[string]any) (<-chan string, <-chan error) {
	contentChan := make(chan string, 100)
	errorChan := make(chan error, 1)

	logging.BackendDebug("[Ollama] ChatStream: starting model=%s messages=%d", model, len(messages))

	go func() {
		defer close(contentChan)
		defer close(errorChan)

		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
			defer cancel()
		}

		startTime := time.Now()

		body, err := json.Marshal(ollamaRequest{Model: model, Messages: messages, Stream: true, Options: options})
		if err != nil {
			errorChan <- fmt.Errorf("failed to marshal request: %w", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			errorChan <- fmt.Errorf("failed to create request: %w", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errorChan <- fmt.Errorf("request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			errorChan <- fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			var chunk ollamaResponse
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				continue
			}
			if chunk.Error != "" {
				errorChan <- fmt.Errorf("API error: %s", chunk.Error)
				return
			}
			if chunk.Message.Content != "" {
				select {
				case contentChan <- chunk.Message.Content:
				case <-ctx.Done():
					errorChan <- ctx.Err()
					return
				}
			}
			if chunk.Done {
				logging.Backend("[Ollama] ChatStream: completed in %v", time.Since(startTime))
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logging.Get(logging.CategoryBackend).Error("[Ollama] ChatStream: stream error after %v: %v", time.Since(startTime), err)
			errorChan <- fmt.Errorf("stream error: %w", err)
		}
	}()

	return contentChan, errorChan
}
