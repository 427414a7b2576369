package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"hivemind/internal/logging"
)

// WeaviateConfig configures the Weaviate-backed Store.
type WeaviateConfig struct {
	// BaseURL of the Weaviate HTTP endpoint. Default: http://localhost:8080.
	BaseURL string
	// Timeout for each request. Default: 30s.
	Timeout time.Duration
}

// DefaultWeaviateConfig returns defaults matching a local Weaviate.
func DefaultWeaviateConfig() WeaviateConfig {
	return WeaviateConfig{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// WeaviateStore implements Store against Weaviate's GraphQL API.
type WeaviateStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewWeaviateStore creates a store and verifies the instance is reachable,
// so a dead endpoint fails at construction rather than mid-conversation.
func NewWeaviateStore(ctx context.Context, config WeaviateConfig) (*WeaviateStore, error) {
	defaults := DefaultWeaviateConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	s := &WeaviateStore{
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
	}

	if err := s.ready(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Weaviate at %s (is it running? try `make awaken_hive`): %w", config.BaseURL, err)
	}

	logging.Brain("Connected to Weaviate at %s", config.BaseURL)
	return s, nil
}

// ready probes the readiness endpoint.
func (s *WeaviateStore) ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/.well-known/ready", nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("readiness check returned status %d", resp.StatusCode)
	}
	return nil
}

// graphqlRequest is the request body for /v1/graphql.
type graphqlRequest struct {
	Query string `json:"query"`
}

// graphqlResponse covers the slice of the response the store reads.
type graphqlResponse struct {
	Data struct {
		Get map[string][]struct {
			Text string `json:"text"`
		} `json:"Get"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NearText queries the collection for the topK passages nearest the query.
func (s *WeaviateStore) NearText(ctx context.Context, collection, query string, topK int) ([]Hit, error) {
	gql := fmt.Sprintf(
		`{ Get { %s(nearText: {concepts: [%s]}, limit: %d) { text } } }`,
		collection, strconv.Quote(query), topK,
	)

	body, err := json.Marshal(graphqlRequest{Query: gql})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query failed with status %d: %s", resp.StatusCode, respBody)
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("query error: %s", parsed.Errors[0].Message)
	}

	objects := parsed.Data.Get[collection]
	hits := make([]Hit, 0, len(objects))
	for _, obj := range objects {
		hits = append(hits, Hit{Text: obj.Text})
	}

	logging.BrainDebug("nearText %q on %s returned %d hit(s)", query, collection, len(hits))
	return hits, nil
}

// Close releases idle connections.
func (s *WeaviateStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
