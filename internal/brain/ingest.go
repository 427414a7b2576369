package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"hivemind/internal/logging"
)

// EnsureCollection creates the collection class if it does not exist.
// Vectorization is left to the instance's configured module, so passages
// can be inserted without client-side embeddings.
func (s *WeaviateStore) EnsureCollection(ctx context.Context, collection string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/schema/"+collection, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		logging.BrainDebug("Collection %s already exists", collection)
		return nil
	}

	class := map[string]any{
		"class": collection,
		"properties": []map[string]any{
			{"name": "text", "dataType": []string{"text"}},
			{"name": "source", "dataType": []string{"text"}},
		},
	}
	body, err := json.Marshal(class)
	if err != nil {
		return fmt.Errorf("failed to marshal class schema: %w", err)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/schema", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err = s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("schema create failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("schema create failed with status %d: %s", resp.StatusCode, respBody)
	}

	logging.Brain("Created collection %s", collection)
	return nil
}

// Passage is one ingestible unit of knowledge.
type Passage struct {
	Text   string
	Source string
}

// AddPassages batch-inserts passages into the collection, creating it
// first if needed.
func (s *WeaviateStore) AddPassages(ctx context.Context, collection string, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}
	if err := s.EnsureCollection(ctx, collection); err != nil {
		return err
	}

	objects := make([]map[string]any, 0, len(passages))
	for _, p := range passages {
		objects = append(objects, map[string]any{
			"class": collection,
			"properties": map[string]any{
				"text":   p.Text,
				"source": p.Source,
			},
		})
	}

	body, err := json.Marshal(map[string]any{"objects": objects})
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/batch/objects", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("batch insert failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read batch response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("batch insert failed with status %d: %s", resp.StatusCode, respBody)
	}

	// Batch inserts report per-object errors inside a 200 response.
	var batchResp []struct {
		Result struct {
			Errors *struct {
				Error []struct {
					Message string `json:"message"`
				} `json:"error"`
			} `json:"errors"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &batchResp); err == nil {
		for _, r := range batchResp {
			if r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				return fmt.Errorf("batch insert error: %s", r.Result.Errors.Error[0].Message)
			}
		}
	}

	logging.Brain("Ingested %d passage(s) into %s", len(passages), collection)
	return nil
}
