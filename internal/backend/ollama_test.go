package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestOllamaChat(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"hello"},"done":true}`)
	}))
	defer server.Close()

	client := NewOllamaClientWithConfig(OllamaConfig{BaseURL: server.URL})

	messages := []Message{
		{Role: RoleSystem, Content: "You are terse."},
		{Role: RoleUser, Content: "[Host]: hi"},
	}
	reply, err := client.Chat(context.Background(), "llama3", messages, map[string]any{"temperature": 0.5})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "hello" {
		t.Errorf("Expected reply 'hello', got %q", reply)
	}

	if gotReq.Model != "llama3" {
		t.Errorf("Expected model llama3, got %s", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("Blocking chat must not request streaming")
	}
	if len(gotReq.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(gotReq.Messages))
	}
}

func TestOllamaChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"model 'nope' not found"}`)
	}))
	defer server.Close()

	client := NewOllamaClientWithConfig(OllamaConfig{BaseURL: server.URL})
	_, err := client.Chat(context.Background(), "nope", nil, nil)
	if err == nil {
		t.Fatal("Expected error from API error payload")
	}
}

func TestOllamaChatHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOllamaClientWithConfig(OllamaConfig{BaseURL: server.URL})
	_, err := client.Chat(context.Background(), "llama3", nil, nil)
	if err == nil {
		t.Fatal("Expected error on HTTP 500")
	}
}

func TestOllamaChatStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if !req.Stream {
			t.Error("ChatStream must request streaming")
		}

		// Newline-delimited JSON chunks, content split mid-word.
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hel"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"lo"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer server.Close()

	client := NewOllamaClientWithConfig(OllamaConfig{BaseURL: server.URL})
	deltas, errs := client.ChatStream(context.Background(), "llama3", []Message{{Role: RoleUser, Content: "hi"}}, nil)

	var got []string
	for delta := range deltas {
		got = append(got, delta)
	}
	if err := <-errs; err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	if len(got) != 2 || got[0] != "Hel" || got[1] != "lo" {
		t.Errorf("Unexpected deltas: %v", got)
	}
}

func TestOllamaChatStreamMidStreamError(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"par"},"done":false}`)
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	}))
	defer server.Close()

	client := NewOllamaClientWithConfig(OllamaConfig{BaseURL: server.URL})
	deltas, errs := client.ChatStream(context.Background(), "llama3", nil, nil)

	var got []string
	for delta := range deltas {
		got = append(got, delta)
	}
	err := <-errs
	if err == nil {
		t.Fatal("Expected mid-stream error")
	}
	if len(got) != 1 || got[0] != "par" {
		t.Errorf("Expected the partial delta before the error, got %v", got)
	}
}

func TestOllamaChatStreamCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"x"},"done":false}`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewOllamaClientWithConfig(OllamaConfig{BaseURL: server.URL, Timeout: 5 * time.Second})
	deltas, errs := client.ChatStream(ctx, "llama3", nil, nil)

	<-deltas
	cancel()

	for range deltas {
	}
	if err := <-errs; err == nil {
		t.Fatal("Expected error after cancellation")
	}
}

func TestOllamaConfigDefaults(t *testing.T) {
	client := NewOllamaClientWithConfig(OllamaConfig{})
	if client.baseURL != "http://localhost:11434" {
		t.Errorf("Unexpected default base URL: %s", client.baseURL)
	}
	if client.httpClient.Timeout != 10*time.Minute {
		t.Errorf("Unexpected default timeout: %v", client.httpClient.Timeout)
	}
}
