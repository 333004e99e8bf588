package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"lunchbox/internal/domain"
)

func TestHTTPClientChat_SendsSystemPromptAndHistory(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Pack it in!"}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", "key-1", "llama3-8b-8192", zap.NewNop())
	reply := c.Chat(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "Welcome back!"},
		{Role: domain.RoleUser, Content: "I have homework"},
	})

	if reply != "Pack it in!" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if auth != "Bearer key-1" {
		t.Fatalf("expected bearer auth, got %q", auth)
	}
	if got.Model != "llama3-8b-8192" || got.Temperature != 0.7 || got.MaxTokens != 150 || got.Stream {
		t.Fatalf("unexpected request params: %+v", got)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected system + 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != systemPrompt {
		t.Fatalf("expected system prompt first, got %+v", got.Messages[0])
	}
	if got.Messages[2].Role != "user" || got.Messages[2].Content != "I have homework" {
		t.Fatalf("unexpected last message %+v", got.Messages[2])
	}
}

func TestHTTPClientChat_NonSuccessStatusReturnsApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "m", zap.NewNop())
	if reply := c.Chat(context.Background(), nil); reply != ApologyMessage {
		t.Fatalf("expected apology, got %q", reply)
	}
}

func TestHTTPClientChat_NetworkErrorReturnsApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, "key", "m", nil)
	if reply := c.Chat(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}); reply != ApologyMessage {
		t.Fatalf("expected apology, got %q", reply)
	}
}

func TestHTTPClientChat_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "m", zap.NewNop())
	if reply := c.Chat(context.Background(), nil); reply != EmptyReplyMessage {
		t.Fatalf("expected empty reply message, got %q", reply)
	}
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatalf("expected Complete to return error on empty choices")
	}
}
