package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Subteran/DunGen-sub001/pkg/chat"
)

func anthropicTestService(t *testing.T, handler http.HandlerFunc) *AnthropicService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	svc := NewAnthropicService("test-key", "test-model", nil)
	svc.baseURL = server.URL
	return svc
}

func TestAnthropicService_Generate(t *testing.T) {
	var gotReq AnthropicChatRequest
	svc := anthropicTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("missing version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(AnthropicChatResponse{
			Content: []AnthropicContentBlock{
				{Type: "text", Text: `{"encounter_type":`},
				{Type: "text", Text: `"combat"}`},
			},
		})
	})

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You pick encounters."},
		{Role: chat.ChatRoleUser, Content: "Pick one."},
	}
	got, err := svc.Generate(context.Background(), messages)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"encounter_type":"combat"}` {
		t.Errorf("content blocks not concatenated: %q", got)
	}
	if gotReq.System != "You pick encounters." {
		t.Errorf("system prompt not extracted: %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != chat.ChatRoleUser {
		t.Errorf("conversation messages wrong: %+v", gotReq.Messages)
	}
}

func TestAnthropicService_Generate_Errors(t *testing.T) {
	t.Run("http error is unavailable", func(t *testing.T) {
		svc := anthropicTestService(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		})
		_, err := svc.Generate(context.Background(), nil)
		if !IsKind(err, ErrUnavailable) {
			t.Errorf("expected unavailable, got %v", err)
		}
	})

	t.Run("api error is unavailable", func(t *testing.T) {
		svc := anthropicTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"type": "overloaded_error", "message": "try later"},
			})
		})
		_, err := svc.Generate(context.Background(), nil)
		if !IsKind(err, ErrUnavailable) {
			t.Errorf("expected unavailable, got %v", err)
		}
	})

	t.Run("refusal stop reason is refused", func(t *testing.T) {
		svc := anthropicTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(AnthropicChatResponse{StopReason: "refusal"})
		})
		_, err := svc.Generate(context.Background(), nil)
		if !IsKind(err, ErrRefused) {
			t.Errorf("expected refused, got %v", err)
		}
	})

	t.Run("empty content is malformed", func(t *testing.T) {
		svc := anthropicTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(AnthropicChatResponse{})
		})
		_, err := svc.Generate(context.Background(), nil)
		if !IsKind(err, ErrMalformed) {
			t.Errorf("expected malformed, got %v", err)
		}
	})

	t.Run("unreachable server is unavailable", func(t *testing.T) {
		svc := NewAnthropicService("k", "m", nil)
		svc.baseURL = "http://127.0.0.1:1"
		_, err := svc.Generate(context.Background(), nil)
		if !IsKind(err, ErrUnavailable) {
			t.Errorf("expected unavailable, got %v", err)
		}
	})
}
