package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider("")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("got %v, want ErrNoAPIKey", err)
	}
}

func TestGeminiDefaults(t *testing.T) {
	p, err := NewGeminiProvider("key")
	if err != nil {
		t.Fatalf("NewGeminiProvider() failed: %v", err)
	}
	if p.Model() != DefaultGeminiModel {
		t.Errorf("model = %q, want %q", p.Model(), DefaultGeminiModel)
	}
	if p.Name() != "gemini" {
		t.Errorf("name = %q", p.Name())
	}
}

func TestWithGeminiModelEmptyKeepsDefault(t *testing.T) {
	p, _ := NewGeminiProvider("key", WithGeminiModel(""))
	if p.Model() != DefaultGeminiModel {
		t.Errorf("model = %q, want default", p.Model())
	}
}

func TestGeminiAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "testkey" {
			t.Errorf("key = %q, want testkey", got)
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "analyze TCS" {
			t.Errorf("unexpected request contents: %+v", req.Contents)
		}

		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Health score: "},{"text":"8/10"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("testkey", WithGeminiBaseURL(srv.URL))
	got, err := p.Analyze(context.Background(), "analyze TCS")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if got != "Health score: 8/10" {
		t.Errorf("completion = %q", got)
	}
}

func TestGeminiAnalyzeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("testkey", WithGeminiBaseURL(srv.URL))
	_, err := p.Analyze(context.Background(), "prompt")
	if !errors.Is(err, ErrProviderDown) {
		t.Fatalf("got %v, want ErrProviderDown", err)
	}
	if !strings.Contains(err.Error(), "Resource has been exhausted") {
		t.Errorf("error should carry API message, got %v", err)
	}
}

func TestGeminiAnalyzeEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p, _ := NewGeminiProvider("testkey", WithGeminiBaseURL(srv.URL))
	_, err := p.Analyze(context.Background(), "prompt")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("got %v, want ErrEmptyCompletion", err)
	}
}
