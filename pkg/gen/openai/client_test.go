package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/cache"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/request"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	svr := httptest.NewServer(handler)
	t.Cleanup(svr.Close)

	rc := request.New(cache.New(time.Minute, nil), tracker.New(), config.RequestConfig{
		Retries: 1,
		Timeout: config.Duration(5 * time.Second),
		Pace:    config.Duration(time.Millisecond),
	})
	c := NewClient(config.OpenAIConfig{
		Key:        "sk-test-0123456789",
		BaseURL:    svr.URL,
		Model:      "gpt-4o-mini",
		ImageModel: "dall-e-3",
	}, rc)
	return c, svr
}

func TestGenerateText(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Once upon a time, a fox learned to fly."}},
			},
		})
	}))

	res, err := c.GenerateText(context.Background(), gen.TextRequest{
		Prompt: "a fox who wants to fly",
		Genre:  model.GenreFable,
		Length: model.LengthShort,
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if res.Provider != "openai" {
		t.Errorf("provider = %q", res.Provider)
	}
	if res.Text == "" {
		t.Error("empty text")
	}
	if gotAuth != "Bearer sk-test-0123456789" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestGenerateText_APIErrorBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with an error payload, which OpenAI-compatible proxies emit
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid api key", "type": "invalid_request_error"},
		})
	}))

	_, err := c.GenerateText(context.Background(), gen.TextRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if gen.Classify(err) != gen.FailureCredentialInvalid {
		t.Errorf("classification = %s", gen.Classify(err))
	}
}

func TestGenerateImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req imageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Size != "1792x1024" {
			t.Errorf("size = %q", req.Size)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(payload)}},
		})
	}))

	res, err := c.GenerateImage(context.Background(), gen.ImageRequest{
		Prompt: "a castle at dusk",
		Style:  model.StyleWatercolor,
		Width:  1024,
		Height: 768,
	})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(res.Data) != string(payload) {
		t.Error("payload mismatch")
	}
	if res.MIME != "image/png" {
		t.Errorf("mime = %q", res.MIME)
	}
}

func TestConfigured(t *testing.T) {
	rc := request.New(cache.New(time.Minute, nil), tracker.New(), config.RequestConfig{})
	if NewClient(config.OpenAIConfig{Key: "your-api-key"}, rc).Configured() {
		t.Error("placeholder key should not count as configured")
	}
	if !NewClient(config.OpenAIConfig{Key: "sk-real-0123456789"}, rc).Configured() {
		t.Error("real key should count as configured")
	}
}
