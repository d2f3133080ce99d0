package huggingface

import (
	"context"
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

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	svr := httptest.NewServer(handler)
	t.Cleanup(svr.Close)

	rc := request.New(cache.New(time.Minute, nil), tracker.New(), config.RequestConfig{
		Retries: 1,
		Timeout: config.Duration(5 * time.Second),
		Pace:    config.Duration(time.Millisecond),
	})
	c := NewClient(config.HuggingFaceConfig{
		Token:      "hf_test_0123456789",
		TextModel:  "test/story-model",
		ImageModel: "test/diffusion-model",
	}, rc)
	c.baseURL = svr.URL + "/models/"
	return c
}

func TestGenerateText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test%2Fstory-model" && r.URL.Path != "/models/test/story-model" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload textPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Parameters.ReturnFullText {
			t.Error("return_full_text should be false")
		}
		json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "The dragon slept."}})
	}))

	res, err := c.GenerateText(context.Background(), gen.TextRequest{
		Prompt: "a sleepy dragon",
		Genre:  model.GenreFantasy,
		Length: model.LengthShort,
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if res.Text != "The dragon slept." {
		t.Errorf("text = %q", res.Text)
	}
	if res.Provider != "huggingface" {
		t.Errorf("provider = %q", res.Provider)
	}
}

func TestGenerateImage_RawBytes(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}))

	res, err := c.GenerateImage(context.Background(), gen.ImageRequest{Prompt: "a garden"})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(res.Data) != string(png) {
		t.Error("image bytes mismatch")
	}
}

func TestGenerateImage_JSONError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Model is currently loading"})
	}))

	_, err := c.GenerateImage(context.Background(), gen.ImageRequest{Prompt: "a garden"})
	if err == nil {
		t.Fatal("expected error for json body")
	}
}

func TestConfigured(t *testing.T) {
	rc := request.New(cache.New(time.Minute, nil), tracker.New(), config.RequestConfig{})
	if NewClient(config.HuggingFaceConfig{}, rc).Configured() {
		t.Error("missing token should not count as configured")
	}
}
