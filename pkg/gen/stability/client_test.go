package stability

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

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	svr := httptest.NewServer(handler)
	t.Cleanup(svr.Close)

	rc := request.New(cache.New(time.Minute, nil), tracker.New(), config.RequestConfig{
		Retries: 1,
		Timeout: config.Duration(5 * time.Second),
		Pace:    config.Duration(time.Millisecond),
	})
	c := NewClient(config.StabilityConfig{Key: "sk-stability-test-123"}, rc)
	c.baseURL = svr.URL + "/v1/generation/"
	return c
}

func TestGenerateImage(t *testing.T) {
	payload := []byte("fake-png-bytes")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Width%64 != 0 || req.Height%64 != 0 {
			t.Errorf("dimensions not on 64-grid: %dx%d", req.Width, req.Height)
		}
		if req.Samples != 1 {
			t.Errorf("samples = %d", req.Samples)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"artifacts": []map[string]string{{
				"base64":       base64.StdEncoding.EncodeToString(payload),
				"finishReason": "SUCCESS",
			}},
		})
	}))

	res, err := c.GenerateImage(context.Background(), gen.ImageRequest{
		Prompt: "a village in the mountains",
		Style:  model.StyleSketch,
		Width:  1000,
		Height: 700,
	})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(res.Data) != string(payload) {
		t.Error("payload mismatch")
	}
	if res.Provider != "stability" {
		t.Errorf("provider = %q", res.Provider)
	}
}

func TestGenerateImage_ContentFiltered(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"artifacts": []map[string]string{{"base64": "", "finishReason": "CONTENT_FILTERED"}},
		})
	}))

	if _, err := c.GenerateImage(context.Background(), gen.ImageRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for filtered result")
	}
}

func TestSnapDimensions(t *testing.T) {
	tests := []struct {
		w, h, wantW, wantH int
	}{
		{0, 0, 1024, 1024},
		{1024, 768, 1024, 768},
		{1000, 700, 960, 640},
		{300, 5000, 512, 1536},
	}
	for _, tt := range tests {
		w, h := snapDimensions(tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("snapDimensions(%d, %d) = %d, %d; want %d, %d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}
