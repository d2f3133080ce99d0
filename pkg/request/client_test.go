package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/cache"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
)

func testConfig() config.RequestConfig {
	return config.RequestConfig{
		Retries: 3,
		Timeout: config.Duration(10 * time.Second),
		Pace:    config.Duration(time.Millisecond),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(time.Millisecond),
			MaxDelay:  config.Duration(10 * time.Millisecond),
		},
	}
}

func TestGet_Sequential(t *testing.T) {
	// Handler that sleeps to prove sequential execution per provider
	var conc int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt32(&conc, 1)
		defer atomic.AddInt32(&conc, -1)

		if current > 1 {
			t.Errorf("Concurrency detected! Expected sequential.")
		}
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(200)
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := New(cache.New(time.Minute, nil), tracker.New(), testConfig())

	done := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := client.Get(context.Background(), svr.URL, "")
			done <- err
		}()
	}
	for i := 0; i < 3; i++ {
		if err := <-done; err != nil {
			t.Errorf("Get failed: %v", err)
		}
	}
}

func TestGet_Retry(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(429) // Too Many Requests
			return
		}
		w.WriteHeader(200)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := New(cache.New(time.Minute, nil), tracker.New(), testConfig())

	body, err := client.Get(context.Background(), svr.URL, "")
	if err != nil {
		t.Fatalf("Expected success after retry, got error: %v", err)
	}
	if string(body) != "success" {
		t.Errorf("Expected 'success', got '%s'", string(body))
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestGet_CacheHit(t *testing.T) {
	var calls int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(200)
		if _, err := w.Write([]byte("payload")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := New(cache.New(time.Minute, nil), tracker.New(), testConfig())

	for i := 0; i < 2; i++ {
		body, err := client.Get(context.Background(), svr.URL, "cache_key")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(body) != "payload" {
			t.Errorf("Expected 'payload', got '%s'", string(body))
		}
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected 1 upstream call, got %d", n)
	}
}

func TestPost_ClientError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		if _, err := w.Write([]byte(`{"error": "invalid api key"}`)); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := New(cache.New(time.Minute, nil), tracker.New(), testConfig())

	_, err := client.Post(context.Background(), svr.URL, []byte(`{}`), "application/json")
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	var apiErr *gen.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *gen.APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("Expected status 401, got %d", apiErr.StatusCode)
	}
	if gen.Classify(err) != gen.FailureCredentialInvalid {
		t.Errorf("Expected credential_invalid classification, got %s", gen.Classify(err))
	}
}

func TestPost_RetryReplaysBody(t *testing.T) {
	var bodies []string
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		bodies = append(bodies, string(buf[:n]))
		if len(bodies) < 2 {
			w.WriteHeader(503)
			return
		}
		w.WriteHeader(200)
	}))
	defer svr.Close()

	client := New(cache.New(time.Minute, nil), tracker.New(), testConfig())

	_, err := client.Post(context.Background(), svr.URL, []byte("hello"), "text/plain")
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(bodies))
	}
	for i, b := range bodies {
		if b != "hello" {
			t.Errorf("Attempt %d body = %q, want 'hello'", i+1, b)
		}
	}
}
