package request

import "testing"

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"api.openai.com", "openai"},
		{"api-inference.huggingface.co", "huggingface"},
		{"router.huggingface.co", "huggingface"},
		{"generativelanguage.googleapis.com", "googleai"},
		{"api.stability.ai", "stability"},
		{"api.elevenlabs.io", "elevenlabs"},
		{"other.com", "other.com"},
	}

	for _, tt := range tests {
		got := normalizeProvider(tt.host)
		if got != tt.expected {
			t.Errorf("normalizeProvider(%q) = %q; want %q", tt.host, got, tt.expected)
		}
	}
}
