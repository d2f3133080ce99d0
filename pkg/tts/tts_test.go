package tts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStripSpeakerLabels(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"PlainLabel", "Narrator: Once upon a time.", "Once upon a time."},
		{"LabelWithHint", "Aria (female): Hello there.", "Hello there."},
		{"NoLabel", "Just a sentence.", "Just a sentence."},
		{"Multiline", "Ben: Hi.\nAna: Bye.", "Hi.\nBye."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripSpeakerLabels(tt.input))
		})
	}
}

func TestClampSpeed(t *testing.T) {
	assert.Equal(t, 1.0, ClampSpeed(0))
	assert.Equal(t, 0.7, ClampSpeed(0.1))
	assert.Equal(t, 1.3, ClampSpeed(5))
	assert.Equal(t, 1.1, ClampSpeed(1.1))
}

func TestEstimateDuration(t *testing.T) {
	// 200 words at 200 wpm is one minute
	words := make([]byte, 0, 1000)
	for i := 0; i < 200; i++ {
		words = append(words, []byte("word ")...)
	}

	got := EstimateDuration(string(words), 1.0)
	assert.InDelta(t, time.Minute.Seconds(), got.Seconds(), 1)

	// Faster narration shortens the estimate
	faster := EstimateDuration(string(words), 1.3)
	assert.Less(t, faster, got)
}
