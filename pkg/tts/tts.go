// Package tts holds the pieces shared by the speech synthesis adapters:
// voice metadata, narration duration estimation, and script cleanup.
// The adapters themselves live in subpackages and implement
// gen.AudioSynthesizer.
package tts

import (
	"regexp"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

// Voice describes an available synthesis voice.
type Voice struct {
	ID       string
	Name     string
	Language string
	IsNeural bool
}

var speakerLabelRegex = regexp.MustCompile(`(?m)^[A-Za-z]+(\s*\([^)]+\))?:\s*`)

// StripSpeakerLabels removes speaker labels like "Narrator:" or
// "Aria (female):" from scripts before synthesis.
func StripSpeakerLabels(script string) string {
	return speakerLabelRegex.ReplaceAllString(script, "")
}

// ClampSpeed bounds the playback rate to the range every vendor accepts.
// Zero means unspecified and maps to normal speed.
func ClampSpeed(speed float64) float64 {
	if speed == 0 {
		return 1.0
	}
	if speed < 0.7 {
		return 0.7
	}
	if speed > 1.3 {
		return 1.3
	}
	return speed
}

// EstimateDuration predicts narration length from word count at the
// standard narration rate, adjusted for playback speed.
func EstimateDuration(text string, speed float64) time.Duration {
	words := textproc.CountWords(text)
	minutes := float64(words) / model.NarrationWPM / ClampSpeed(speed)
	return time.Duration(minutes * float64(time.Minute))
}
