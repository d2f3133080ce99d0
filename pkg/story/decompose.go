// Package story turns narrative text into illustrated storybooks: it splits
// prose into scene specifications and assembles pages by fanning scene
// requests out through the generation router.
package story

import (
	"fmt"
	"strings"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

const (
	// MinScenes and MaxScenes bound the requested scene count.
	MinScenes = 1
	MaxScenes = 15
)

// ParseError reports story text that cannot be decomposed. It is the one
// fatal error in the assembly pipeline.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("story parse: %s", e.Reason)
}

// SceneSpec is one scene of a decomposed story.
type SceneSpec struct {
	Index       int
	Text        string
	Description string // illustration-ready description
	WordCount   int
}

// settingPhrases maps scene keywords to backdrop hints, scanned in order.
var settingPhrases = []struct{ keyword, phrase string }{
	{"forest", "a forest backdrop"},
	{"castle", "a castle backdrop"},
	{"village", "a village backdrop"},
	{"mountain", "a mountain backdrop"},
	{"ocean", "an ocean backdrop"},
	{"garden", "a garden backdrop"},
	{"library", "a library backdrop"},
}

var characterKeywords = []string{"young", "child", "boy", "girl"}

var thematicKeywords = []string{"magic", "spell", "enchanted"}

// Decompose splits text into at most sceneCount ordered scenes. Paragraphs
// (blank-line separated) are the primary unit; texts without enough
// paragraphs fall back to sentence splitting. When there are more units
// than scenes, consecutive units are grouped into equal buckets.
func Decompose(text string, sceneCount int) ([]SceneSpec, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ParseError{Reason: "empty story text"}
	}

	if sceneCount < MinScenes {
		sceneCount = MinScenes
	}
	if sceneCount > MaxScenes {
		sceneCount = MaxScenes
	}

	units := textproc.SplitParagraphs(trimmed)
	joiner := "\n\n"
	if len(units) < 2 {
		if sentences := textproc.SplitSentences(trimmed); len(sentences) > 0 {
			units = sentences
			joiner = " "
		}
	}
	if len(units) == 0 {
		return nil, &ParseError{Reason: "no usable narrative units"}
	}

	var blocks []string
	if len(units) <= sceneCount {
		blocks = units
	} else {
		// ceil division keeps the buckets balanced with the remainder in
		// the last one.
		per := (len(units) + sceneCount - 1) / sceneCount
		for i := 0; i < sceneCount; i++ {
			lo := i * per
			if lo >= len(units) {
				break
			}
			hi := lo + per
			if hi > len(units) {
				hi = len(units)
			}
			blocks = append(blocks, strings.Join(units[lo:hi], joiner))
		}
	}

	scenes := make([]SceneSpec, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		scenes = append(scenes, SceneSpec{
			Index:       len(scenes),
			Text:        block,
			Description: describeScene(block),
			WordCount:   textproc.CountWords(block),
		})
	}
	if len(scenes) == 0 {
		return nil, &ParseError{Reason: "all scenes empty after trimming"}
	}
	return scenes, nil
}

// describeScene builds a single illustration-ready sentence from the
// scene's leading sentence plus any setting, character and thematic
// keywords found in the scene text.
func describeScene(sceneText string) string {
	lead := strings.TrimRight(textproc.LeadingSentence(sceneText), ".!?")
	lead = textproc.TruncateRunes(lead, 160)
	lower := strings.ToLower(sceneText)

	var hints []string
	for _, sp := range settingPhrases {
		if strings.Contains(lower, sp.keyword) {
			hints = append(hints, sp.phrase)
			break
		}
	}
	for _, kw := range characterKeywords {
		if strings.Contains(lower, kw) {
			hints = append(hints, "a young protagonist")
			break
		}
	}
	for _, kw := range thematicKeywords {
		if strings.Contains(lower, kw) {
			hints = append(hints, "a magical atmosphere")
			break
		}
	}

	if len(hints) == 0 {
		return lead + "."
	}
	return fmt.Sprintf("%s, featuring %s.", lead, strings.Join(hints, " and "))
}
