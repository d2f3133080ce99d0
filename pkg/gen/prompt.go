package gen

import (
	"fmt"
	"strings"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
)

// tierWords mirrors the fallback generator's word targets so remote
// providers aim for the same story sizes.
var tierWords = map[model.LengthTier]int{
	model.LengthShort:    800,
	model.LengthMedium:   1800,
	model.LengthLong:     3500,
	model.LengthVeryLong: 5500,
}

// StoryPrompt builds the instruction sent to text providers. All REST
// vendors share it so a failover mid-chain does not change the ask.
func StoryPrompt(req TextRequest) string {
	genre := req.Genre
	if genre == "" {
		genre = model.GenreFantasy
	}
	words, ok := tierWords[req.Length]
	if !ok {
		words = tierWords[model.LengthShort]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s story of at least %d words.\n", genre, words)
	b.WriteString("Structure it with a clear opening, rising action, climax and resolution, ")
	b.WriteString("separated into paragraphs. Respond with the story text only, no title, ")
	b.WriteString("no commentary.\n\nStory premise: ")
	b.WriteString(strings.TrimSpace(req.Prompt))
	return b.String()
}

// EnhanceInstruction builds the instruction for prompt enhancement.
func EnhanceInstruction(req EnhanceRequest) string {
	style := req.Style
	if style == "" {
		style = model.StyleWatercolor
	}
	genre := req.Genre
	if genre == "" {
		genre = model.GenreFantasy
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite the following %s illustration prompt so it is richer and more ", genre)
	fmt.Fprintf(&b, "evocative, suited to a %s rendering. Keep it under three sentences and ", style)
	b.WriteString("respond with the rewritten prompt only.\n\nPrompt: ")
	b.WriteString(strings.TrimSpace(req.Prompt))
	return b.String()
}

// ImagePrompt decorates a scene prompt with the requested visual style.
func ImagePrompt(req ImageRequest) string {
	style := req.Style
	if style == "" {
		style = model.StyleWatercolor
	}
	return fmt.Sprintf("%s, %s style, storybook illustration", strings.TrimSpace(req.Prompt), style)
}
