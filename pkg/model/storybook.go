package model

import (
	"time"
)

// Genre identifies the narrative genre of a story.
type Genre string

const (
	GenreFantasy   Genre = "fantasy"
	GenreAdventure Genre = "adventure"
	GenreMystery   Genre = "mystery"
	GenreRomance   Genre = "romance"
	GenreSciFi     Genre = "scifi"
	GenreHorror    Genre = "horror"
	GenreComedy    Genre = "comedy"
	GenreDrama     Genre = "drama"
	GenreFable     Genre = "fable"
)

// LengthTier selects the target word count of a generated story.
type LengthTier string

const (
	LengthShort    LengthTier = "short"     // ~800 words
	LengthMedium   LengthTier = "medium"    // ~1800 words
	LengthLong     LengthTier = "long"      // ~3500 words
	LengthVeryLong LengthTier = "very-long" // ~5500 words
)

// VisualStyle selects the illustration style for image generation.
type VisualStyle string

const (
	StyleWatercolor VisualStyle = "watercolor"
	StyleDigitalArt VisualStyle = "digital-art"
	StyleSketch     VisualStyle = "sketch"
	StyleCartoon    VisualStyle = "cartoon"
	StyleOilPaint   VisualStyle = "oil-painting"
)

// NarrationWPM is the reading rate used to estimate narration duration.
const NarrationWPM = 200.0

// Storybook is a fully assembled illustrated story.
type Storybook struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Text      string             `json:"text"`
	Genre     Genre              `json:"genre"`
	Style     VisualStyle        `json:"style"`
	Pages     []Page             `json:"pages"`
	Audio     *AudioAsset        `json:"audio,omitempty"`
	Metadata  StorybookMetadata  `json:"metadata"`
	CreatedAt time.Time          `json:"created_at"`
}

// Page is one scene of a storybook with its illustration.
type Page struct {
	Index       int         `json:"index"`
	Text        string      `json:"text"`
	Description string      `json:"description"` // illustration-ready scene description
	WordCount   int         `json:"word_count"`
	Image       *ImageAsset `json:"image,omitempty"`
}

// StorybookMetadata aggregates assembly-wide facts about a storybook.
type StorybookMetadata struct {
	SceneCount    int           `json:"scene_count"`
	TotalWords    int           `json:"total_words"`
	TotalDuration time.Duration `json:"total_duration"` // estimated narration time
	HasImages     bool          `json:"has_images"`
	HasAudio      bool          `json:"has_audio"`
	Errors        []AssetError  `json:"errors,omitempty"`
}

// AssetError records a non-fatal per-asset failure during assembly.
type AssetError struct {
	Asset     string `json:"asset"` // "image" or "audio"
	PageIndex int    `json:"page_index"`
	Provider  string `json:"provider,omitempty"`
	Message   string `json:"message"`
}

// Summary is the listing view of a stored storybook.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Genre     Genre     `json:"genre"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}
