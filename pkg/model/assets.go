package model

import "time"

// ImageAsset is a generated illustration, either real bytes from a provider
// or a deterministic placeholder descriptor when generation falls back.
type ImageAsset struct {
	Provider string `json:"provider"`
	MIME     string `json:"mime,omitempty"`
	Data     []byte `json:"data,omitempty"`

	// Placeholder is set instead of Data when the image was synthesized
	// locally.
	Placeholder *ImagePlaceholder `json:"placeholder,omitempty"`
}

// ImagePlaceholder describes a renderable stand-in illustration. It carries
// enough structure for a client to draw a styled card without any image
// bytes.
type ImagePlaceholder struct {
	Style       VisualStyle `json:"style"`
	Palette     []string    `json:"palette"` // hex colors, background first
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	OverlayText string      `json:"overlay_text"`
}

// AudioAsset is a generated narration track or its local descriptor.
type AudioAsset struct {
	Provider string        `json:"provider"`
	Format   string        `json:"format,omitempty"` // e.g. "mp3"
	Data     []byte        `json:"data,omitempty"`
	Voice    string        `json:"voice,omitempty"`
	Duration time.Duration `json:"duration"` // estimated at NarrationWPM when not measured
}
