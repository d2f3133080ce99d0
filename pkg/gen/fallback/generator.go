// Package fallback synthesizes content locally when every remote provider is
// exhausted, and serves offline operation directly. All output is driven by
// an explicit seed: the same request with the same seed renders the same
// bytes. No operation in this package can fail.
package fallback

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

const (
	fillerCount    = 8
	defaultWidth   = 1024
	defaultHeight  = 768
	overlayBudget  = 140
	defaultVoice   = "storyteller"
	localModelName = "local-templates"
)

// wordTargets are the minimum word counts per length tier.
var wordTargets = map[model.LengthTier]int{
	model.LengthShort:    800,
	model.LengthMedium:   1800,
	model.LengthLong:     3500,
	model.LengthVeryLong: 5500,
}

// Generator produces deterministic local content. It is stateless and safe
// for concurrent use; each call builds its own PRNG from the request seed.
type Generator struct{}

// New creates a Generator.
func New() *Generator {
	return &Generator{}
}

// Name implements gen.Provider.
func (g *Generator) Name() string { return gen.FallbackProvider }

// Configured implements gen.Provider. The fallback needs no credentials.
func (g *Generator) Configured() bool { return true }

// GenerateText assembles a story from genre fragments, padding with filler
// paragraphs until the tier's word target is met.
func (g *Generator) GenerateText(_ context.Context, req gen.TextRequest) (*gen.TextResult, error) {
	start := time.Now()
	genre := NormalizeGenre(req.Genre)
	target := WordTarget(req.Length)
	r := newRenderer(effectiveSeed(req.Seed, req.Prompt))

	text := r.story(string(genre), subjectFrom(req.Prompt), target)
	return &gen.TextResult{
		Text:     text,
		Provider: gen.FallbackProvider,
		Model:    localModelName,
		Elapsed:  time.Since(start),
	}, nil
}

// EnhancePrompt appends the genre and style blocks to the prompt.
func (g *Generator) EnhancePrompt(_ context.Context, req gen.EnhanceRequest) (*gen.TextResult, error) {
	start := time.Now()
	genre := NormalizeGenre(req.Genre)
	style := NormalizeStyle(req.Style)

	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.Prompt))
	b.WriteString("\n\n")
	b.WriteString(enhanceBlocks[string(genre)])
	b.WriteString("\n")
	b.WriteString(styleBlocks[string(style)])

	return &gen.TextResult{
		Text:     b.String(),
		Provider: gen.FallbackProvider,
		Model:    localModelName,
		Elapsed:  time.Since(start),
	}, nil
}

// GenerateImage returns a placeholder descriptor. The palette row is chosen
// by scene index so adjacent pages stay visually distinct.
func (g *Generator) GenerateImage(_ context.Context, req gen.ImageRequest) (*gen.ImageResult, error) {
	start := time.Now()
	style := NormalizeStyle(req.Style)

	idx := req.SceneIndex % len(palettes)
	if idx < 0 {
		idx += len(palettes)
	}

	width, height := req.Width, req.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	return &gen.ImageResult{
		Placeholder: &model.ImagePlaceholder{
			Style:       style,
			Palette:     palettes[idx],
			Width:       width,
			Height:      height,
			OverlayText: overlayText(req.Prompt),
		},
		Provider: gen.FallbackProvider,
		Elapsed:  time.Since(start),
	}, nil
}

// GenerateAudio returns a narration descriptor with a duration estimated at
// the standard reading rate. No waveform is synthesized locally.
func (g *Generator) GenerateAudio(_ context.Context, req gen.AudioRequest) (*gen.AudioResult, error) {
	start := time.Now()
	voice := req.Voice
	if voice == "" {
		voice = defaultVoice
	}
	speed := req.Speed
	if speed < 0.5 || speed > 2.0 {
		speed = 1.0
	}

	minutes := float64(textproc.CountWords(req.Text)) / model.NarrationWPM / speed
	return &gen.AudioResult{
		Voice:    voice,
		Duration: time.Duration(minutes * float64(time.Minute)),
		Provider: gen.FallbackProvider,
		Elapsed:  time.Since(start),
	}, nil
}

// WordTarget returns the minimum word count for a tier. Unknown tiers get
// the short target.
func WordTarget(tier model.LengthTier) int {
	if t, ok := wordTargets[tier]; ok {
		return t
	}
	return wordTargets[model.LengthShort]
}

// NormalizeGenre maps unknown genres to fantasy.
func NormalizeGenre(g model.Genre) model.Genre {
	if _, ok := enhanceBlocks[string(g)]; ok {
		return g
	}
	return model.GenreFantasy
}

// NormalizeStyle maps unknown styles to watercolor.
func NormalizeStyle(s model.VisualStyle) model.VisualStyle {
	if _, ok := styleBlocks[string(s)]; ok {
		return s
	}
	return model.StyleWatercolor
}

// effectiveSeed derives a stable seed from the prompt when the caller did
// not supply one.
func effectiveSeed(seed int64, prompt string) int64 {
	if seed != 0 {
		return seed
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(prompt))
	return int64(h.Sum64())
}

// subjectFrom condenses the prompt into a phrase short enough to weave into
// sentences.
func subjectFrom(prompt string) string {
	s := strings.TrimSpace(prompt)
	if s == "" {
		return "a tale no one remembered to tell"
	}
	words := strings.Fields(s)
	if len(words) > 12 {
		words = words[:12]
	}
	return strings.TrimRight(strings.Join(words, " "), ".!?,;:")
}

func overlayText(prompt string) string {
	sentences := textproc.SplitSentences(strings.TrimSpace(prompt))
	var lead string
	switch {
	case len(sentences) >= 2:
		lead = sentences[0] + " " + sentences[1]
	case len(sentences) == 1:
		lead = sentences[0]
	default:
		lead = strings.TrimSpace(prompt)
	}
	return textproc.TruncateRunes(lead, overlayBudget)
}

// renderer holds one story's PRNG and template set. The pick/maybe template
// functions draw from the seeded PRNG, never from global random state.
type renderer struct {
	rng  *rand.Rand
	tmpl *template.Template
}

type storyData struct {
	Subject string
	Hero    string
}

func newRenderer(seed int64) *renderer {
	r := &renderer{rng: rand.New(rand.NewSource(seed))}
	r.tmpl = template.Must(template.New("fallback").Funcs(template.FuncMap{
		"pick":  r.pick,
		"maybe": r.maybe,
	}).Parse(fragmentSource))
	return r
}

func (r *renderer) story(genre, subject string, target int) string {
	data := storyData{
		Subject: subject,
		Hero:    heroes[r.rng.Intn(len(heroes))],
	}

	head := []string{
		r.render(genre+"/opening", data),
		r.render(genre+"/rising", data),
	}
	tail := []string{
		r.render(genre+"/climax", data),
		r.render(genre+"/resolution", data),
	}

	count := 0
	for _, p := range head {
		count += textproc.CountWords(p)
	}
	for _, p := range tail {
		count += textproc.CountWords(p)
	}

	// Filler paragraphs carry the count to the target. Cycling through the
	// variants with fresh pick rolls keeps repetition readable.
	for i := 0; count < target; i++ {
		p := r.render(fmt.Sprintf("filler/%d", i%fillerCount), data)
		head = append(head, p)
		count += textproc.CountWords(p)
	}

	return strings.Join(append(head, tail...), "\n\n")
}

func (r *renderer) render(name string, data storyData) string {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		// Template names are normalized before lookup; this is unreachable
		// short of a broken template constant. Degrade to plain prose.
		return fmt.Sprintf("The story of %s went on.", data.Subject)
	}
	return strings.TrimSpace(b.String())
}

func (r *renderer) pick(options string) string {
	parts := strings.Split(options, "|||")
	if len(parts) == 0 {
		return ""
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts[r.rng.Intn(len(parts))]
}

func (r *renderer) maybe(percent int, content string) string {
	if percent <= 0 {
		return ""
	}
	if percent >= 100 {
		return content
	}
	if r.rng.Intn(100) < percent {
		return content
	}
	return ""
}
