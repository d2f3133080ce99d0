package story

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

// maxInFlight caps concurrent generation calls during assembly.
const maxInFlight = 4

// Generator is the slice of the router the assembler depends on.
type Generator interface {
	GenerateText(ctx context.Context, req gen.TextRequest) (*gen.TextResult, error)
	GenerateImage(ctx context.Context, req gen.ImageRequest) (*gen.ImageResult, error)
	GenerateAudio(ctx context.Context, req gen.AudioRequest) (*gen.AudioResult, error)
}

// Request describes one storybook to assemble.
type Request struct {
	Prompt string
	Title  string
	Genre  model.Genre
	Length model.LengthTier
	Style  model.VisualStyle
	Voice  string
	Speed  float64

	// Text, when set, is used verbatim and text generation is skipped.
	Text string

	SceneCount int
	Width      int
	Height     int
	Seed       int64

	// Progress, when set, receives phase updates during assembly. It must
	// be safe for concurrent calls.
	Progress func(phase string, done, total int)
}

// Assembler builds storybooks by decomposing text and fanning scene
// requests out through the router.
type Assembler struct {
	gen Generator
}

// NewAssembler creates a new Assembler.
func NewAssembler(g Generator) *Assembler {
	return &Assembler{gen: g}
}

// Assemble produces a complete storybook. Only a ParseError on the story
// text or context cancellation abort the assembly; per-asset failures
// degrade to placeholders recorded in the metadata.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*model.Storybook, error) {
	text := strings.TrimSpace(req.Text)
	if req.Text != "" && text == "" {
		return nil, &ParseError{Reason: "story text is blank"}
	}
	if text == "" {
		if strings.TrimSpace(req.Prompt) == "" {
			return nil, &ParseError{Reason: "neither prompt nor story text supplied"}
		}
		req.report("text", 0, 1)
		res, err := a.gen.GenerateText(ctx, gen.TextRequest{
			Prompt: req.Prompt,
			Genre:  req.Genre,
			Length: req.Length,
			Seed:   req.Seed,
		})
		if err != nil {
			return nil, err
		}
		text = res.Text
	}

	scenes, err := Decompose(text, req.SceneCount)
	if err != nil {
		return nil, err
	}

	pages := make([]model.Page, len(scenes))
	for i, sc := range scenes {
		pages[i] = model.Page{
			Index:       sc.Index,
			Text:        sc.Text,
			Description: sc.Description,
			WordCount:   sc.WordCount,
		}
	}

	// total = one image per scene + one narration track
	total := len(scenes) + 1
	req.report("assets", 0, total)

	var (
		meta      model.StorybookMetadata
		audio     *gen.AudioResult
		completed atomic.Int64
		imgs      = make([]*gen.ImageResult, len(scenes))
	)
	tick := func() {
		req.report("assets", int(completed.Add(1)), total)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	for i, sc := range scenes {
		g.Go(func() error {
			res, err := a.gen.GenerateImage(gctx, gen.ImageRequest{
				Prompt:     sc.Description,
				Style:      req.Style,
				SceneIndex: sc.Index,
				Width:      req.Width,
				Height:     req.Height,
				Seed:       req.Seed,
			})
			if err != nil {
				return err // only cancellation reaches here
			}
			imgs[i] = res
			tick()
			return nil
		})
	}

	g.Go(func() error {
		res, err := a.gen.GenerateAudio(gctx, gen.AudioRequest{
			Text:  text,
			Voice: req.Voice,
			Speed: req.Speed,
			Seed:  req.Seed,
		})
		if err != nil {
			return err
		}
		audio = res
		tick()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range pages {
		res := imgs[i]
		if res == nil {
			continue
		}
		pages[i].Image = res.Asset()
		if res.Placeholder != nil {
			meta.Errors = append(meta.Errors, model.AssetError{
				Asset:     "image",
				PageIndex: i,
				Provider:  res.Provider,
				Message:   "remote generation failed, placeholder used",
			})
		} else {
			meta.HasImages = true
		}
	}

	sb := &model.Storybook{
		ID:        uuid.NewString(),
		Title:     titleFor(req, text),
		Text:      text,
		Genre:     req.Genre,
		Style:     req.Style,
		Pages:     pages,
		CreatedAt: time.Now().UTC(),
	}

	if audio != nil {
		sb.Audio = audio.Asset()
		if len(audio.Data) > 0 {
			meta.HasAudio = true
		} else {
			meta.Errors = append(meta.Errors, model.AssetError{
				Asset:    "audio",
				Provider: audio.Provider,
				Message:  "remote synthesis failed, narration descriptor only",
			})
		}
	}

	meta.SceneCount = len(scenes)
	for _, p := range pages {
		meta.TotalWords += p.WordCount
	}
	meta.TotalDuration = narrationTime(meta.TotalWords)
	sb.Metadata = meta

	req.report("done", total, total)
	return sb, nil
}

// narrationTime estimates reading time at the standard narration rate.
func narrationTime(words int) time.Duration {
	minutes := float64(words) / model.NarrationWPM
	return time.Duration(minutes * float64(time.Minute))
}

func titleFor(req Request, text string) string {
	if t := strings.TrimSpace(req.Title); t != "" {
		return t
	}
	if p := strings.TrimSpace(req.Prompt); p != "" {
		return textproc.TruncateRunes(p, 80)
	}
	return textproc.TruncateRunes(textproc.LeadingSentence(text), 80)
}

func (r *Request) report(phase string, done, total int) {
	if r.Progress != nil {
		r.Progress(phase, done, total)
	}
}
