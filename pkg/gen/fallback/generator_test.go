package fallback

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/model"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/textproc"
)

var allGenres = []model.Genre{
	model.GenreFantasy, model.GenreAdventure, model.GenreMystery,
	model.GenreRomance, model.GenreSciFi, model.GenreHorror,
	model.GenreComedy, model.GenreDrama, model.GenreFable,
}

var allTiers = []model.LengthTier{
	model.LengthShort, model.LengthMedium, model.LengthLong, model.LengthVeryLong,
}

func TestGenerateTextMeetsWordTargets(t *testing.T) {
	g := New()
	for _, genre := range allGenres {
		for _, tier := range allTiers {
			t.Run(string(genre)+"/"+string(tier), func(t *testing.T) {
				res, err := g.GenerateText(context.Background(), gen.TextRequest{
					Prompt: "a lighthouse keeper and the sea",
					Genre:  genre,
					Length: tier,
					Seed:   42,
				})
				if err != nil {
					t.Fatalf("fallback must never error, got %v", err)
				}
				if res.Provider != gen.FallbackProvider {
					t.Errorf("provider = %q, want %q", res.Provider, gen.FallbackProvider)
				}
				got := textproc.CountWords(res.Text)
				if want := WordTarget(tier); got < want {
					t.Errorf("%s/%s: %d words, want >= %d", genre, tier, got, want)
				}
			})
		}
	}
}

func TestGenerateTextDeterministic(t *testing.T) {
	g := New()
	req := gen.TextRequest{
		Prompt: "a dragon who learns to dance",
		Genre:  model.GenreFantasy,
		Length: model.LengthShort,
		Seed:   7,
	}

	a, _ := g.GenerateText(context.Background(), req)
	b, _ := g.GenerateText(context.Background(), req)
	if a.Text != b.Text {
		t.Error("same seed must render identical stories")
	}

	req.Seed = 8
	c, _ := g.GenerateText(context.Background(), req)
	if a.Text == c.Text {
		t.Error("different seeds should vary the story")
	}
}

func TestGenerateTextSeedDerivedFromPrompt(t *testing.T) {
	g := New()
	req := gen.TextRequest{
		Prompt: "the clockmaker's apprentice",
		Genre:  model.GenreMystery,
		Length: model.LengthShort,
		// Seed left zero: derived from the prompt.
	}
	a, _ := g.GenerateText(context.Background(), req)
	b, _ := g.GenerateText(context.Background(), req)
	if a.Text != b.Text {
		t.Error("zero seed must derive deterministically from the prompt")
	}
}

func TestGenerateTextUnknownGenreAndTier(t *testing.T) {
	g := New()
	res, err := g.GenerateText(context.Background(), gen.TextRequest{
		Prompt: "something",
		Genre:  "western",
		Length: "epic",
		Seed:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := textproc.CountWords(res.Text); got < WordTarget(model.LengthShort) {
		t.Errorf("unknown tier should use the short target, got %d words", got)
	}
}

func TestGenerateTextWeavesSubject(t *testing.T) {
	g := New()
	res, _ := g.GenerateText(context.Background(), gen.TextRequest{
		Prompt: "the amber telescope",
		Genre:  model.GenreAdventure,
		Length: model.LengthShort,
		Seed:   3,
	})
	if !strings.Contains(res.Text, "the amber telescope") {
		t.Error("story should weave the subject into the prose")
	}
}

func TestEnhancePromptAppendsBlocks(t *testing.T) {
	g := New()
	res, err := g.EnhancePrompt(context.Background(), gen.EnhanceRequest{
		Prompt: "a castle at dawn",
		Genre:  model.GenreHorror,
		Style:  model.StyleSketch,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(res.Text, "a castle at dawn") {
		t.Error("original prompt must lead the enhanced text")
	}
	if !strings.Contains(res.Text, "horror register") {
		t.Error("genre block missing")
	}
	if !strings.Contains(res.Text, "graphite and ink") {
		t.Error("style block missing")
	}
}

func TestEnhancePromptUnknownGenreFallsBack(t *testing.T) {
	g := New()
	res, _ := g.EnhancePrompt(context.Background(), gen.EnhanceRequest{
		Prompt: "a door",
		Genre:  "noir",
		Style:  "pastel",
	})
	if !strings.Contains(res.Text, "high-fantasy register") {
		t.Error("unknown genre should use the fantasy block")
	}
	if !strings.Contains(res.Text, "watercolor") {
		t.Error("unknown style should use the watercolor block")
	}
}

func TestGenerateImagePaletteBySceneIndex(t *testing.T) {
	g := New()
	ctx := context.Background()

	first, _ := g.GenerateImage(ctx, gen.ImageRequest{Prompt: "a forest", SceneIndex: 0})
	same, _ := g.GenerateImage(ctx, gen.ImageRequest{Prompt: "a forest", SceneIndex: len(palettes)})
	next, _ := g.GenerateImage(ctx, gen.ImageRequest{Prompt: "a forest", SceneIndex: 1})

	if first.Placeholder == nil || same.Placeholder == nil || next.Placeholder == nil {
		t.Fatal("placeholder descriptor expected")
	}
	if first.Placeholder.Palette[0] != same.Placeholder.Palette[0] {
		t.Error("palette selection should wrap by table size")
	}
	if first.Placeholder.Palette[0] == next.Placeholder.Palette[0] {
		t.Error("adjacent scenes should get different palettes")
	}
}

func TestGenerateImageDefaultsAndOverlay(t *testing.T) {
	g := New()
	long := strings.Repeat("A very long sentence about the scene. ", 20)
	res, err := g.GenerateImage(context.Background(), gen.ImageRequest{Prompt: long, SceneIndex: -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ph := res.Placeholder
	if ph.Width != defaultWidth || ph.Height != defaultHeight {
		t.Errorf("dims = %dx%d, want defaults", ph.Width, ph.Height)
	}
	if len([]rune(ph.OverlayText)) > overlayBudget+1 {
		t.Errorf("overlay over budget: %d runes", len([]rune(ph.OverlayText)))
	}
	if ph.Style != model.StyleWatercolor {
		t.Errorf("style = %q, want watercolor default", ph.Style)
	}
}

func TestGenerateAudioDuration(t *testing.T) {
	g := New()
	text := strings.TrimSpace(strings.Repeat("word ", 400))

	res, err := g.GenerateAudio(context.Background(), gen.AudioRequest{Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Duration != 2*time.Minute {
		t.Errorf("400 words at 200 wpm: duration = %v, want 2m", res.Duration)
	}
	if res.Voice != defaultVoice {
		t.Errorf("voice = %q, want default", res.Voice)
	}

	fast, _ := g.GenerateAudio(context.Background(), gen.AudioRequest{Text: text, Speed: 2.0})
	if fast.Duration != time.Minute {
		t.Errorf("double speed should halve duration, got %v", fast.Duration)
	}

	weird, _ := g.GenerateAudio(context.Background(), gen.AudioRequest{Text: text, Speed: 9.9})
	if weird.Duration != 2*time.Minute {
		t.Errorf("out-of-range speed should clamp to 1.0, got %v", weird.Duration)
	}
}
