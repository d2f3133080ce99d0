package story

import (
	"errors"
	"strings"
	"testing"
)

func TestDecompose_SentenceFallback(t *testing.T) {
	// Three sentences, no paragraphs, two scenes: bucket of 2 + bucket of 1
	scenes, err := Decompose("A. B. C.", 2)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].Index != 0 || scenes[1].Index != 1 {
		t.Errorf("scene indices wrong: %d, %d", scenes[0].Index, scenes[1].Index)
	}
	if !strings.Contains(scenes[0].Text, "A.") || !strings.Contains(scenes[0].Text, "B.") {
		t.Errorf("first bucket = %q", scenes[0].Text)
	}
	if !strings.Contains(scenes[1].Text, "C.") {
		t.Errorf("second bucket = %q", scenes[1].Text)
	}
}

func TestDecompose_Paragraphs(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."

	scenes, err := Decompose(text, 5)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	// Fewer units than scenes: one scene per paragraph
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}
	for i, sc := range scenes {
		if sc.Index != i {
			t.Errorf("scene %d has index %d", i, sc.Index)
		}
		if sc.WordCount == 0 {
			t.Errorf("scene %d has zero word count", i)
		}
	}
}

func TestDecompose_EmptyInput(t *testing.T) {
	var perr *ParseError
	_, err := Decompose("   \n\t  ", 3)
	if err == nil {
		t.Fatal("expected error for whitespace-only input")
	}
	if !errors.As(err, &perr) {
		t.Errorf("expected *ParseError, got %T", err)
	}
}

func TestDecompose_ClampsSceneCount(t *testing.T) {
	var sentences []string
	for i := 0; i < 40; i++ {
		sentences = append(sentences, "Sentence number here.")
	}
	text := strings.Join(sentences, " ")

	scenes, err := Decompose(text, 99)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if len(scenes) > MaxScenes {
		t.Errorf("scene count %d exceeds max %d", len(scenes), MaxScenes)
	}

	scenes, err = Decompose(text, -3)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if len(scenes) != MinScenes {
		t.Errorf("negative count should clamp to %d, got %d", MinScenes, len(scenes))
	}
}

func TestDescribeScene_Keywords(t *testing.T) {
	desc := describeScene("The young girl walked through the enchanted forest. It was quiet.")

	if !strings.Contains(desc, "a forest backdrop") {
		t.Errorf("setting hint missing: %q", desc)
	}
	if !strings.Contains(desc, "a young protagonist") {
		t.Errorf("character hint missing: %q", desc)
	}
	if !strings.Contains(desc, "a magical atmosphere") {
		t.Errorf("thematic hint missing: %q", desc)
	}
	if !strings.HasSuffix(desc, ".") {
		t.Errorf("description should end with a period: %q", desc)
	}
}

func TestDescribeScene_NoKeywords(t *testing.T) {
	desc := describeScene("Nothing notable happened that day. Truly nothing.")
	if desc != "Nothing notable happened that day." {
		t.Errorf("desc = %q", desc)
	}
}
