package textproc

import (
	"strings"
	"testing"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Once upon a time.", "Once upon a time."},
		{"tags removed", "<p>Once upon a <b>time</b>.</p>", "Once upon a time."},
		{"script dropped", "<p>Story.</p><script>alert(1)</script>", "Story."},
		{"entities decoded", "Jack &amp; Jill", "Jack & Jill"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "A   story.\t\tWith   gaps.\n\n\n\nNext paragraph."
	want := "A story. With gaps.\n\nNext paragraph."
	if got := NormalizeWhitespace(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanFences(t *testing.T) {
	in := "```markdown\nOnce upon a time.\n```"
	if got := CleanFences(in); got != "Once upon a time." {
		t.Errorf("got %q", got)
	}
	plain := "No fences here."
	if got := CleanFences(plain); got != plain {
		t.Errorf("plain text changed: %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "A. B. C.", []string{"A.", "B.", "C."}},
		{"mixed terminals", "Wow! Really? Yes.", []string{"Wow!", "Really?", "Yes."}},
		{"ellipsis stays whole", "Wait... then go.", []string{"Wait...", "then go."}},
		{"trailing fragment kept", "First. Second and counting", []string{"First.", "Second and counting"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	in := "First paragraph.\n\nSecond one.\n\n\n\nThird."
	got := SplitParagraphs(in)
	if len(got) != 3 {
		t.Fatalf("got %d paragraphs, want 3: %v", len(got), got)
	}
}

func TestSplitParagraphs_CRLF(t *testing.T) {
	in := "First paragraph.\r\n\r\nSecond one.\r\n\r\nThird."
	got := SplitParagraphs(in)
	if len(got) != 3 {
		t.Fatalf("got %d paragraphs, want 3: %v", len(got), got)
	}
}

func TestLeadingSentence(t *testing.T) {
	if got := LeadingSentence("The fox ran. Then it hid."); got != "The fox ran." {
		t.Errorf("got %q", got)
	}
	if got := LeadingSentence("no punctuation here"); got != "no punctuation here" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	s := "The quick brown fox jumps over the lazy dog"
	got := TruncateRunes(s, 20)
	if len([]rune(got)) > 21 { // budget + ellipsis
		t.Errorf("truncated string too long: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	if got := TruncateRunes("short", 20); got != "short" {
		t.Errorf("short string changed: %q", got)
	}
}

func TestWordWrap(t *testing.T) {
	text := "one two three four five six seven"
	wrapped := WordWrap(text, 10)
	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > 13 {
			t.Errorf("line too long: %q", line)
		}
	}
}
