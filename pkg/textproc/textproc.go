// Package textproc holds the shared text utilities for generated content:
// markup stripping, sentence and paragraph splitting, word counting, and the
// truncation helpers used for overlays and logs. Providers return prose in
// wildly different shapes (markdown fences, stray HTML, doubled whitespace),
// so everything downstream funnels through here first.
package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripMarkup removes HTML tags from provider output, keeping the text
// content. Script and style bodies are dropped entirely. Input without any
// markup passes through unchanged apart from whitespace normalization.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return NormalizeWhitespace(html.UnescapeString(s))
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return NormalizeWhitespace(s)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.P, atom.Br, atom.Div, atom.Li:
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return NormalizeWhitespace(b.String())
}

// NormalizeWhitespace collapses runs of spaces and tabs, trims line ends, and
// reduces 3+ consecutive newlines to a paragraph break.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := strings.Join(lines, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(out)
}

// CleanFences removes a surrounding markdown code fence if the whole text is
// wrapped in one. Some models insist on fencing prose.
func CleanFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	first := strings.IndexByte(t, '\n')
	if first == -1 {
		return t
	}
	rest := t[first+1:]
	end := strings.LastIndex(rest, "```")
	if end == -1 {
		return t
	}
	return strings.TrimSpace(rest[:end])
}

// SplitParagraphs splits text on blank lines. Empty paragraphs are dropped.
// Windows line endings are accepted.
func SplitParagraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(s, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

// SplitSentences splits on '.', '!' and '?' boundaries. Runs of terminal
// punctuation (ellipses, "?!") stay attached to their sentence. This is a
// deliberately simple splitter; abbreviation handling is not attempted.
func SplitSentences(s string) []string {
	var out []string
	var b strings.Builder

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if !isTerminal(runes[i]) {
			continue
		}
		// Consume the rest of the punctuation run.
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
			b.WriteRune(runes[i])
		}
		if sentence := strings.TrimSpace(b.String()); sentence != "" {
			out = append(out, sentence)
		}
		b.Reset()
	}
	if tail := strings.TrimSpace(b.String()); tail != "" {
		out = append(out, tail)
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// LeadingSentence returns the first sentence of s, or all of s when no
// terminal punctuation exists.
func LeadingSentence(s string) string {
	sentences := SplitSentences(s)
	if len(sentences) == 0 {
		return strings.TrimSpace(s)
	}
	return sentences[0]
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// TruncateRunes cuts s to at most n runes, appending an ellipsis when the
// cut happened on a word boundary search backwards.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	cut := n
	for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = n
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}

// WordWrap wraps text at the specified width. Used by history logging.
func WordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		lineLen := 0
		for j, word := range words {
			if j > 0 {
				if lineLen+len(word)+1 > width {
					result.WriteString("\n")
					lineLen = 0
				} else {
					result.WriteString(" ")
					lineLen++
				}
			}
			result.WriteString(word)
			lineLen += len(word)
		}
	}

	return result.String()
}
