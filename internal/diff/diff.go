package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a segment.
type Kind string

const (
	Added     Kind = "added"
	Removed   Kind = "removed"
	Unchanged Kind = "unchanged"
)

// Segment is a run of whole lines. Line numbers are 1-based positions in
// the new text. A Removed segment has LineStart == LineEnd, marking where
// the deletion sits in the new text.
type Segment struct {
	Type      Kind   `json:"type"`
	Value     string `json:"value"`
	LineStart int    `json:"lineStart"`
	LineEnd   int    `json:"lineEnd"`
}

// Compute returns the line-level changes turning oldText into newText, in
// document order.
func Compute(oldText, newText string) []Segment {
	if oldText == newText {
		return []Segment{{Type: Unchanged, Value: newText, LineStart: 1, LineEnd: countLines(newText)}}
	}

	var t lineTable
	a, okA := t.encode(oldText)
	b, okB := t.encode(newText)
	if !okA || !okB {
		return replaceAll(oldText, newText)
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // line tokens keep inputs small; always take the minimal script
	diffs := dmp.DiffMainRunes(a, b, false)

	segments := make([]Segment, 0, len(diffs))
	line := 1
	for _, d := range diffs {
		text := t.decode(d.Text)
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			segments = append(segments, Segment{Type: Removed, Value: text, LineStart: line, LineEnd: line})
		case diffmatchpatch.DiffInsert:
			segments = append(segments, span(Added, text, &line))
		default:
			segments = append(segments, span(Unchanged, text, &line))
		}
	}
	return segments
}

// replaceAll reports the whole of oldText removed and the whole of newText
// added. Empty sides are left out.
func replaceAll(oldText, newText string) []Segment {
	var segments []Segment
	if oldText != "" {
		segments = append(segments, Segment{Type: Removed, Value: oldText, LineStart: 1, LineEnd: 1})
	}
	if newText != "" {
		line := 1
		segments = append(segments, span(Added, newText, &line))
	}
	return segments
}

const (
	firstToken   = 0xE000 // start of the BMP private use area
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// lineTable maps each distinct line to a single rune so the character diff
// runs over whole lines. Tokens start in the private use area, climb to
// utf8.MaxRune, then wrap to the low planes. Surrogates are never issued.
type lineTable struct {
	tokens map[string]rune
	lines  map[rune]string
	next   rune
	full   bool
}

// token returns the rune for line, minting one if needed. It reports false
// once every usable rune is taken.
func (t *lineTable) token(line string) (rune, bool) {
	if r, ok := t.tokens[line]; ok {
		return r, true
	}
	if t.full {
		return 0, false
	}
	if t.tokens == nil {
		t.tokens = make(map[string]rune)
		t.lines = make(map[rune]string)
		t.next = firstToken
	}
	r := t.next
	t.tokens[line] = r
	t.lines[r] = line

	t.next++
	switch {
	case t.next > utf8.MaxRune:
		t.next = 1
	case t.next == surrogateMin:
		t.next = surrogateMax + 1
	}
	if t.next == firstToken {
		t.full = true
	}
	return r, true
}

// encode splits text after each newline and returns one token per line.
func (t *lineTable) encode(text string) ([]rune, bool) {
	if text == "" {
		return nil, true
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	out := make([]rune, len(lines))
	for i, l := range lines {
		r, ok := t.token(l)
		if !ok {
			return nil, false
		}
		out[i] = r
	}
	return out, true
}

func (t *lineTable) decode(tokens string) string {
	var b strings.Builder
	for _, r := range tokens {
		b.WriteString(t.lines[r])
	}
	return b.String()
}

func span(kind Kind, value string, line *int) Segment {
	n := countLines(value)
	s := Segment{Type: kind, Value: value, LineStart: *line, LineEnd: *line + n - 1}
	*line += n
	return s
}

// countLines counts newline-terminated lines plus a trailing partial line.
// The empty string counts as a single empty line.
func countLines(s string) int {
	n := strings.Count(s, "\n")
	if s == "" || !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// Summary counts lines per segment kind.
type Summary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Summarize tallies the lines each kind contributes.
func Summarize(segments []Segment) Summary {
	var s Summary
	for _, seg := range segments {
		switch seg.Type {
		case Added:
			s.Added += countLines(seg.Value)
		case Removed:
			s.Removed += countLines(seg.Value)
		case Unchanged:
			if seg.Value != "" {
				s.Unchanged += countLines(seg.Value)
			}
		}
	}
	return s
}

// HasChanges reports whether any segment adds or removes lines.
func HasChanges(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Type != Unchanged {
			return true
		}
	}
	return false
}

// Format renders segments as unified-style text: "+" added, "-" removed,
// " " unchanged, one prefix per line.
func Format(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		prefix := " "
		switch seg.Type {
		case Added:
			prefix = "+"
		case Removed:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(seg.Value, "\n") {
			if line == "" {
				continue
			}
			b.WriteString(prefix)
			b.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				b.WriteString("\n\\ No newline at end of text\n")
			}
		}
	}
	return b.String()
}
