package diff

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"
)

// checkSegments verifies that segs rebuild both sides and that line numbers
// follow the new text.
func checkSegments(t *testing.T, oldText, newText string, segs []Segment) {
	t.Helper()
	var newSide, oldSide strings.Builder
	line := 1
	for i, s := range segs {
		if s.Value == "" {
			t.Errorf("segment %d is empty", i)
		}
		if s.Type != Removed {
			newSide.WriteString(s.Value)
		}
		if s.Type != Added {
			oldSide.WriteString(s.Value)
		}
		if s.Type == Removed {
			if s.LineStart != line || s.LineEnd != line {
				t.Errorf("segment %d: removed at %d-%d, want marker at %d", i, s.LineStart, s.LineEnd, line)
			}
			continue
		}
		if s.LineStart != line {
			t.Errorf("segment %d: %s starts at %d, want %d", i, s.Type, s.LineStart, line)
		}
		if got := s.LineEnd - s.LineStart + 1; got != countLines(s.Value) {
			t.Errorf("segment %d: %s spans %d lines, value has %d", i, s.Type, got, countLines(s.Value))
		}
		line = s.LineEnd + 1
	}
	if newSide.String() != newText {
		t.Errorf("new side = %q, want %q", newSide.String(), newText)
	}
	if oldSide.String() != oldText {
		t.Errorf("old side = %q, want %q", oldSide.String(), oldText)
	}
	if newText != "" && line != countLines(newText)+1 {
		t.Errorf("line counter ended at %d, new text has %d lines", line, countLines(newText))
	}
}

// numbered returns n lines "l0".."l<n-1>" joined by newlines.
func numbered(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("l%d", i)
	}
	return lines
}

// mutate applies seeded random replacements, deletions and insertions and
// always rewrites the last line.
func mutate(rng *rand.Rand, lines []string) []string {
	out := make([]string, 0, len(lines)+len(lines)/10)
	for i, l := range lines {
		switch r := rng.Intn(20); {
		case i == len(lines)-1:
			out = append(out, "last edited")
		case r == 0:
			out = append(out, fmt.Sprintf("changed %d", i))
		case r == 1:
			// deleted
		case r == 2:
			out = append(out, l, fmt.Sprintf("inserted after %d", i))
		case r == 3:
			out = append(out, "") // blank lines repeat
		default:
			out = append(out, l)
		}
	}
	return out
}

func TestCompute_ReplaceMiddleLine(t *testing.T) {
	got := Compute("a\nb\nc", "a\nX\nc")
	want := []Segment{
		{Type: Unchanged, Value: "a\n", LineStart: 1, LineEnd: 1},
		{Type: Removed, Value: "b\n", LineStart: 2, LineEnd: 2},
		{Type: Added, Value: "X\n", LineStart: 2, LineEnd: 2},
		{Type: Unchanged, Value: "c", LineStart: 3, LineEnd: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d segments %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCompute_Identical(t *testing.T) {
	for _, text := range []string{"one\ntwo\nthree", "x\n", ""} {
		got := Compute(text, text)
		if len(got) != 1 {
			t.Fatalf("Compute(%q, same) returned %d segments", text, len(got))
		}
		seg := got[0]
		if seg.Type != Unchanged || seg.Value != text || seg.LineStart != 1 || seg.LineEnd != countLines(text) {
			t.Errorf("Compute(%q, same) = %+v", text, seg)
		}
	}
}

func TestCompute_Reconstructs(t *testing.T) {
	pairs := []struct{ old, new string }{
		{"", "hello"},
		{"hello", ""},
		{"a\nb", "a\nb\n"},
		{"a\nb\nc\nd\n", "b\nc\nx\nd\ny\n"},
		{"# Title\n\nintro\n\n## Part\nbody\n", "# Title\n\nnew intro\nmore\n\n## Part\nbody\n\n## Extra\n"},
		{"same\nsame\nsame\n", "same\nsame\n"},
		{"no trailing", "no trailing\nnow two"},
	}
	for _, p := range pairs {
		segs := Compute(p.old, p.new)
		var newText, oldText strings.Builder
		for _, s := range segs {
			if s.Type != Removed {
				newText.WriteString(s.Value)
			}
			if s.Type != Added {
				oldText.WriteString(s.Value)
			}
		}
		if newText.String() != p.new {
			t.Errorf("Compute(%q, %q): new side = %q", p.old, p.new, newText.String())
		}
		if oldText.String() != p.old {
			t.Errorf("Compute(%q, %q): old side = %q", p.old, p.new, oldText.String())
		}
	}
}

func TestCompute_LastLineOfTen(t *testing.T) {
	lines := numbered(10)
	oldText := strings.Join(lines, "\n")
	lines[9] = "x"
	newText := strings.Join(lines, "\n")

	got := Compute(oldText, newText)
	want := []Segment{
		{Type: Unchanged, Value: "l0\nl1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\n", LineStart: 1, LineEnd: 9},
		{Type: Removed, Value: "l9", LineStart: 10, LineEnd: 10},
		{Type: Added, Value: "x", LineStart: 10, LineEnd: 10},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d segments %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCompute_Generated(t *testing.T) {
	for _, n := range []int{10, 11, 57, 300, 1000} {
		for seed := int64(1); seed <= 4; seed++ {
			for _, trailing := range []string{"", "\n"} {
				name := fmt.Sprintf("lines=%d/seed=%d/trailing=%t", n, seed, trailing != "")
				t.Run(name, func(t *testing.T) {
					rng := rand.New(rand.NewSource(seed))
					before := numbered(n)
					after := mutate(rng, before)
					oldText := strings.Join(before, "\n") + trailing
					newText := strings.Join(after, "\n") + trailing

					checkSegments(t, oldText, newText, Compute(oldText, newText))
					checkSegments(t, newText, oldText, Compute(newText, oldText))
				})
			}
		}
	}
}

func TestCompute_ManyDistinctLines(t *testing.T) {
	// more distinct lines than the BMP private use area holds
	before := numbered(7000)
	after := append([]string(nil), before...)
	after[0] = "first"
	after[6500] = "late"
	after = append(after, "tail")
	oldText := strings.Join(before, "\n") + "\n"
	newText := strings.Join(after, "\n") + "\n"

	segs := Compute(oldText, newText)
	checkSegments(t, oldText, newText, segs)
	if sum := Summarize(segs); sum.Added != 3 || sum.Removed != 2 {
		t.Errorf("summary = %+v, want 3 added and 2 removed", sum)
	}
}

func TestLineTable_SkipsSurrogatesAndWraps(t *testing.T) {
	var lt lineTable
	first, _ := lt.token("a\n")
	if first != firstToken {
		t.Errorf("first token = %U, want %U", first, firstToken)
	}

	lt.next = utf8.MaxRune
	top, _ := lt.token("b\n")
	if top != utf8.MaxRune || lt.next != 1 {
		t.Errorf("token = %U, next = %U; want %U then wrap to U+0001", top, lt.next, utf8.MaxRune)
	}

	lt.next = surrogateMin - 1
	low, _ := lt.token("c\n")
	if low != surrogateMin-1 {
		t.Errorf("token = %U, want %U", low, surrogateMin-1)
	}
	if _, ok := lt.token("d\n"); ok {
		t.Error("table should be exhausted after reaching the surrogate block")
	}
	if r, ok := lt.token("a\n"); !ok || r != first {
		t.Errorf("known line should keep its token, got %U %v", r, ok)
	}

	for _, r := range []rune{first, top, low} {
		if !utf8.ValidRune(r) {
			t.Errorf("issued invalid rune %U", r)
		}
	}
	if got := lt.decode(string([]rune{low, first, top})); got != "c\na\nb\n" {
		t.Errorf("decode = %q", got)
	}
}

func TestReplaceAll(t *testing.T) {
	checkSegments(t, "a\nb\n", "x\ny", replaceAll("a\nb\n", "x\ny"))
	checkSegments(t, "", "x\n", replaceAll("", "x\n"))
	checkSegments(t, "gone", "", replaceAll("gone", ""))
}

func TestCompute_LineNumbering(t *testing.T) {
	segs := Compute("a\nb\nc\nd\n", "a\nnew1\nnew2\nd\ntail")
	line := 1
	for _, s := range segs {
		if s.Type == Removed {
			if s.LineStart != line || s.LineEnd != line {
				t.Errorf("removed %q at %d-%d, want marker at %d", s.Value, s.LineStart, s.LineEnd, line)
			}
			continue
		}
		if s.LineStart != line {
			t.Errorf("%s %q starts at %d, want %d", s.Type, s.Value, s.LineStart, line)
		}
		if got := s.LineEnd - s.LineStart + 1; got != countLines(s.Value) {
			t.Errorf("%s %q spans %d lines, value has %d", s.Type, s.Value, got, countLines(s.Value))
		}
		line = s.LineEnd + 1
	}
	if line != 6 {
		t.Errorf("new text should end after line 5, counter = %d", line)
	}
}

func TestCompute_LineGranularity(t *testing.T) {
	segs := Compute("the quick fox\n", "the quick dog\n")
	if len(segs) != 2 {
		t.Fatalf("expected whole-line remove+add, got %+v", segs)
	}
	if segs[0].Type != Removed || segs[0].Value != "the quick fox\n" {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].Type != Added || segs[1].Value != "the quick dog\n" {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		if got := countLines(tt.in); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSummarizeAndHasChanges(t *testing.T) {
	segs := Compute("a\nb\nc\n", "a\nX\nY\nc\n")
	sum := Summarize(segs)
	if sum.Added != 2 || sum.Removed != 1 || sum.Unchanged != 2 {
		t.Errorf("Summarize = %+v", sum)
	}
	if !HasChanges(segs) {
		t.Error("HasChanges should be true")
	}
	if HasChanges(Compute("same", "same")) {
		t.Error("identical input has no changes")
	}
	if got := Summarize(Compute("", "")); got.Unchanged != 0 {
		t.Errorf("empty text has no unchanged lines, got %+v", got)
	}
}

func TestFormat(t *testing.T) {
	got := Format(Compute("a\nb\n", "a\nc\n"))
	want := " a\n-b\n+c\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}

	got = Format(Compute("x", "y"))
	if !strings.Contains(got, "-x\n\\ No newline at end of text\n+y\n") {
		t.Errorf("Format without trailing newline = %q", got)
	}
}
