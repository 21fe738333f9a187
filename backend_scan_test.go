// inlinedoc/backend_scan_test.go
package inlinedoc

import (
	"context"
	"testing"

	"golang.org/x/tools/txtar"
)

// The fixture mirrors a typical C++ buffer: overloaded prototypes with
// docstrings, a macro, and use sites that must not register as declarations.
const scanFixture = `Declaration scanning fixture.
-- overloads.cc --
#include <vector>
#define SQUARE(x) ((x) * (x))

/** docstring for f */
void f(string x);
/** docstring for f */
void f(int x, int y);
/** docstring for f */
void f(double x, double y);

/** docstring for g */
void g(string x) {
  f(x);
  f(x, x);
  g(x);
  int s = SQUARE(3);
}
`

func fixtureBuffer(t *testing.T, name string) []byte {
	t.Helper()
	arc := txtar.Parse([]byte(scanFixture))
	for _, f := range arc.Files {
		if f.Name == name {
			return f.Data
		}
	}
	t.Fatalf("fixture file %q not found in archive", name)
	return nil
}

func scanFor(t *testing.T, buf []byte, name string) []Candidate {
	t.Helper()
	var got []Candidate
	replies := 0
	backend := NewScanBackend(func() []byte { return buf }, testLogger())

	// Query at the end of the identifier's first occurrence, the way the
	// dispatcher addresses targets.
	pos := -1
	for i := 0; i+len(name) <= len(buf); i++ {
		if string(buf[i:i+len(name)]) == name &&
			(i == 0 || !isWordByte(buf[i-1])) &&
			(i+len(name) == len(buf) || !isWordByte(buf[i+len(name)])) {
			pos = i + len(name)
			break
		}
	}
	if pos < 0 {
		t.Fatalf("identifier %q not in fixture", name)
	}

	backend.RequestCandidates(context.Background(), pos, func(c []Candidate) {
		got = c
		replies++
	})
	if replies != 1 {
		t.Fatalf("onReply fired %d times, want exactly 1", replies)
	}
	return got
}

func TestScanBackendOverloads(t *testing.T) {
	buf := fixtureBuffer(t, "overloads.cc")
	got := scanFor(t, buf, "f")

	if len(got) != 3 {
		t.Fatalf("got %d candidates for f, want 3 overloads: %+v", len(got), got)
	}
	wantArgLists := []string{"(string x)", "(int x, int y)", "(double x, double y)"}
	wantParams := []int{1, 2, 2}
	for i, c := range got {
		if c.DisplayName != "f" {
			t.Errorf("candidate %d DisplayName = %q, want f", i, c.DisplayName)
		}
		if c.ResultType != "void" {
			t.Errorf("candidate %d ResultType = %q, want void", i, c.ResultType)
		}
		if c.ArgList != wantArgLists[i] {
			t.Errorf("candidate %d ArgList = %q, want %q", i, c.ArgList, wantArgLists[i])
		}
		if c.BriefComment != "docstring for f" {
			t.Errorf("candidate %d BriefComment = %q, want %q", i, c.BriefComment, "docstring for f")
		}
		if n := c.paramCount(); n != wantParams[i] {
			t.Errorf("candidate %d paramCount() = %d, want %d", i, n, wantParams[i])
		}
	}
}

func TestScanBackendMacro(t *testing.T) {
	buf := fixtureBuffer(t, "overloads.cc")
	got := scanFor(t, buf, "SQUARE")

	if len(got) != 1 {
		t.Fatalf("got %d candidates for SQUARE, want 1: %+v", len(got), got)
	}
	c := got[0]
	if c.ResultType != "" {
		t.Errorf("macro ResultType = %q, want empty", c.ResultType)
	}
	if c.ArgList != "(x)" {
		t.Errorf("macro ArgList = %q, want (x)", c.ArgList)
	}
}

func TestScanBackendDocstring(t *testing.T) {
	buf := fixtureBuffer(t, "overloads.cc")
	got := scanFor(t, buf, "g")

	if len(got) != 1 {
		t.Fatalf("got %d candidates for g, want 1: %+v", len(got), got)
	}
	if got[0].BriefComment != "docstring for g" {
		t.Errorf("BriefComment = %q, want %q", got[0].BriefComment, "docstring for g")
	}
	if got[0].ArgList != "(string x)" {
		t.Errorf("ArgList = %q, want (string x)", got[0].ArgList)
	}
}

func TestScanBackendUnknownIdentifier(t *testing.T) {
	buf := fixtureBuffer(t, "overloads.cc")
	backend := NewScanBackend(func() []byte { return buf }, testLogger())

	replies := 0
	backend.RequestCandidates(context.Background(), len(buf), func(c []Candidate) {
		replies++
		if len(c) != 0 {
			t.Errorf("got %d candidates at buffer end, want none", len(c))
		}
	})
	if replies != 1 {
		t.Errorf("onReply fired %d times, want 1", replies)
	}

	replies = 0
	backend.RequestCandidates(context.Background(), len(buf)+10, func(c []Candidate) {
		replies++
		if c != nil {
			t.Errorf("out-of-range position produced candidates: %+v", c)
		}
	})
	if replies != 1 {
		t.Errorf("onReply fired %d times for out-of-range position, want 1", replies)
	}
}

func TestPlaceholderSpans(t *testing.T) {
	tests := []struct {
		name      string
		argList   string
		wantCount int // Expected parameter count; spans must be 2n+1.
		wantParam []string
	}{
		{"Two parameters", "(int x, int y)", 2, []string{"int x", "int y"}},
		{"One parameter", "(string x)", 1, []string{"string x"}},
		{"Empty list", "()", 0, nil},
		{"Nested template default", "(vector<int> v, int n)", 2, []string{"vector<int> v", "int n"}},
		{"Default argument with call", "(int n, T x = f(a, b))", 2, []string{"int n", "T x = f(a, b)"}},
		{"String default", `(const char *s = "a,b")`, 1, []string{`const char *s = "a,b"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := placeholderSpans(tt.argList)
			if want := 2*tt.wantCount + 1; len(spans) != want {
				t.Fatalf("placeholderSpans(%q) has %d spans, want %d", tt.argList, len(spans), want)
			}
			for i, wantText := range tt.wantParam {
				sp := spans[2*i+1]
				if got := tt.argList[sp.Start:sp.End]; got != wantText {
					t.Errorf("parameter %d = %q, want %q", i, got, wantText)
				}
			}
		})
	}
}

func TestDeclarationPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   bool
	}{
		{"void", true},
		{"static inline int", true},
		{"std::vector<int>", true},
		{"char *", true},
		{"string &", true},
		{"", false},
		{"return", false},
		{"if", false},
		{"int r =", false},
		{"// void", false},
		{"/* void */", false},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := declarationPrefix(tt.prefix); got != tt.want {
				t.Errorf("declarationPrefix(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}
