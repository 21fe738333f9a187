// inlinedoc/helpers_argpos_test.go
package inlinedoc

import (
	"strings"
	"testing"
)

func TestResolveArgPosition(t *testing.T) {
	tests := []struct {
		name      string
		buf       string
		cursor    int
		wantIndex int
		wantCount int
	}{
		{"First argument", "f(a, b, c)", 2, 0, 3},
		{"Second argument", "f(a, b, c)", 5, 1, 3},
		{"Third argument", "f(a, b, c)", 8, 2, 3},
		{"Cursor on comma counts left", "f(a, b, c)", 3, 0, 3},
		{"Empty argument list", "f()", 2, 0, 1},
		{"Single argument", "f(x)", 2, 0, 1},
		// A nested call's commas are invisible to the outer position.
		{"Nested call outer position", "f(g(a,b), c)", 10, 1, 2},
		{"Nested braces", "f({1, 2}, c)", 10, 1, 2},
		{"Nested brackets", "f(a[i, j], c)", 11, 1, 2},
		// Commas inside string and char literals never count.
		{"String with comma", `f("a,b", c)`, 9, 1, 2},
		{"Char literal comma", "f(',', c)", 7, 1, 2},
		{"Escaped quote in string", `f("a\",b", c)`, 11, 1, 2},
		// Half-typed call: the group resolves against the buffer end.
		{"Unclosed group", "f(a, b", 5, 1, 2},
		{"Unclosed nested group", "f(g(a, b", 7, 0, 1},
		// Template argument lists fold in as leading positions: a group with
		// n template arguments shifts both index and count by n.
		{"One template argument", "f<T>(x, y)", 5, 1, 3},
		{"Two template arguments first arg", "f<A,B>(x, y)", 7, 2, 4},
		{"Two template arguments second arg", "f<A,B>(x, y)", 10, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []byte(tt.buf)
			// The outer group is always the first paren in these fixtures.
			open := strings.IndexByte(tt.buf, '(')
			closing := matchForward(buf, open)
			index, count := resolveArgPosition(buf, tt.cursor, open, closing)
			if index != tt.wantIndex || count != tt.wantCount {
				t.Errorf("resolveArgPosition(%q, %d) = %d/%d, want %d/%d",
					tt.buf, tt.cursor, index, count, tt.wantIndex, tt.wantCount)
			}
		})
	}
}

// The template fold has to agree between the resolver, which shifts positions,
// and the classifier, which picks the head: together a two-parameter template
// group offsets every argument position by exactly two.
func TestTemplateFoldOffsetsMatch(t *testing.T) {
	plain := []byte("f(x, y)")
	templated := []byte("f<A,B>(x, y)")

	pi, pc := resolveArgPosition(plain, 2, 1, matchForward(plain, 1))
	ti, tc := resolveArgPosition(templated, 7, 6, matchForward(templated, 6))
	if ti != pi+2 || tc != pc+2 {
		t.Errorf("template fold: got %d/%d, plain %d/%d, want offset of exactly 2", ti, tc, pi, pc)
	}
}

func TestMatchAngleBack(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		gt   int
		want int
	}{
		{"Simple template", "vector<float>", 12, 6},
		{"Nested template", "map<string, vector<int>>", 23, 3},
		{"Comparison not a template", "a; b > c", -1, -1},
		{"Statement boundary bails", "x = 1; y > (", 9, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt := tt.gt
			if gt < 0 {
				gt = strings.IndexByte(tt.buf, '>')
			}
			if got := matchAngleBack([]byte(tt.buf), gt); got != tt.want {
				t.Errorf("matchAngleBack(%q, %d) = %d, want %d", tt.buf, gt, got, tt.want)
			}
		})
	}
}
