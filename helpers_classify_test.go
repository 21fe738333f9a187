// inlinedoc/helpers_classify_test.go
package inlinedoc

import "testing"

func TestClassifySymbol(t *testing.T) {
	cl := NewClassifier()
	tests := []struct {
		name      string
		buf       string
		cursor    int
		wantNil   bool
		wantText  string
		wantStart int
		wantEnd   int
	}{
		{"Plain identifier", "total += 1", 2, false, "total", 0, 5},
		{"Identifier mid-buffer", "x = counter;", 6, false, "counter", 4, 11},
		{"Keyword int ignored", "int x = 42;", 1, true, "", 0, 0},
		{"Literal NULL ignored", "p = NULL;", 5, true, "", 0, 0},
		{"Literal true ignored", "x = true;", 5, true, "", 0, 0},
		{"Keyword this ignored", "this->foo", 1, true, "", 0, 0},
		{"Integer literal ignored", "x = 42;", 4, true, "", 0, 0},
		{"Exponent literal ignored", "y = 3e10;", 4, true, "", 0, 0},
		{"Hex literal ignored", "m = 0xFF;", 5, true, "", 0, 0},
		{"Line comment", "// call foo here", 9, true, "", 0, 0},
		{"Block comment", "/* foo( */ g", 4, true, "", 0, 0},
		{"String with no enclosing call", `"hello"`, 3, true, "", 0, 0},
		{"Cursor past buffer", "abc", 4, true, "", 0, 0},
		{"Negative cursor", "abc", -1, true, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cl.Classify([]byte(tt.buf), tt.cursor, false)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Classify() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Classify() = nil, want symbol target")
			}
			if got.Kind != TargetSymbol {
				t.Errorf("Kind = %v, want %v", got.Kind, TargetSymbol)
			}
			if got.Text != tt.wantText || got.Start != tt.wantStart || got.End != tt.wantEnd {
				t.Errorf("target = %q [%d,%d), want %q [%d,%d)", got.Text, got.Start, got.End, tt.wantText, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestClassifyCall(t *testing.T) {
	cl := NewClassifier()
	tests := []struct {
		name      string
		buf       string
		cursor    int
		forceCall bool
		wantNil   bool
		wantHead  string
		wantIndex int
		wantCount int
	}{
		// Cursor inside a string still resolves the enclosing call.
		{"Inside string argument", `printf("hello, world"`, 10, false, false, "printf", 0, 1},
		// Cursor on a word inside a call normally wins as a symbol; forceCall
		// overrides.
		{"Force call over symbol", "f(abc)", 3, true, false, "f", 0, 1},
		{"Whitespace between arguments", "f(a, b)", 4, false, false, "f", 1, 2},
		// Template argument lists fold into leading argument positions.
		{"Template call head", "vector<float>(10, 0.1)", 16, false, false, "vector", 1, 3},
		{"Two template arguments", "h<K,V>(a, b)", 9, false, false, "h", 3, 4},
		// Keyword heads are never documented.
		{"Keyword head if", "if (", 4, false, true, "", 0, 0},
		{"Keyword head while", "while (", 7, false, true, "", 0, 0},
		// Broken syntax resolves to nothing, silently.
		{"No enclosing group", ")))", 3, false, true, "", 0, 0},
		{"Innermost group is bracket", "arr[idx", 7, false, true, "", 0, 0},
		{"Paren without head", "( a, b", 5, false, true, "", 0, 0},
		{"Numeric head", "42(x", 4, false, true, "", 0, 0},
		// Half-typed call resolves against the buffer end.
		{"Unclosed call", "f(a, ", 5, false, false, "f", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cl.Classify([]byte(tt.buf), tt.cursor, tt.forceCall)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Classify() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Classify() = nil, want call target")
			}
			if got.Kind != TargetCall {
				t.Errorf("Kind = %v, want %v", got.Kind, TargetCall)
			}
			if got.Text != tt.wantHead {
				t.Errorf("head = %q, want %q", got.Text, tt.wantHead)
			}
			if got.ArgIndex != tt.wantIndex || got.ArgCount != tt.wantCount {
				t.Errorf("position = %d/%d, want %d/%d", got.ArgIndex, got.ArgCount, tt.wantIndex, tt.wantCount)
			}
		})
	}
}

func TestClassifierExtraIgnoreTokens(t *testing.T) {
	cl := NewClassifier("emacs_value", "EMACS_MAJOR_VERSION")
	if got := cl.Classify([]byte("emacs_value v;"), 3, false); got != nil {
		t.Errorf("extra ignore token still classified: %+v", got)
	}
	// The built-in set stays active alongside extras.
	if got := cl.Classify([]byte("return x;"), 2, false); got != nil {
		t.Errorf("built-in ignore token still classified: %+v", got)
	}
	if got := cl.Classify([]byte("payload x;"), 3, false); got == nil {
		t.Error("ordinary identifier not classified")
	}
}
