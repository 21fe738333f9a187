// inlinedoc/helpers_classify.go
// Contains the lexical classifier: given raw buffer text and a cursor offset,
// decide whether the cursor rests on a bare symbol or inside a call's argument
// list, and extract the relevant token.
package inlinedoc

import "regexp"

// ============================================================================
// Syntax Scanning
// ============================================================================

type syntaxClass int

const (
	classCode syntaxClass = iota
	classString
	classChar
	classLineComment
	classBlockComment
)

// scanContext scans buf from the start up to pos tracking C-family string,
// character and comment state plus the stack of unclosed group openers.
// A linear scan per tick keeps the classifier robust on arbitrarily broken
// partial buffers, which a parser would choke on.
func scanContext(buf []byte, pos int) (syntaxClass, []int) {
	if pos > len(buf) {
		pos = len(buf)
	}
	var openers []int
	cls := classCode
	for i := 0; i < pos; i++ {
		c := buf[i]
		switch cls {
		case classString:
			if c == '\\' {
				i++
			} else if c == '"' {
				cls = classCode
			}
		case classChar:
			if c == '\\' {
				i++
			} else if c == '\'' {
				cls = classCode
			}
		case classLineComment:
			if c == '\n' {
				cls = classCode
			}
		case classBlockComment:
			if c == '*' && i+1 < len(buf) && buf[i+1] == '/' {
				i++
				cls = classCode
			}
		default:
			switch c {
			case '"':
				cls = classString
			case '\'':
				cls = classChar
			case '/':
				if i+1 < len(buf) {
					if buf[i+1] == '/' {
						cls = classLineComment
						i++
					} else if buf[i+1] == '*' {
						cls = classBlockComment
						i++
					}
				}
			case '(', '[', '{':
				openers = append(openers, i)
			case ')', ']', '}':
				if len(openers) > 0 {
					openers = openers[:len(openers)-1]
				}
			}
		}
	}
	return cls, openers
}

// isWordByte reports whether b can be part of an identifier token. Bytes above
// ASCII are treated as word constituents so multi-byte identifiers survive.
func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= 0x80
}

// wordAt extracts the maximal identifier token covering or adjacent to cursor.
func wordAt(buf []byte, cursor int) (text string, start, end int) {
	start, end = cursor, cursor
	for start > 0 && isWordByte(buf[start-1]) {
		start--
	}
	for end < len(buf) && isWordByte(buf[end]) {
		end++
	}
	return string(buf[start:end]), start, end
}

// numericLiteralRE matches bare numeric literals, including exponent and hex
// forms with the usual C suffixes. Such tokens never have declarations worth
// showing.
var numericLiteralRE = regexp.MustCompile(`^(?:[0-9]+(?:[eE][+-]?[0-9]+)?[fFlLuU]*|0[xX][0-9a-fA-F]+[uUlL]*)$`)

// ============================================================================
// Ignore Set
// ============================================================================

// defaultIgnoreTokens lists keywords and literals of the C-family languages
// the classifier understands out of the box. The set deliberately mixes C,
// C++ and Objective-C; per-language scoping happens through the extra tokens
// handed to NewClassifier.
var defaultIgnoreTokens = []string{
	// Primitive types.
	"auto", "bool", "char", "double", "float", "int", "long", "short",
	"signed", "unsigned", "void", "wchar_t", "size_t", "id", "instancetype",
	// Literals.
	"NULL", "nullptr", "nil", "Nil", "true", "false", "YES", "NO",
	// Control flow.
	"break", "case", "catch", "continue", "default", "do", "else", "for",
	"goto", "if", "return", "switch", "throw", "try", "while",
	// Storage class and declarators.
	"class", "const", "constexpr", "enum", "explicit", "extern", "friend",
	"inline", "mutable", "namespace", "private", "protected", "public",
	"register", "static", "struct", "template", "typedef", "typename",
	"union", "using", "virtual", "volatile",
	// Operators and self references.
	"delete", "new", "operator", "self", "sizeof", "super", "this",
}

// Classifier decides what the cursor rests on. The zero value is not usable;
// construct with NewClassifier.
type Classifier struct {
	ignore map[string]struct{}
}

// NewClassifier builds a classifier with the built-in ignore set plus any
// extra tokens (typically Config.IgnoreTokens for per-language tuning).
func NewClassifier(extra ...string) *Classifier {
	ignore := make(map[string]struct{}, len(defaultIgnoreTokens)+len(extra))
	for _, tok := range defaultIgnoreTokens {
		ignore[tok] = struct{}{}
	}
	for _, tok := range extra {
		if tok != "" {
			ignore[tok] = struct{}{}
		}
	}
	return &Classifier{ignore: ignore}
}

func (cl *Classifier) ignored(tok string) bool {
	_, ok := cl.ignore[tok]
	return ok
}

// ============================================================================
// Classification
// ============================================================================

// Classify determines the target at cursor, or nil when there is nothing to
// document: inside comments, on ignored or numeric tokens, or when the
// surrounding syntax is too broken to locate an enclosing call. Callers must
// tolerate unparsable code under the cursor, so every failure is a silent nil.
func (cl *Classifier) Classify(buf []byte, cursor int, forceCall bool) *Target {
	if cursor < 0 || cursor > len(buf) {
		return nil
	}
	cls, openers := scanContext(buf, cursor)
	if cls == classLineComment || cls == classBlockComment {
		return nil
	}

	if !forceCall && cls == classCode {
		// Symbol path: the byte at the cursor must itself be a word
		// constituent, otherwise we fall through to the call attempt.
		if cursor < len(buf) && isWordByte(buf[cursor]) {
			text, start, end := wordAt(buf, cursor)
			if text == "" || cl.ignored(text) || numericLiteralRE.MatchString(text) {
				return nil
			}
			return &Target{Kind: TargetSymbol, Text: text, Start: start, End: end}
		}
	}

	// Call path: the innermost enclosing group must open with '('.
	if len(openers) == 0 {
		return nil
	}
	open := openers[len(openers)-1]
	if buf[open] != '(' {
		return nil
	}
	head, headStart, headEnd, ok := callHead(buf, open)
	if !ok || cl.ignored(head) || numericLiteralRE.MatchString(head) {
		return nil
	}
	closing := matchForward(buf, open)
	index, count := resolveArgPosition(buf, cursor, open, closing)
	return &Target{
		Kind:     TargetCall,
		Text:     head,
		Start:    headStart,
		End:      headEnd,
		ArgIndex: index,
		ArgCount: count,
	}
}

// callHead locates the identifier naming the call whose argument list opens at
// open. Whitespace before the paren is skipped, as is one <...> template
// argument group when the paren directly follows its closing '>'.
func callHead(buf []byte, open int) (head string, start, end int, ok bool) {
	i := open
	for i > 0 && isSpaceByte(buf[i-1]) {
		i--
	}
	if i > 0 && buf[i-1] == '>' {
		if lt := matchAngleBack(buf, i-1); lt >= 0 {
			i = lt
			for i > 0 && isSpaceByte(buf[i-1]) {
				i--
			}
		}
	}
	if i == 0 || !isWordByte(buf[i-1]) {
		return "", 0, 0, false
	}
	end = i
	start = i
	for start > 0 && isWordByte(buf[start-1]) {
		start--
	}
	head = string(buf[start:end])
	// A head starting with a digit is a literal, not a call.
	if head == "" || (head[0] >= '0' && head[0] <= '9') {
		return "", 0, 0, false
	}
	return head, start, end, true
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
