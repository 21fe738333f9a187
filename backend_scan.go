// inlinedoc/backend_scan.go
// Contains ScanBackend, a self-contained Backend that derives candidates by
// scanning the buffer itself for declarations of the queried identifier.
package inlinedoc

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
)

// ScanBackend serves candidate declarations without an external engine by
// searching the buffer for prototypes of the identifier at the query
// position: the declaration's leading tokens become the result type, the
// parenthesized parameter list becomes the argument-list template with
// computed placeholder spans, and a /** ... */ docstring directly above
// becomes the brief comment. #define macros yield an empty result type.
// Replies are always synchronous. Results are deliberately over-inclusive;
// overloads are told apart downstream by argument count only.
type ScanBackend struct {
	source func() []byte
	logger *slog.Logger
}

// NewScanBackend creates a scanner reading the buffer through source on every
// request.
func NewScanBackend(source func() []byte, logger *slog.Logger) *ScanBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanBackend{source: source, logger: logger.With("component", "ScanBackend")}
}

// RequestCandidates implements Backend. pos addresses the end of the queried
// identifier; onReply is invoked exactly once, before returning.
func (b *ScanBackend) RequestCandidates(ctx context.Context, pos int, onReply func([]Candidate)) {
	buf := b.source()
	if pos < 0 || pos > len(buf) {
		onReply(nil)
		return
	}
	name, _, _ := wordAt(buf, pos)
	if name == "" {
		onReply(nil)
		return
	}
	candidates := scanDeclarations(buf, name)
	b.logger.Debug("Scanned buffer for declarations", "name", name, "candidates", len(candidates))
	onReply(candidates)
}

// stmtKeywords are tokens that, appearing before the identifier, mark a use
// site rather than a declaration.
var stmtKeywords = map[string]struct{}{
	"break": {}, "case": {}, "continue": {}, "do": {}, "else": {}, "for": {},
	"goto": {}, "if": {}, "return": {}, "switch": {}, "throw": {}, "while": {},
}

// scanDeclarations collects every declaration-shaped occurrence of name
// followed by a parameter list.
func scanDeclarations(buf []byte, name string) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})
	needle := []byte(name)

	for from := 0; ; {
		rel := bytes.Index(buf[from:], needle)
		if rel < 0 {
			break
		}
		i := from + rel
		from = i + len(needle)

		// Word boundaries around the occurrence.
		if i > 0 && isWordByte(buf[i-1]) {
			continue
		}
		nameEnd := i + len(needle)
		if nameEnd < len(buf) && isWordByte(buf[nameEnd]) {
			continue
		}

		// The parameter list must follow, optionally after spaces; macros
		// require the paren to touch the name.
		j := nameEnd
		for j < len(buf) && (buf[j] == ' ' || buf[j] == '\t') {
			j++
		}
		if j >= len(buf) || buf[j] != '(' {
			continue
		}

		lineStart := i
		for lineStart > 0 && buf[lineStart-1] != '\n' {
			lineStart--
		}
		prefix := strings.TrimSpace(string(buf[lineStart:i]))

		isMacro := strings.HasPrefix(prefix, "#define") && j == nameEnd
		if !isMacro && !declarationPrefix(prefix) {
			continue
		}

		closing := matchForward(buf, j)
		if closing >= len(buf) {
			continue // Unterminated parameter list.
		}
		argList := string(buf[j : closing+1])

		resultType := ""
		if !isMacro {
			resultType = strings.Join(strings.Fields(prefix), " ")
		}

		c := Candidate{
			DisplayName:      name,
			ResultType:       resultType,
			ArgList:          argList,
			BriefComment:     docCommentAbove(buf, lineStart),
			PlaceholderSpans: placeholderSpans(argList),
		}
		key := c.ResultType + "\x00" + c.ArgList + "\x00" + c.BriefComment
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// declarationPrefix reports whether the text before the identifier on its line
// looks like the head of a declaration: non-empty, not a comment, ending in a
// type-ish token, and free of statement keywords.
func declarationPrefix(prefix string) bool {
	if prefix == "" || strings.Contains(prefix, "//") || strings.Contains(prefix, "/*") {
		return false
	}
	last := prefix[len(prefix)-1]
	if !isWordByte(last) && last != '*' && last != '&' && last != '>' {
		return false
	}
	for _, field := range strings.Fields(prefix) {
		if _, ok := stmtKeywords[field]; ok {
			return false
		}
	}
	return true
}

// docCommentAbove extracts the /** ... */ docstring ending on the line just
// above lineStart, flattened to a single line.
func docCommentAbove(buf []byte, lineStart int) string {
	i := lineStart
	for i > 0 && (buf[i-1] == '\n' || buf[i-1] == '\r') {
		i--
	}
	for i > 0 && (buf[i-1] == ' ' || buf[i-1] == '\t') {
		i--
	}
	if i < 2 || buf[i-2] != '*' || buf[i-1] != '/' {
		return ""
	}
	open := bytes.LastIndex(buf[:i-2], []byte("/**"))
	if open < 0 {
		return ""
	}
	content := string(buf[open+3 : i-2])
	lines := strings.Split(content, "\n")
	for k, line := range lines {
		lines[k] = strings.TrimLeft(strings.TrimSpace(line), "* ")
	}
	return strings.TrimSpace(strings.Join(strings.Fields(strings.Join(lines, " ")), " "))
}

// placeholderSpans builds the alternating separator/parameter span encoding
// for an argument-list template: 2n+1 spans for n parameters, parameter spans
// at odd indices. Parameters are found by splitting the inner text on
// top-level commas with the same group and string skipping the resolver uses.
func placeholderSpans(argList string) []Span {
	raw := []byte(argList)
	if len(raw) < 2 || raw[0] != '(' {
		return nil
	}
	inner := Span{Start: 1, End: len(raw) - 1}

	// Collect [start,end) bounds of each top-level comma-separated piece.
	var pieces []Span
	pieceStart := inner.Start
	i := inner.Start
	for i < inner.End {
		switch raw[i] {
		case '(', '[', '{':
			i = skipGroup(raw, i, inner.End)
		case '"', '\'':
			i = skipQuoted(raw, i, inner.End)
		case ',':
			pieces = append(pieces, Span{Start: pieceStart, End: i})
			i++
			pieceStart = i
		default:
			i++
		}
	}
	pieces = append(pieces, Span{Start: pieceStart, End: inner.End})

	// Trim whitespace off each piece; an empty single piece means "()".
	params := pieces[:0]
	for _, p := range pieces {
		for p.Start < p.End && isSpaceByte(raw[p.Start]) {
			p.Start++
		}
		for p.End > p.Start && isSpaceByte(raw[p.End-1]) {
			p.End--
		}
		if p.Start < p.End {
			params = append(params, p)
		}
	}
	if len(params) == 0 {
		return []Span{{Start: 0, End: len(raw)}}
	}

	spans := make([]Span, 0, 2*len(params)+1)
	cursor := 0
	for _, p := range params {
		spans = append(spans, Span{Start: cursor, End: p.Start})
		spans = append(spans, p)
		cursor = p.End
	}
	spans = append(spans, Span{Start: cursor, End: len(raw)})
	return spans
}
