// inlinedoc/helpers_argpos.go
// Contains the argument-position resolver and the balanced-expression
// navigation primitives it relies on.
package inlinedoc

// resolveArgPosition computes the zero-based argument index of cursor within
// the parenthesis group [open,closing) plus the total argument count. Nested
// balanced groups and quoted strings are skipped atomically so their commas
// never count. An empty argument list reports one argument position, matching
// a cursor placed right after the opening paren with nothing typed yet.
//
// When the byte immediately preceding open is '>', the enclosing <...>
// template argument list is folded in as a block of leading argument
// positions: its count shifts both the total count and the running index,
// because backends render template parameters as leading placeholders of the
// same argument-list string. The recursion terminates since each fold narrows
// to a strictly earlier, non-overlapping bracket pair.
func resolveArgPosition(buf []byte, cursor, open, closing int) (index, count int) {
	count = 1
	if closing > len(buf) {
		closing = len(buf)
	}
	i := open + 1
	for i < closing {
		switch buf[i] {
		case '(', '[', '{':
			i = skipGroup(buf, i, closing)
		case '"', '\'':
			i = skipQuoted(buf, i, closing)
		case ',':
			count++
			if i < cursor {
				index++
			}
			i++
		default:
			i++
		}
	}

	if open > 0 && buf[open-1] == '>' {
		if lt := matchAngleBack(buf, open-1); lt >= 0 {
			_, tcount := resolveArgPosition(buf, cursor, lt, open-1)
			index += tcount
			count += tcount
		}
	}
	return index, count
}

// skipGroup advances past the balanced group opening at i, treating all three
// bracket kinds as interchangeable for depth purposes and skipping quoted
// strings. Returns limit when the group never closes.
func skipGroup(buf []byte, i, limit int) int {
	depth := 0
	for i < limit {
		switch buf[i] {
		case '(', '[', '{':
			depth++
			i++
		case ')', ']', '}':
			depth--
			i++
			if depth <= 0 {
				return i
			}
		case '"', '\'':
			i = skipQuoted(buf, i, limit)
		default:
			i++
		}
	}
	return limit
}

// skipQuoted advances past the string or character literal opening at i,
// honoring backslash escapes. Returns limit when the literal never closes.
func skipQuoted(buf []byte, i, limit int) int {
	quote := buf[i]
	i++
	for i < limit {
		switch buf[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return limit
}

// matchForward returns the offset of the ')' matching the '(' at open, or
// len(buf) when the group is still unclosed — half-typed calls resolve against
// the buffer end.
func matchForward(buf []byte, open int) int {
	end := skipGroup(buf, open, len(buf))
	if end > open && end <= len(buf) && buf[end-1] == ')' {
		return end - 1
	}
	return len(buf)
}

// matchAngleBack returns the offset of the '<' matching the '>' at gt, or -1
// when no plausible match exists. The backward scan bails at statement
// boundaries so a stray comparison operator is not mistaken for a template
// argument list.
func matchAngleBack(buf []byte, gt int) int {
	depth := 1
	for i := gt - 1; i >= 0; i-- {
		switch buf[i] {
		case '>':
			depth++
		case '<':
			depth--
			if depth == 0 {
				return i
			}
		case ';', '{', '}':
			return -1
		}
	}
	return -1
}
