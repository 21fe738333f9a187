// inlinedoc/helpers_format.go
// Contains the presentation formatter: pure functions turning candidates into
// the one-line display string, with Markdown emphasis on the active argument.
package inlinedoc

import (
	"regexp"
	"strings"
)

// ============================================================================
// Candidate Formatting
// ============================================================================

// FormatSymbol renders one candidate for a bare-symbol target, or "" when the
// candidate carries nothing worth showing. Candidates with a result type
// render as "name => resultType; brief"; result-type-less candidates (macros,
// typically) fall back to "name argList; brief".
func FormatSymbol(c Candidate, cfg Config) string {
	name := strings.TrimSpace(c.DisplayName)
	if name == "" {
		return ""
	}
	brief := strings.TrimSpace(c.BriefComment)

	var b strings.Builder
	switch {
	case c.ResultType != "":
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(arrowASCII)
		b.WriteString(" ")
		b.WriteString(c.ResultType)
	case c.ArgList != "" || brief != "":
		b.WriteString(name)
		if c.ArgList != "" {
			b.WriteString(" ")
			b.WriteString(c.ArgList)
		}
	default:
		return ""
	}
	if brief != "" {
		b.WriteString(briefSeparator)
		b.WriteString(brief)
	}
	return beautify(b.String(), cfg)
}

// FormatCall renders one candidate for a call target, marking the active
// argument with Markdown emphasis. Highlighting requires the placeholder-span
// count to equal 2*argCount+1 (separator slots interleaved with one span per
// argument position); candidates that fail the check are still shown, just
// without highlighting, so a mismatched backend answer can never index out of
// range.
func FormatCall(argIndex, argCount int, c Candidate, cfg Config) string {
	name := strings.TrimSpace(c.DisplayName)
	if name == "" {
		return ""
	}
	brief := strings.TrimSpace(c.BriefComment)

	var b strings.Builder
	b.WriteString(name)
	if c.ArgList != "" {
		b.WriteString(" ")
		b.WriteString(markActiveArg(c.ArgList, c.PlaceholderSpans, argIndex, argCount))
	}
	if c.ResultType != "" {
		b.WriteString(" ")
		b.WriteString(arrowASCII)
		b.WriteString(" ")
		b.WriteString(c.ResultType)
	}
	if brief != "" {
		b.WriteString(briefSeparator)
		b.WriteString(brief)
	}
	return beautify(b.String(), cfg)
}

// markActiveArg wraps the active argument's span of argList in "**" emphasis.
// Validation happens before any indexing.
func markActiveArg(argList string, spans []Span, argIndex, argCount int) string {
	if argIndex < 0 || argCount <= 0 || argIndex >= argCount {
		return argList
	}
	if len(spans) != 2*argCount+1 {
		return argList
	}
	sp := spans[2*argIndex+1]
	if sp.Start < 0 || sp.End < sp.Start || sp.End > len(argList) || sp.Start == sp.End {
		return argList
	}
	return argList[:sp.Start] + "**" + argList[sp.Start:sp.End] + "**" + argList[sp.End:]
}

// ============================================================================
// Identifier Beautification
// ============================================================================

// leadingUnderscoresRE matches a run of underscores starting an identifier
// token. Reserved identifiers like __builtin_expect read better without the
// prefix.
var leadingUnderscoresRE = regexp.MustCompile(`(^|[^A-Za-z0-9_])_+([A-Za-z0-9])`)

// beautify applies the two user-facing formatting toggles: stripping leading
// underscores from identifier-like tokens (default on) and substituting the
// Unicode glyphs for "::" and "=>" (default off). Empty input is returned
// untouched.
func beautify(s string, cfg Config) string {
	if s == "" {
		return s
	}
	if cfg.StripUnderscores {
		s = leadingUnderscoresRE.ReplaceAllString(s, "$1$2")
	}
	if cfg.UnicodeGlyphs {
		s = strings.ReplaceAll(s, scopeASCII, scopeUnicode)
		s = strings.ReplaceAll(s, arrowASCII, arrowUnicode)
	}
	return s
}
