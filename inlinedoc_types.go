// inlinedoc/inlinedoc_types.go
// Contains core type definitions used throughout the inlinedoc package.
package inlinedoc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// =============================================================================
// Configuration Types & Constants
// =============================================================================

const (
	defaultLogLevel           = "info"          // Default log level.
	defaultMemoryCacheTTLSecs = 300             // Default TTL for memoized display strings (5 minutes).
	defaultConfigFileName     = "config.json"   // Default config file name.
	configDirName             = "inlinedoc"     // Subdirectory name for config/data.
	defaultMaxCandidates      = 8               // Cap on candidates rendered into one display line.

	// Display delimiters. Candidates are joined with candidateSeparator while a
	// brief comment is attached with briefSeparator, so the two stay visually
	// distinct in the final line.
	candidateSeparator = " | "
	briefSeparator     = "; "

	// Glyphs produced by the formatter. The ASCII forms are always built first;
	// beautify substitutes the Unicode forms when the toggle is on.
	arrowASCII   = "=>"
	arrowUnicode = "⇒" // ⇒
	scopeASCII   = "::"
	scopeUnicode = "∷" // ∷
)

// Config holds the active configuration for the inline documentation service.
type Config struct {
	StripUnderscores      bool          `json:"strip_underscores"`        // Strip leading underscores from identifiers in output.
	UnicodeGlyphs         bool          `json:"unicode_glyphs"`           // Substitute "::"→"∷" and "=>"→"⇒" in output.
	LogLevel              string        `json:"log_level"`                // Log level (debug, info, warn, error).
	MemoryCacheTTLSeconds int           `json:"memory_cache_ttl_seconds"` // TTL for memoized display strings.
	MemoryCacheTTL        time.Duration `json:"-"`                        // Derived duration, not from file.
	MaxCandidates         int           `json:"max_candidates"`           // Max candidates rendered per line.
	BackendAddr           string        `json:"backend_addr"`             // host:port of an external symbol backend; empty uses the built-in scanner.
	IgnoreTokens          []string      `json:"ignore_tokens"`            // Extra tokens the classifier should never document.
}

// FileConfig represents the structure of the JSON config file for unmarshalling.
// Uses pointers to distinguish between unset fields and zero-value fields.
type FileConfig struct {
	StripUnderscores      *bool     `json:"strip_underscores"`
	UnicodeGlyphs         *bool     `json:"unicode_glyphs"`
	LogLevel              *string   `json:"log_level"`
	MemoryCacheTTLSeconds *int      `json:"memory_cache_ttl_seconds"`
	MaxCandidates         *int      `json:"max_candidates"`
	BackendAddr           *string   `json:"backend_addr"`
	IgnoreTokens          *[]string `json:"ignore_tokens"`
}

// getDefaultConfig returns a new instance of the default configuration.
func getDefaultConfig() Config {
	ttl := time.Duration(defaultMemoryCacheTTLSecs) * time.Second
	return Config{
		StripUnderscores:      true,
		UnicodeGlyphs:         false,
		LogLevel:              defaultLogLevel,
		MemoryCacheTTLSeconds: defaultMemoryCacheTTLSecs,
		MemoryCacheTTL:        ttl,
		MaxCandidates:         defaultMaxCandidates,
	}
}

// DefaultConfig returns the default configuration. Exported for hosts that
// construct an Engine without going through LoadConfig.
func DefaultConfig() Config { return getDefaultConfig() }

// Validate checks if configuration values are valid, applying defaults for some fields.
func (c *Config) Validate(logger *slog.Logger) error {
	var validationErrors []error
	if logger == nil {
		logger = slog.Default()
	}
	tempDefault := getDefaultConfig()

	if c.MemoryCacheTTLSeconds <= 0 {
		logger.Warn("Config validation: memory_cache_ttl_seconds is not positive, applying default.", "configured_value", c.MemoryCacheTTLSeconds, "default", tempDefault.MemoryCacheTTLSeconds)
		c.MemoryCacheTTLSeconds = tempDefault.MemoryCacheTTLSeconds
	}
	// Derive the time.Duration from the seconds value after validation/defaulting.
	c.MemoryCacheTTL = time.Duration(c.MemoryCacheTTLSeconds) * time.Second

	if c.MaxCandidates <= 0 {
		logger.Warn("Config validation: max_candidates is not positive, applying default.", "configured_value", c.MaxCandidates, "default", tempDefault.MaxCandidates)
		c.MaxCandidates = tempDefault.MaxCandidates
	}

	if c.BackendAddr != "" {
		if _, _, err := net.SplitHostPort(c.BackendAddr); err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("invalid backend_addr '%s': %w", c.BackendAddr, err))
		}
	}

	if c.LogLevel == "" {
		logger.Warn("Config validation: log_level is empty, applying default.", "default", defaultLogLevel)
		c.LogLevel = defaultLogLevel
	} else {
		_, err := ParseLogLevel(c.LogLevel)
		if err != nil {
			logger.Warn("Config validation: Invalid log_level found, applying default.", "configured_value", c.LogLevel, "default", defaultLogLevel, "error", err)
			validationErrors = append(validationErrors, fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err))
			c.LogLevel = defaultLogLevel
		}
	}

	for _, tok := range c.IgnoreTokens {
		if strings.TrimSpace(tok) == "" {
			validationErrors = append(validationErrors, errors.New("ignore_tokens must not contain blank entries"))
			break
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(validationErrors...))
	}
	return nil
}

// =============================================================================
// Target & Candidate Types
// =============================================================================

// Span is a half-open [Start,End) byte range into some string.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Region is a half-open [Start,End) byte range into the document text.
type Region struct {
	Start int
	End   int
}

// Valid reports whether the region has sane bounds.
func (r Region) Valid() bool { return r.Start >= 0 && r.End >= r.Start }

// TargetKind discriminates what the cursor rests on.
type TargetKind int

const (
	// TargetSymbol is a bare identifier under the cursor.
	TargetSymbol TargetKind = iota + 1
	// TargetCall is the head of an enclosing call with an argument position.
	TargetCall
)

func (k TargetKind) String() string {
	switch k {
	case TargetSymbol:
		return "symbol"
	case TargetCall:
		return "call"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// Target is what the display pipeline is being asked to describe: either a
// bare symbol or a call head plus the cursor's argument position. Targets are
// produced fresh on every tick and never mutated.
type Target struct {
	Kind TargetKind

	// Text is the symbol or call-head identifier, with Start/End its byte
	// bounds in the document at classification time.
	Text  string
	Start int
	End   int

	// ArgIndex and ArgCount are populated for TargetCall only. The unified
	// numbering counts a preceding template argument list as leading argument
	// positions, so 0 <= ArgIndex < ArgCount always holds.
	ArgIndex int
	ArgCount int
}

// Region returns the byte range the target's identifier occupies.
func (t Target) Region() Region { return Region{Start: t.Start, End: t.End} }

// Candidate is one backend-supplied declaration potentially matching a target.
// Candidates are immutable once received; the cache and formatter only borrow
// them.
type Candidate struct {
	DisplayName  string `json:"display_name"`
	ResultType   string `json:"result_type,omitempty"` // Empty means "no result type" (macros etc).
	ArgList      string `json:"arg_list,omitempty"`    // Rendered argument-list template, parens included.
	BriefComment string `json:"brief_comment,omitempty"`

	// PlaceholderSpans alternates separator and parameter segments of ArgList:
	// even indices cover punctuation, odd indices cover one formal parameter
	// each, giving 2n+1 spans for n parameters. The formatter only trusts the
	// encoding when the length matches the argument count it was given.
	PlaceholderSpans []Span `json:"placeholder_spans,omitempty"`
}

// paramCount returns the number of parameter spans encoded in PlaceholderSpans,
// or -1 when the alternating encoding is broken.
func (c Candidate) paramCount() int {
	if len(c.PlaceholderSpans) == 0 || len(c.PlaceholderSpans)%2 == 0 {
		return -1
	}
	return len(c.PlaceholderSpans) / 2
}
