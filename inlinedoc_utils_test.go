// inlinedoc/inlinedoc_utils_test.go
package inlinedoc

import (
	"errors"
	"log/slog"
	"testing"
)

func TestOffsetForLineCol(t *testing.T) {
	content := []byte("abc\ndefgh\n\nxy")

	tests := []struct {
		name      string
		line, col int
		wantErr   bool
		want      int
	}{
		{"Start of file", 1, 1, false, 0},
		{"Last column of line 1", 1, 3, false, 2},
		{"Column at newline", 1, 4, false, 3},
		{"Column past line end clamps", 1, 50, false, 3},
		{"Middle of line 2", 2, 3, false, 6},
		{"Empty line", 3, 1, false, 10},
		{"Last line", 4, 2, false, 12},
		{"Past end of last line clamps", 4, 50, false, 13},
		{"Line past buffer", 5, 1, true, -1},
		{"Zero line", 0, 1, true, -1},
		{"Zero column", 1, 0, true, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OffsetForLineCol(content, tt.line, tt.col)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OffsetForLineCol(%d, %d) error = %v, wantErr %v", tt.line, tt.col, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("OffsetForLineCol(%d, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
			}
		})
	}

	if _, err := OffsetForLineCol(content, 0, 1); !errors.Is(err, ErrInvalidPositionInput) {
		t.Errorf("zero line error = %v, want ErrInvalidPositionInput", err)
	}
	if _, err := OffsetForLineCol(content, 9, 1); !errors.Is(err, ErrPositionOutOfRange) {
		t.Errorf("line past buffer error = %v, want ErrPositionOutOfRange", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" Warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
