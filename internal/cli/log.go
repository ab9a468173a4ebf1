package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a text logger writing to w. The level comes from the
// configured name and is lowered one step per verbose flag.
func NewLogger(w io.Writer, level string, verbose int) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}
	lvl -= slog.Level(4 * verbose)

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
