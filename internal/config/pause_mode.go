package config

import (
	"fmt"
	"strings"

	"github.com/cczw2010/chromedevtools/internal/wip"
)

// NormalizePauseMode maps user-facing pause-on-exception names to protocol
// states.
//
// Accepted aliases:
//   - "off", "never", "false" -> "none"
//   - "caught", "always", "true" -> "all"
func NormalizePauseMode(mode string) (wip.PauseOnExceptionsState, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "none", "off", "never", "false":
		return wip.PauseOnExceptionsNone, nil
	case "uncaught":
		return wip.PauseOnExceptionsUncaught, nil
	case "all", "caught", "always", "true":
		return wip.PauseOnExceptionsAll, nil
	default:
		return "", fmt.Errorf("unknown pause-on-exception mode %q", mode)
	}
}
