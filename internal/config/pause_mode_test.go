package config

import (
	"testing"

	"github.com/cczw2010/chromedevtools/internal/wip"
)

func TestNormalizePauseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want wip.PauseOnExceptionsState
	}{
		{name: "alias off", in: "off", want: wip.PauseOnExceptionsNone},
		{name: "alias caught", in: "caught", want: wip.PauseOnExceptionsAll},
		{name: "uncaught unchanged", in: "uncaught", want: wip.PauseOnExceptionsUncaught},
		{name: "case and space", in: " ALL ", want: wip.PauseOnExceptionsAll},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizePauseMode(tc.in)
			if err != nil {
				t.Fatalf("NormalizePauseMode(%q) error: %v", tc.in, err)
			}

			if got != tc.want {
				t.Fatalf("NormalizePauseMode(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	if _, err := NormalizePauseMode("sometimes"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
