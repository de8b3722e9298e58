package model

import "testing"

func TestProviderValid(t *testing.T) {
	t.Parallel()

	for _, p := range []Provider{ProviderOpenAI, ProviderMistral, ProviderAnthropic} {
		if !p.Valid() {
			t.Fatalf("expected %s to be valid", p)
		}
	}
	for _, p := range []Provider{"", "cohere", "OpenAI"} {
		if p.Valid() {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func TestClampTemperature(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.7, 0.7},
		{2, 2},
		{3.5, 2},
	}
	for _, tc := range cases {
		cfg := AIProviderConfig{Temperature: tc.in}
		cfg.ClampTemperature()
		if cfg.Temperature != tc.want {
			t.Fatalf("clamp(%v) = %v, want %v", tc.in, cfg.Temperature, tc.want)
		}
	}
}
