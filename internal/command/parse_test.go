package command

import (
	"errors"
	"testing"
)

func TestParseFullGrammar(t *testing.T) {
	inv, err := Parse("/flux -r16:9 -srealistic -n2 -seed42 a dragon")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.Verb != "flux" {
		t.Fatalf("verb = %q, want flux", inv.Verb)
	}
	if inv.AspectRatio != "landscape" {
		t.Fatalf("aspect ratio = %q, want landscape", inv.AspectRatio)
	}
	if inv.Style != "realistic" {
		t.Fatalf("style = %q, want realistic", inv.Style)
	}
	if inv.NumImages != 2 {
		t.Fatalf("num images = %d, want 2", inv.NumImages)
	}
	if inv.Seed != 42 {
		t.Fatalf("seed = %d, want 42", inv.Seed)
	}
	if inv.Prompt != "a dragon" {
		t.Fatalf("prompt = %q, want %q", inv.Prompt, "a dragon")
	}
}

func TestParseRatioShorthand(t *testing.T) {
	cases := map[string]string{
		"l": "landscape",
		"p": "portrait",
		"s": "square",
		"w": "wide",
		"c": "cinema",
	}
	for short, want := range cases {
		inv, err := Parse("/generate -r" + short + " a castle")
		if err != nil {
			t.Fatalf("-r%s: parse: %v", short, err)
		}
		if inv.AspectRatio != want {
			t.Fatalf("-r%s: aspect ratio = %q, want %q", short, inv.AspectRatio, want)
		}
	}
}

func TestParseRatioPresetName(t *testing.T) {
	inv, err := Parse("/generate -rphoto a castle")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.AspectRatio != "photo" {
		t.Fatalf("aspect ratio = %q, want photo", inv.AspectRatio)
	}
}

func TestParseFlagsAreCaseInsensitive(t *testing.T) {
	inv, err := Parse("/generate -R16:9 -SANIME a castle")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.AspectRatio != "landscape" {
		t.Fatalf("aspect ratio = %q, want landscape", inv.AspectRatio)
	}
	if inv.Style != "anime" {
		t.Fatalf("style = %q, want anime", inv.Style)
	}
}

func TestParseFlagsStopAtPrompt(t *testing.T) {
	inv, err := Parse("/generate -n2 winter scene -rl with snow")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.NumImages != 2 {
		t.Fatalf("num images = %d, want 2", inv.NumImages)
	}
	if inv.AspectRatio != "" {
		t.Fatalf("aspect ratio = %q, want empty (flag inside prompt)", inv.AspectRatio)
	}
	if inv.Prompt != "winter scene -rl with snow" {
		t.Fatalf("prompt = %q", inv.Prompt)
	}
}

func TestParseIgnoresUnknownFlagsAndValues(t *testing.T) {
	inv, err := Parse("/generate -xfoo -n9 -sneonwave -r3:7 -seed-5 a fox")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.NumImages != 1 {
		t.Fatalf("num images = %d, want default 1 (out of range ignored)", inv.NumImages)
	}
	if inv.Style != "" || inv.AspectRatio != "" || inv.Seed != 0 {
		t.Fatalf("invalid values should be dropped: %+v", inv)
	}
	if inv.Prompt != "a fox" {
		t.Fatalf("prompt = %q, want %q", inv.Prompt, "a fox")
	}
}

func TestParseQualityHint(t *testing.T) {
	inv, err := Parse("/generate -qhigh a fox")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.Quality != "high" {
		t.Fatalf("quality = %q, want high", inv.Quality)
	}
}

func TestParseEmptyPrompt(t *testing.T) {
	for _, text := range []string{"/generate", "/generate -n2 -rl", ""} {
		if _, err := Parse(text); !errors.Is(err, ErrEmptyPrompt) {
			t.Fatalf("%q: err = %v, want ErrEmptyPrompt", text, err)
		}
	}
}

func TestParseStripsBotMention(t *testing.T) {
	inv, err := Parse("/turbo@MedusaXDBot a fox")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.Verb != "turbo" {
		t.Fatalf("verb = %q, want turbo", inv.Verb)
	}
}

func TestModelForVerb(t *testing.T) {
	cases := []struct {
		verb, quality, want string
	}{
		{"flux", "", "flux"},
		{"gptimage", "fast", "gptimage"},
		{"generate", "", "turbo"},
		{"generate", "high", "flux"},
		{"generate", "fast", "turbo"},
	}
	for _, tc := range cases {
		if got := ModelForVerb(tc.verb, tc.quality, "turbo"); got != tc.want {
			t.Fatalf("ModelForVerb(%q,%q) = %q, want %q", tc.verb, tc.quality, got, tc.want)
		}
	}
}
