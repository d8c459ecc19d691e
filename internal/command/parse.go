// Package command turns the raw text of a generation command into a
// structured invocation. Parsing is a pure function of the input string:
// no network, no storage.
package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/medusaxd/medusa-bot/internal/imagegen"
)

// ErrEmptyPrompt indicates the command carried no prompt text. Callers
// reply with a usage message instead of attempting generation.
var ErrEmptyPrompt = errors.New("command: empty prompt")

// ratioShorthand maps one-letter ratio flags to preset names.
var ratioShorthand = map[string]string{
	"l": "landscape",
	"p": "portrait",
	"s": "square",
	"w": "wide",
	"c": "cinema",
}

// Invocation is the parsed form of a generation command. Zero values mean
// "not specified"; the orchestrator fills in defaults.
type Invocation struct {
	Verb        string
	Prompt      string
	AspectRatio string
	Style       string
	NumImages   int
	Seed        int64
	// Quality is the advisory high/fast hint. It only influences model
	// choice when the verb did not already fix one.
	Quality string
}

// Parse tokenizes the command text. The first token is the verb, flags may
// only appear contiguously before the prompt, and everything from the first
// non-flag token on is prompt text verbatim (including flag-looking tokens).
// Unknown flags and out-of-range values are ignored without error.
func Parse(text string) (*Invocation, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, ErrEmptyPrompt
	}

	inv := &Invocation{Verb: verbOf(fields[0]), NumImages: 1}

	i := 1
	for ; i < len(fields); i++ {
		if !strings.HasPrefix(fields[i], "-") {
			break
		}
		applyFlag(inv, strings.ToLower(strings.TrimPrefix(fields[i], "-")))
	}

	inv.Prompt = strings.Join(fields[i:], " ")
	if inv.Prompt == "" {
		return nil, ErrEmptyPrompt
	}
	return inv, nil
}

// ModelForVerb picks the model: the verb wins, then the advisory quality
// hint chooses between the near-equivalent defaults, then the configured
// default applies.
func ModelForVerb(verb, quality, defaultModel string) string {
	if imagegen.KnownModel(verb) {
		return verb
	}
	switch quality {
	case "high":
		return "flux"
	case "fast":
		return "turbo"
	}
	return defaultModel
}

func verbOf(token string) string {
	verb := strings.TrimPrefix(token, "/")
	// Group chats address commands as /verb@BotName.
	if at := strings.Index(verb, "@"); at >= 0 {
		verb = verb[:at]
	}
	return strings.ToLower(verb)
}

// applyFlag interprets one flag token (marker already stripped, lowered).
// Longer flag names are matched before their one-letter prefixes so that
// -seed42 is not read as a style flag.
func applyFlag(inv *Invocation, flag string) {
	switch {
	case strings.HasPrefix(flag, "seed"):
		if n, err := strconv.ParseUint(flag[len("seed"):], 10, 32); err == nil && n > 0 {
			inv.Seed = int64(n)
		}
	case strings.HasPrefix(flag, "style"):
		setStyle(inv, flag[len("style"):])
	case strings.HasPrefix(flag, "ratio"):
		setRatio(inv, flag[len("ratio"):])
	case strings.HasPrefix(flag, "r"):
		setRatio(inv, flag[1:])
	case strings.HasPrefix(flag, "s"):
		setStyle(inv, flag[1:])
	case strings.HasPrefix(flag, "n"):
		if n, err := strconv.Atoi(flag[1:]); err == nil && n >= 1 && n <= imagegen.MaxImages {
			inv.NumImages = n
		}
	case strings.HasPrefix(flag, "q"):
		if v := flag[1:]; v == "high" || v == "fast" {
			inv.Quality = v
		}
	}
}

func setRatio(inv *Invocation, value string) {
	switch {
	case strings.Contains(value, ":"):
		if name, ok := imagegen.AspectRatioForToken(value); ok {
			inv.AspectRatio = name
		}
	case ratioShorthand[value] != "":
		inv.AspectRatio = ratioShorthand[value]
	case imagegen.KnownAspectRatio(value):
		inv.AspectRatio = value
	}
}

func setStyle(inv *Invocation, value string) {
	if imagegen.KnownStyle(value) {
		inv.Style = value
	}
}
