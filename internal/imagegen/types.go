package imagegen

import "time"

// Defaults applied when a request leaves a field unset or carries an
// unrecognized table value.
const (
	DefaultModel       = "turbo"
	DefaultAspectRatio = "square"
	DefaultStyle       = "realistic"

	MinPromptLen = 3
	MaxPromptLen = 2000
	MaxImages    = 4
)

// models supported by the upstream API.
var models = map[string]bool{
	"flux":     true,
	"turbo":    true,
	"gptimage": true,
}

// ratioTokens maps an aspect-ratio preset to the upstream ratio string.
var ratioTokens = map[string]string{
	"landscape": "16:9",
	"portrait":  "9:16",
	"square":    "1:1",
	"wide":      "21:9",
	"cinema":    "2.35:1",
	"photo":     "4:3",
}

// ratioSizes maps an aspect-ratio preset to the pixel size sent upstream.
var ratioSizes = map[string]string{
	"landscape": "1344x768",
	"portrait":  "768x1344",
	"square":    "1024x1024",
	"wide":      "1344x576",
	"cinema":    "1344x572",
	"photo":     "1024x768",
}

// styles accepted by the style table. Anything else falls back to
// DefaultStyle at payload time.
var styles = map[string]bool{
	"realistic":    true,
	"anime":        true,
	"photographic": true,
	"digital-art":  true,
	"comic":        true,
	"fantasy-art":  true,
	"line-art":     true,
	"cinematic":    true,
	"3d-model":     true,
	"pixel-art":    true,
}

// KnownModel reports whether the model identifier is supported.
func KnownModel(model string) bool { return models[model] }

// KnownAspectRatio reports whether the preset exists in the ratio tables.
func KnownAspectRatio(ratio string) bool { _, ok := ratioTokens[ratio]; return ok }

// KnownStyle reports whether the style keyword exists in the style table.
func KnownStyle(style string) bool { return styles[style] }

// AspectRatioForToken resolves a bare upstream ratio string such as "16:9"
// back to its preset name.
func AspectRatioForToken(token string) (string, bool) {
	for name, t := range ratioTokens {
		if t == token {
			return name, true
		}
	}
	return "", false
}

// Models returns the supported model identifiers.
func Models() []string {
	return []string{"flux", "turbo", "gptimage"}
}

// AspectRatios returns the preset names in the ratio tables.
func AspectRatios() []string {
	return []string{"landscape", "portrait", "square", "wide", "cinema", "photo"}
}

// Request captures one generation call. Zero values mean "use the default":
// empty AspectRatio or Style falls back silently, Seed 0 draws a random
// seed, Timeout 0 uses the configured per-call timeout.
type Request struct {
	Prompt      string
	Model       string
	NumImages   int
	AspectRatio string
	Style       string
	Seed        int64
	Timeout     int
}

// Image references one generated image by URL.
type Image struct {
	URL string
}

// Result is a validated upstream response. Images is never empty.
type Result struct {
	CreatedAt time.Time
	Images    []Image
}
