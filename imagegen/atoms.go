// atoms.go contains pure helpers with no dependencies: size and aspect-ratio
// mapping for services that accept only fixed shapes.
package imagegen

import (
	"fmt"
	"math"
	"strings"
)

type shape struct {
	label string
	ratio float64
}

// Ratios accepted by Imagen models.
var imagenAspectRatios = []shape{
	{"1:1", 1},
	{"3:4", 3.0 / 4.0},
	{"4:3", 4.0 / 3.0},
	{"9:16", 9.0 / 16.0},
	{"16:9", 16.0 / 9.0},
}

// Sizes accepted by each OpenAI image model family.
var (
	dallE2Sizes   = []shape{{"1024x1024", 1}}
	dallE3Sizes   = []shape{{"1024x1024", 1}, {"1792x1024", 1792.0 / 1024.0}, {"1024x1792", 1024.0 / 1792.0}}
	gptImageSizes = []shape{{"1024x1024", 1}, {"1536x1024", 1536.0 / 1024.0}, {"1024x1536", 1024.0 / 1536.0}}
)

// AspectRatio returns the supported Imagen ratio closest to width:height.
//
// Example:
//
//	AspectRatio(1024, 1024)  // "1:1"
//	AspectRatio(1344, 768)   // "16:9"
//	AspectRatio(768, 1344)   // "9:16"
func AspectRatio(width, height int) string {
	return closest(ratioOf(width, height), imagenAspectRatios)
}

// openAISize returns the Images API size string closest to width x height for
// model. DALL-E 2 is square only but keeps 256 and 512 squares as requested.
func openAISize(model string, width, height int) string {
	switch {
	case strings.HasPrefix(model, "gpt-image"):
		return closest(ratioOf(width, height), gptImageSizes)
	case model == "dall-e-2":
		if width == height && (width == 256 || width == 512) {
			return fmt.Sprintf("%dx%d", width, height)
		}
		return closest(ratioOf(width, height), dallE2Sizes)
	default:
		return closest(ratioOf(width, height), dallE3Sizes)
	}
}

func ratioOf(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float64(width) / float64(height)
}

// closest compares on a log scale so 2:1 and 1:2 are equally far from 1:1.
func closest(ratio float64, options []shape) string {
	best := options[0].label
	bestDist := math.Inf(1)
	for _, o := range options {
		if d := math.Abs(math.Log(ratio) - math.Log(o.ratio)); d < bestDist {
			best, bestDist = o.label, d
		}
	}
	return best
}
