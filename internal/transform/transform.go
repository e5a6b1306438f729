// Package transform holds the per-category optimizers. Each one reads a whole
// file from src and writes the optimized file to dst; neither touches the
// filesystem, so the caller decides where the output lands and when it
// replaces the original.
package transform

import (
	"squash/internal/processor"
	"squash/pkg/assetkind"
)

// ForCategories returns an optimizer for every category in enabled.
func ForCategories(enabled assetkind.Set, profile Profile) map[assetkind.Category]processor.Transformer {
	out := make(map[assetkind.Category]processor.Transformer, len(assetkind.All))
	for _, c := range assetkind.All {
		if !enabled.Has(c) {
			continue
		}
		switch c {
		case assetkind.CategoryRaster:
			out[c] = PNG{Profile: profile}
		case assetkind.CategoryAudio:
			out[c] = Ogg{}
		}
	}
	return out
}
