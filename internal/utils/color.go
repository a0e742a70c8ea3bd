package utils

import (
	"github.com/mrlokans/readworld/internal/entities"
)

// calloutByColor maps highlight colors to Obsidian callout types.
var calloutByColor = map[entities.HighlightColor]string{
	entities.HighlightYellow: "quote",
	entities.HighlightGreen:  "note",
	entities.HighlightBlue:   "info",
	entities.HighlightOrange: "warning",
	entities.HighlightPink:   "tip",
}

// ColorToCalloutType maps a highlight color to an Obsidian callout type.
// Default return is "quote" for unknown colors.
func ColorToCalloutType(c entities.HighlightColor) string {
	if callout, ok := calloutByColor[c]; ok {
		return callout
	}
	return "quote"
}
