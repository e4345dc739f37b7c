package core

import "strings"

// CategoryIcon picks an icon name from a category label by substring, so
// free-form labels like "Utility bills" still get a sensible icon.
func CategoryIcon(category string) string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "food"):
		return "utensils"
	case strings.Contains(c, "shopping"):
		return "shopping-bag"
	case strings.Contains(c, "transport"):
		return "car"
	case strings.Contains(c, "bill"), strings.Contains(c, "util"):
		return "zap"
	case strings.Contains(c, "entertain"):
		return "film"
	case strings.Contains(c, "health"):
		return "heart"
	case strings.Contains(c, "salary"):
		return "briefcase"
	case strings.Contains(c, "invest"):
		return "banknote"
	default:
		return "help-circle"
	}
}
