package advisor

import (
	"context"
	"fmt"
	"strings"

	"wealthflow/internal/core"
)

// FallbackCategory is returned whenever no suggestion can be obtained.
const FallbackCategory = string(core.CategoryOther)

func categoryPrompt(description string) string {
	labels := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		labels[i] = "'" + c.String() + "'"
	}
	return fmt.Sprintf(`Categorize this transaction description into one of these exact categories: %s.

Description: %q

Return only the category name as a plain string.`, strings.Join(labels, ", "), description)
}

// SuggestCategory asks the model for a category label. The trimmed answer is
// returned as is, even when it is not one of the known labels.
func (c *Client) SuggestCategory(ctx context.Context, description string) string {
	if !c.Enabled() {
		return FallbackCategory
	}
	text, err := c.generate(ctx, categoryPrompt(description), nil)
	if err != nil {
		c.logger.ErrorContext(ctx, "Gemini categorization failed", "error", err)
		return FallbackCategory
	}
	if text = strings.TrimSpace(text); text == "" {
		return FallbackCategory
	}
	return text
}
