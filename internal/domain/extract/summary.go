package extract

import (
	"strings"

	"github.com/GriffinCanCode/uicapture/internal/shared/types"
)

// Summarize derives a ScreenSummary from a TextElement sequence
func Summarize(elements []types.TextElement) types.ScreenSummary {
	summary := types.ScreenSummary{
		ElementCounts: make(map[string]int32),
	}
	texts := make([]string, 0, len(elements))

	for _, el := range elements {
		summary.ElementCounts[el.Type]++
		texts = append(texts, el.Text)

		if el.IsClickable {
			summary.ClickableCount++
		}
		if !el.IsEditable {
			continue
		}
		summary.EditableCount++

		text := strings.ToLower(el.Text)
		class := strings.ToLower(el.ClassName)
		if containsAny(text, class, "email", "e-mail") {
			summary.HasEmailField = true
		}
		if containsAny(text, class, "password") {
			summary.HasPasswordField = true
		}
		if containsAny(text, class, "search") {
			summary.HasSearchField = true
		}
	}

	summary.CombinedText = strings.Join(texts, " ")
	return summary
}

func containsAny(text, class string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) || strings.Contains(class, n) {
			return true
		}
	}
	return false
}
