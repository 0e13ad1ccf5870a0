package picker

import (
	"fmt"

	"github.com/jakoblorz/go-combine/internal/tui"
)

// RenderSelection renders the chosen project and configuration.
func RenderSelection(result *Result) string {
	return tui.SuccessStyle.Render("✓ Selected") +
		fmt.Sprintf(" %s (%s)", result.Project, result.Configuration)
}
