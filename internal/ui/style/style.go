// Package style holds the colors and glyphs shared by the logger and the renderers.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#0EA5E9")
	Muted  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Cached  = "~"
	Arrow   = "→"
)

// Bold renders s in bold with the accent color.
func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(Accent).Render(s)
}
