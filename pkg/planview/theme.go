package planview

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	KeyStyle    lipgloss.Style
	StringStyle lipgloss.Style
	NumberStyle lipgloss.Style
	BoolStyle   lipgloss.Style
	NullStyle   lipgloss.Style

	AddedStyle    lipgloss.Style
	RemovedStyle  lipgloss.Style
	ModifiedStyle lipgloss.Style
}

// DarkTheme is tuned for dark terminals.
var DarkTheme = Theme{
	KeyStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	StringStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),
	NumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),
	BoolStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
	NullStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true),

	AddedStyle:    lipgloss.NewStyle().Background(lipgloss.Color("#144212")).Foreground(lipgloss.Color("#A9DC76")),
	RemovedStyle:  lipgloss.NewStyle().Background(lipgloss.Color("#4C1F1F")).Foreground(lipgloss.Color("#E06C75")),
	ModifiedStyle: lipgloss.NewStyle().Background(lipgloss.Color("#3A3000")).Foreground(lipgloss.Color("#E5C07B")),
}

// PlainTheme renders without any styling; used when stdout is not a
// terminal and in tests.
var PlainTheme = Theme{}

func (t Theme) highlight(kind string, content string) string {
	switch kind {
	case "key":
		return t.KeyStyle.Render(content)
	case "string":
		return t.StringStyle.Render(content)
	case "number":
		return t.NumberStyle.Render(content)
	case "bool":
		return t.BoolStyle.Render(content)
	case "null":
		return t.NullStyle.Render(content)
	default:
		return content
	}
}

func (t Theme) changeStyle(change ChangeType, content string) string {
	switch change {
	case Added:
		return t.AddedStyle.Render(content)
	case Removed:
		return t.RemovedStyle.Render(content)
	case Modified:
		return t.ModifiedStyle.Render(content)
	default:
		return content
	}
}
