package landscapist

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	mutedColor  = lipgloss.Color("245") // Gray
	errorColor  = lipgloss.Color("196") // Red
	accentColor = lipgloss.Color("99")  // Purple

	// Loading indicator style
	loadingStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Spinner style
	spinnerStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Failure message styles
	failureTitleStyle = lipgloss.NewStyle().
				Foreground(errorColor).
				Bold(true)

	failureDetailStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	// Empty component style
	emptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Accessibility description style
	altStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)
