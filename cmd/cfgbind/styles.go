// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple: titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray: subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green: success states.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red: failures.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber: diagnostics and warnings.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue: type names and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for diagnostics.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// TypeStyle is for type names, capabilities and paths.
	TypeStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
