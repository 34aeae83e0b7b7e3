package tui

import "github.com/planora/planora/internal/models"

// Color constants for the planora terminal theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles and values
	ColorSecondaryText = "#B1B8C7" // Labels, purple-tinted grey
	ColorDisabledText  = "#6D7383" // Muted text and empty values
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Headers, active borders
	ColorAccentBright = "#A78BFA" // Highlights, selected row

	// State Colors
	ColorError   = "#EF4444" // High priority, overdue
	ColorSuccess = "#22C55E" // Completed
	ColorWarning = "#F59E0B" // Medium priority, in progress
)

// statusColor returns the color a task status is drawn in
func statusColor(status string) string {
	switch status {
	case models.StatusCompleted:
		return ColorSuccess
	case models.StatusInProgress:
		return ColorWarning
	}
	return ColorSecondaryText
}

// priorityColor returns the color a task priority is drawn in
func priorityColor(priority string) string {
	switch priority {
	case models.PriorityHigh:
		return ColorError
	case models.PriorityMedium:
		return ColorWarning
	}
	return ColorSecondaryText
}
