package tui

import (
	"github.com/charmbracelet/lipgloss"

	"todoboard/internal/service"
)

const columnWidth = 36

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(columnWidth)
	activeColumnStyle = columnStyle.BorderForeground(lipgloss.Color("63"))
	headerStyle       = lipgloss.NewStyle().Bold(true)
	cursorStyle       = lipgloss.NewStyle().Reverse(true)
	draggedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	priorityStyles = map[service.Priority]lipgloss.Style{
		service.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		service.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		service.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

func priorityMark(p service.Priority) string {
	return priorityStyles[p.OrDefault()].Render("●")
}
