package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/patric-chuzhbe/linkshrink/internal/models"
)

var (
	accent = lipgloss.Color("#4ade80")
	danger = lipgloss.Color("#f87171")
	muted  = lipgloss.Color("#6b7280")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headingStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(muted)
	accentStyle   = lipgloss.NewStyle().Foreground(accent)
	successStyle  = lipgloss.NewStyle().Foreground(accent)
	errorStyle    = lipgloss.NewStyle().Foreground(danger)
	shortURLStyle = lipgloss.NewStyle().Foreground(accent)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	fieldStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(muted)
	focusedStyle  = fieldStyle.BorderForeground(accent)
)

func renderMessage(message models.Message) string {
	switch message.Kind {
	case models.MessageSuccess:
		return successStyle.Render(message.Text)
	case models.MessageError:
		return errorStyle.Render(message.Text)
	}
	return message.Text
}
