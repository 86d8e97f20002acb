// Package tui provides an interactive terminal client for StackIt.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the client readable on light terminals.
var (
	accent   = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#F97316"}
	ink      = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	faded    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	panel    = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#27272A"}
	rule     = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#3F3F46"}
	tagColor = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	okColor  = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	badColor = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	unread   = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"}
)

var (
	tabBarStyle      = lipgloss.NewStyle().Background(panel).PaddingLeft(1)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(faded).Background(panel).Padding(0, 2)
	tabActiveStyle   = tabInactiveStyle.Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Bold(true)

	// question titles and screen headings
	titleStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1)
	subtitleStyle = lipgloss.NewStyle().Foreground(faded).Italic(true)
	bodyStyle     = lipgloss.NewStyle().Foreground(ink)
	tagStyle      = lipgloss.NewStyle().Foreground(tagColor)
	sectionStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(rule).PaddingTop(1)
	selectedStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(okColor)
	errorStyle   = lipgloss.NewStyle().Foreground(badColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(unread)

	statusBarStyle = lipgloss.NewStyle().Foreground(faded).Background(panel).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(faded)
)
