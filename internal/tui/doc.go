// Package tui renders the terminal views of the sync agent with lipgloss.
package tui
