package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Output styles. Kept muted: the CLI is often piped.
var (
	answerStyle = lipgloss.NewStyle().
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")) // blue

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // grey

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")) // yellow
)

// printWarning writes a styled warning line.
func printWarning(cmd *cobra.Command, msg string) {
	cmd.PrintErrln(warnStyle.Render("Warning: " + msg))
}
