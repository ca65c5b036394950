package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
)

// Output formats.
const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// output writes result in the format selected by --format.
func output(w io.Writer, result any) error {
	switch formatOutput {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case formatYAML, "":
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", formatOutput)
	}
}

// Terminal styles for human-readable headers.
var (
	primaryColor = lipgloss.Color("#00ff9f")
	dimColor     = lipgloss.Color("#6e7681")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	dimStyle   = lipgloss.NewStyle().Foreground(dimColor)
)

// header prints a styled title line followed by a dimmed subtitle. It goes
// to the command's error stream so stdout holds only the document.
func header(w io.Writer, title, subtitle string) {
	fmt.Fprintln(w, titleStyle.Render(title)+" "+dimStyle.Render(subtitle))
}
