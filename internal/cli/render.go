package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true).Width(13)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderTable writes rows under headers. Terminals get a rounded border,
// pipes and files get borderless aligned columns.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	tty := isTerminal(w)
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow && tty {
				return headerStyle
			}
			return cellStyle
		})
	if tty {
		t = t.Border(lipgloss.RoundedBorder())
	} else {
		t = t.Border(lipgloss.HiddenBorder()).
			BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderHeader(false).
			BorderColumn(false)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// renderField writes a "Label: value" line.
func renderField(w io.Writer, label, value string) error {
	if value == "" {
		value = "-"
	}
	_, err := fmt.Fprintln(w, labelStyle.Render(label+":")+value)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
