package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/nvapi/internal/config"
)

// view is one command result: the document printed as YAML and its table
// rendering.
type view struct {
	data    any
	headers []string
	rows    [][]string
}

type printer struct {
	w      io.Writer
	r      *lipgloss.Renderer
	format string
}

func newPrinter(w io.Writer, cfg config.OutputConfig) *printer {
	r := lipgloss.NewRenderer(w)
	if colorEnabled(w, cfg.Color) {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &printer{w: w, r: r, format: cfg.Format}
}

func colorEnabled(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) print(v view) error {
	if p.format == config.FormatYAML {
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v.data); err != nil {
			return err
		}
		return enc.Close()
	}
	_, err := fmt.Fprintln(p.w, p.table(v.headers, v.rows))
	return err
}

func (p *printer) table(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return p.r.NewStyle().Faint(true).Render("(none)")
	}
	header := p.r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	first := p.r.NewStyle().Foreground(lipgloss.Color("#98FB98")).Padding(0, 1)
	cell := p.r.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.r.NewStyle().Foreground(lipgloss.Color("#666666"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return first
			default:
				return cell
			}
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func hex(v uintptr) string { return fmt.Sprintf("%#x", v) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
