package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// palette colors outcome words. A disabled palette returns text unchanged.
type palette struct {
	enabled bool
}

func newPalette(w io.Writer) palette {
	return palette{enabled: shouldColorize(w)}
}

func (p palette) paint(kind statusKind, text string) string {
	if !p.enabled {
		return text
	}
	c := color.New(statusKindColor(kind))
	c.EnableColor()
	return c.Sprint(text)
}

func renderStatusLine(p palette, label string, kind statusKind, message string) string {
	statusText := fmt.Sprintf("[%s]", p.paint(kind, statusKindLabel(kind)))
	if message != "" {
		statusText += " " + message
	}
	return fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) color.Attribute {
	switch kind {
	case statusOK:
		return color.FgGreen
	case statusWarn:
		return color.FgYellow
	case statusError:
		return color.FgRed
	default:
		return color.FgBlue
	}
}

func renderSectionHeader(p palette, title string) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{p.paint(statusInfo, line), p.paint(statusInfo, rule)}
}

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
