package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

const (
	SuccessSymbol = "✓"
	ErrorSymbol   = "✗"
	LoadingSymbol = "…"
)

type StatusFormat struct {
	Name      string
	Detail    string
	IsError   bool
	IsLoading bool
}

// FormatStatus renders a one-line status with tview color tags. Name and
// Detail are escaped so upstream error text cannot inject tags.
func FormatStatus(f StatusFormat) string {
	symbol, color := SuccessSymbol, "green"
	switch {
	case f.IsError:
		symbol, color = ErrorSymbol, "red"
	case f.IsLoading:
		symbol, color = LoadingSymbol, "yellow"
	}

	name := tview.Escape(f.Name)
	if f.Detail != "" {
		return fmt.Sprintf("[%s]%s [white::-]%s [blue]%s[white::-]", color, symbol, name, tview.Escape(f.Detail))
	}
	return fmt.Sprintf("[%s]%s [white::-]%s", color, symbol, name)
}
