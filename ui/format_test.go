package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name string
		in   StatusFormat
		want string
	}{
		{"success", StatusFormat{Name: "Loaded"}, "[green]✓ [white::-]Loaded"},
		{"success with detail", StatusFormat{Name: "Loaded", Detail: "page 2 of 4"}, "[green]✓ [white::-]Loaded [blue]page 2 of 4[white::-]"},
		{"loading", StatusFormat{Name: "Loading...", IsLoading: true}, "[yellow]… [white::-]Loading..."},
		{"error wins over loading", StatusFormat{Name: "Failed", IsError: true, IsLoading: true}, "[red]✗ [white::-]Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatStatus(tt.in))
		})
	}
}

func TestFormatStatus_EscapesTags(t *testing.T) {
	got := FormatStatus(StatusFormat{Name: "Failed", Detail: "[red]boom", IsError: true})
	assert.Contains(t, got, "[red[]boom")
}
