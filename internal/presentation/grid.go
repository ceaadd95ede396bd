package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
)

const Separator = "**********"

const (
	colorX = "#818cf8"
	colorO = "#fb7185"
)

// Printer writes game output to a terminal, colouring marks when the terminal
// supports it.
type Printer struct {
	out *termenv.Output
}

func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{
		out: termenv.NewOutput(w, opts...),
	}
}

// Grid prints one line per row followed by the separator.
func (that *Printer) Grid(grid entity.Grid) error {
	var sb strings.Builder

	for _, row := range grid {
		for _, mark := range row {
			sb.WriteString(that.cell(mark))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(Separator)
	sb.WriteString("\n")

	if _, err := io.WriteString(that.out, sb.String()); err != nil {
		return fmt.Errorf("failed to print grid: %w", err)
	}

	return nil
}

func (that *Printer) Println(format string, args ...any) error {
	if _, err := fmt.Fprintf(that.out, format+"\n", args...); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	return nil
}

func (that *Printer) cell(mark entity.Mark) string {
	switch mark {
	case entity.MarkX:
		return that.out.String("x").Foreground(that.out.Color(colorX)).String() + "|"
	case entity.MarkO:
		return that.out.String("o").Foreground(that.out.Color(colorO)).String() + "|"
	default:
		return "_|"
	}
}
