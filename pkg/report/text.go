package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/macropower/declutter/pkg/audit"
)

// Renderer holds the styles of the text format.
type Renderer struct {
	Header  lipgloss.Style
	Marker  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Subtle  lipgloss.Style
}

// NewRenderer creates a [Renderer] for w. Colors are used only if w is a
// terminal that supports them.
func NewRenderer(w io.Writer) *Renderer {
	return newRenderer(lipgloss.NewRenderer(w))
}

// NewPlainRenderer creates a [Renderer] that never emits escape sequences.
func NewPlainRenderer(w io.Writer) *Renderer {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(termenv.Ascii)

	return newRenderer(lr)
}

func newRenderer(lr *lipgloss.Renderer) *Renderer {
	return &Renderer{
		Header:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		Marker:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		Error:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		Success: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		Subtle:  lr.NewStyle().Faint(true),
	}
}

// TextPrinter writes the human-readable report.
type TextPrinter struct {
	w         io.Writer
	r         *Renderer
	quiet     bool
	showSizes bool
}

// Start writes the header.
func (p *TextPrinter) Start() error {
	if p.quiet {
		return nil
	}

	return p.println(p.r.Header.Render("Checking for clutter"))
}

// Result writes one line per violation, followed by the error of a failed
// entry.
func (p *TextPrinter) Result(r *audit.Result) error {
	for _, v := range r.Violations {
		line := p.r.Marker.Render(">") + " " + v.Path
		if p.showSizes {
			line += " " + p.r.Subtle.Render("("+humanize.Bytes(v.Size)+")")
		}

		err := p.println(line)
		if err != nil {
			return err
		}
	}

	if r.Err == nil {
		return nil
	}

	err := p.println(p.r.Error.Render("> Error") + " when " + string(r.Phase) + " " + r.Path)
	if err != nil {
		return err
	}

	return p.println(p.r.Error.Render(">") + " " + r.Err.Error())
}

// Finish writes the footer if the run found neither clutter nor errors.
func (p *TextPrinter) Finish(s *audit.Summary) error {
	if p.quiet || s.Status() != audit.StatusClean {
		return nil
	}

	return p.println(p.r.Success.Render("> No clutter! Well done!"))
}

func (p *TextPrinter) println(s string) error {
	_, err := fmt.Fprintln(p.w, s)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
