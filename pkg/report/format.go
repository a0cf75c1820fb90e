package report

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/macropower/declutter/pkg/audit"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")

	AllFormats = []string{
		string(FormatText),
		string(FormatJSON),
		string(FormatYAML),
	}
)

// GetFormat parses a format name, case-insensitively.
func GetFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatText, FormatJSON, FormatYAML}, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Printer writes the results of one audit run.
//
// Start is called before the run, Result once per entry in document order,
// and Finish after the run.
type Printer interface {
	Start() error
	Result(r *audit.Result) error
	Finish(s *audit.Summary) error
}

type options struct {
	renderer  *Renderer
	quiet     bool
	showSizes bool
}

// Option configures a [Printer].
type Option func(*options)

// WithQuiet omits the header and footer of the text format.
func WithQuiet(quiet bool) Option {
	return func(o *options) {
		o.quiet = quiet
	}
}

// WithSizes adds human-readable sizes to violations in the text format.
func WithSizes(show bool) Option {
	return func(o *options) {
		o.showSizes = show
	}
}

// WithRenderer sets the styles used by the text format.
func WithRenderer(r *Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// New creates a [Printer] writing f to w.
//
//nolint:ireturn // Printer implementations are selected by format.
func New(w io.Writer, f Format, opts ...Option) (Printer, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	switch f {
	case FormatText:
		if o.renderer == nil {
			o.renderer = NewRenderer(w)
		}

		return &TextPrinter{w: w, r: o.renderer, quiet: o.quiet, showSizes: o.showSizes}, nil

	case FormatJSON, FormatYAML:
		return &DocumentPrinter{w: w, format: f}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
