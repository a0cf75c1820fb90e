package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/macropower/declutter/pkg/audit"
	"github.com/macropower/declutter/pkg/yaml"
)

// Report is the document written by the json and yaml formats.
type Report struct {
	Status     string        `json:"status"     yaml:"status"`
	Duration   string        `json:"duration"   yaml:"duration"`
	Results    []EntryReport `json:"results"    yaml:"results"`
	Clean      int           `json:"clean"      yaml:"clean"`
	Failed     int           `json:"failed"     yaml:"failed"`
	Violations int           `json:"violations" yaml:"violations"`
}

// EntryReport is the outcome of one configuration entry.
type EntryReport struct {
	Path       string            `json:"path"               yaml:"path"`
	Resolved   string            `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Phase      string            `json:"phase,omitempty"    yaml:"phase,omitempty"`
	Error      string            `json:"error,omitempty"    yaml:"error,omitempty"`
	Violations []ViolationReport `json:"violations"         yaml:"violations"`
	Clean      bool              `json:"clean"              yaml:"clean"`
}

// ViolationReport is one entry that matched no rule.
type ViolationReport struct {
	Path      string `json:"path"      yaml:"path"`
	HumanSize string `json:"humanSize" yaml:"humanSize"`
	Size      uint64 `json:"size"      yaml:"size"`
	Dir       bool   `json:"dir"       yaml:"dir"`
}

// NewReport converts a [audit.Summary] into a [Report].
func NewReport(s *audit.Summary) *Report {
	rep := &Report{
		Status:     s.Status().String(),
		Duration:   s.Duration.String(),
		Results:    make([]EntryReport, 0, len(s.Results)),
		Clean:      s.Clean,
		Failed:     s.Failed,
		Violations: s.Violations,
	}

	for _, r := range s.Results {
		er := EntryReport{
			Path:       r.Path,
			Resolved:   r.Resolved,
			Clean:      r.Clean,
			Violations: make([]ViolationReport, 0, len(r.Violations)),
		}

		if r.Err != nil {
			er.Phase = string(r.Phase)
			er.Error = r.Err.Error()
		}

		for _, v := range r.Violations {
			er.Violations = append(er.Violations, ViolationReport{
				Path:      v.Path,
				Size:      v.Size,
				HumanSize: humanize.Bytes(v.Size),
				Dir:       v.Dir,
			})
		}

		rep.Results = append(rep.Results, er)
	}

	return rep
}

// DocumentPrinter writes a [Report] once the run has finished.
type DocumentPrinter struct {
	w      io.Writer
	format Format
}

// Start implements [Printer].
func (p *DocumentPrinter) Start() error {
	return nil
}

// Result implements [Printer]. Results are written by Finish.
func (p *DocumentPrinter) Result(*audit.Result) error {
	return nil
}

// Finish writes the report.
func (p *DocumentPrinter) Finish(s *audit.Summary) error {
	rep := NewReport(s)

	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")

		err := enc.Encode(rep)
		if err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}

	default:
		b, err := yaml.Marshal(rep)
		if err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}

		_, err = p.w.Write(b)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}
