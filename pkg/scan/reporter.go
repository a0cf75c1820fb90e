package scan

// Violation is an entry that matched no rule of its rule set.
type Violation struct {
	// Path is the full path of the entry.
	Path string `json:"path"`
	// Root is the directory being scanned.
	Root string `json:"root"`
	// Size in bytes, without following symbolic links.
	Size uint64 `json:"size"`
	// Dir is true if the entry is a directory.
	Dir bool `json:"dir"`
}

// Reporter receives violations in discovery order.
type Reporter interface {
	Report(v Violation)
}

// ReporterFunc adapts a function to a [Reporter].
type ReporterFunc func(v Violation)

// Report implements [Reporter].
func (f ReporterFunc) Report(v Violation) {
	f(v)
}

// Collector is a [Reporter] that keeps all violations in order.
type Collector struct {
	Violations []Violation
}

// Report implements [Reporter].
func (c *Collector) Report(v Violation) {
	c.Violations = append(c.Violations, v)
}

type discard struct{}

func (discard) Report(Violation) {}
