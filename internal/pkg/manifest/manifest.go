// Package manifest reads the list of datasets the ingestor stores and
// the poller watches.
package manifest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wasteatlas/wasteatlas/internal/core/domain"
)

// DefaultPath is where the commands look when no path is given.
const DefaultPath = "configs/manifest.yaml"

const defaultPollInterval = 5 * time.Minute

// Manifest lists dataset variants.
type Manifest struct {
	Source       string        `yaml:"source"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Datasets     []Entry       `yaml:"datasets"`
}

// Entry is one dataset. Poll marks remote sources the poller watches.
type Entry struct {
	domain.DatasetSpec `yaml:",inline"`
	Poll               bool `yaml:"poll"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.PollInterval <= 0 {
		m.PollInterval = defaultPollInterval
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate reports every problem in the manifest at once.
func (m *Manifest) Validate() error {
	var errs []string
	seen := make(map[string]bool, len(m.Datasets))
	for i, e := range m.Datasets {
		switch {
		case e.Name == "":
			errs = append(errs, fmt.Sprintf("datasets[%d].name is required", i))
		case seen[e.Name]:
			errs = append(errs, fmt.Sprintf("datasets[%d].name %q is duplicated", i, e.Name))
		}
		seen[e.Name] = true
		if !e.Kind.Valid() {
			errs = append(errs, fmt.Sprintf("datasets[%d].kind %q is not generated or recovered", i, e.Kind))
		}
		if e.Source == "" {
			errs = append(errs, fmt.Sprintf("datasets[%d].source is required", i))
		}
		if e.Marker == "" {
			errs = append(errs, fmt.Sprintf("datasets[%d].marker is required", i))
		}
		if e.Poll && !IsRemote(e.Source) {
			errs = append(errs, fmt.Sprintf("datasets[%d] polls a non-http source %q", i, e.Source))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("manifest validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Select returns the entries named in filter, or all entries when the
// filter is empty. Unknown names are an error.
func (m *Manifest) Select(filter []string) ([]Entry, error) {
	if len(filter) == 0 {
		return m.Datasets, nil
	}
	byName := make(map[string]Entry, len(m.Datasets))
	for _, e := range m.Datasets {
		byName[e.Name] = e
	}
	out := make([]Entry, 0, len(filter))
	for _, name := range filter {
		e, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrDatasetNotFound)
		}
		out = append(out, e)
	}
	return out, nil
}

// Polled returns the entries the poller watches.
func (m *Manifest) Polled() []Entry {
	var out []Entry
	for _, e := range m.Datasets {
		if e.Poll {
			out = append(out, e)
		}
	}
	return out
}

// SplitNames parses a comma separated name list, ignoring blanks.
func SplitNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
