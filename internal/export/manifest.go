package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"canvas-sync/internal/domain"
)

// Manifest header. Keep order EXACT; downstream scripts read columns by position.
var manifestHeader = []string{
	"COURSE",
	"SOURCE",
	"LOCAL_PATH",
	"NAME",
	"STATUS",
	"BYTES",
	"REASON",
}

// Entry is one manifest row.
type Entry struct {
	Course string
	Source string
	Path   string
	Name   string
	Status domain.Status
	Bytes  int64
	Reason domain.Reason
}

// Manifest collects per-file outcomes of a run. Safe for concurrent use.
type Manifest struct {
	// Root makes LOCAL_PATH relative when set.
	Root string

	mu      sync.Mutex
	entries []Entry
}

func NewManifest(root string) *Manifest {
	return &Manifest{Root: root}
}

// Record adds one outcome. The signature matches what the synchronizer hands to observers.
func (m *Manifest) Record(courseCode, source string, o domain.Outcome) {
	e := Entry{
		Course: courseCode,
		Source: source,
		Path:   m.relative(o.Path),
		Name:   o.Name,
		Status: o.Status,
		Bytes:  o.Bytes,
		Reason: o.Reason,
	}
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
}

// Entries returns a copy ordered by course, then local path, then name.
func (m *Manifest) Entries() []Entry {
	m.mu.Lock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Course != out[j].Course {
			return out[i].Course < out[j].Course
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m *Manifest) relative(p string) string {
	if p == "" || m.Root == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(m.Root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// WriteCSV writes the manifest to w.
func (m *Manifest) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(manifestHeader); err != nil {
		return err
	}
	for _, e := range m.Entries() {
		if err := cw.Write(toRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the manifest to path, creating parent directories.
func (m *Manifest) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	if err := m.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	return f.Close()
}

func toRow(e Entry) []string {
	bytes := ""
	if e.Status == domain.StatusDownloaded {
		bytes = strconv.FormatInt(e.Bytes, 10)
	}
	return []string{
		e.Course,         // COURSE
		e.Source,         // SOURCE
		e.Path,           // LOCAL_PATH
		e.Name,           // NAME
		string(e.Status), // STATUS
		bytes,            // BYTES
		string(e.Reason), // REASON
	}
}
