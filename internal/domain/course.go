package domain

import (
	"path/filepath"
	"strings"
)

// Course is a top-level unit of the remote catalog.
// It is fetched once per run and never mutated.
type Course struct {
	ID   int64
	Code string // human code, e.g. "MATH101"; used as the first local path segment
	Name string
}

// Folder is a file-storage container inside a course.
type Folder struct {
	ID         int64
	FullName   string // "course files/unit1/slides"
	FilesCount int
}

// Segments returns the folder path below the fixed root label.
// "course files/unit1/slides" -> ["unit1", "slides"].
func (f Folder) Segments() []string {
	parts := strings.Split(f.FullName, "/")
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

// Module is an ordered collection of heterogeneous items.
type Module struct {
	ID         int64
	Name       string
	ItemsCount int
}

type ItemKind string

const (
	ItemFile        ItemKind = "File"
	ItemExternalURL ItemKind = "ExternalUrl"
	ItemOther       ItemKind = "Other"
)

// ModuleItem is one entry of a module. Only File and ExternalUrl items carry content.
type ModuleItem struct {
	ID          int64
	Kind        ItemKind
	Title       string
	ContentID   int64  // File items
	ExternalURL string // ExternalUrl items
}

// FileRecord describes a downloadable file.
type FileRecord struct {
	ID          int64
	DisplayName string
	URL         string // empty when the file is locked or unavailable
	FolderID    int64
	Size        int64
}

// LocalPath is an ordered list of already-resolved path segments below the output root.
type LocalPath []string

// Join places the path under root. Empty, "." and ".." segments are dropped
// so a remote name can never climb out of the output tree.
func (p LocalPath) Join(root string) string {
	parts := make([]string, 0, len(p)+1)
	parts = append(parts, root)
	for _, s := range p {
		if s == "" || s == "." || s == ".." {
			continue
		}
		parts = append(parts, s)
	}
	return filepath.Join(parts...)
}

// Append returns a new path; p is left untouched.
func (p LocalPath) Append(segments ...string) LocalPath {
	out := make(LocalPath, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

func (p LocalPath) String() string {
	return strings.Join(p, "/")
}
