package domain

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFolderSegments(t *testing.T) {
	testCases := []struct {
		fullName string
		expected []string
	}{
		{"course files", nil},
		{"course files/unit1", []string{"unit1"}},
		{"course files/unit1/slides", []string{"unit1", "slides"}},
		{"", nil},
	}

	for _, tc := range testCases {
		got := Folder{FullName: tc.fullName}.Segments()
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Segments(%q) = %v, want %v", tc.fullName, got, tc.expected)
		}
	}
}

func TestLocalPathJoin(t *testing.T) {
	root := filepath.Join("out", "canvas")

	p := LocalPath{"math101", "unit1"}
	if got, want := p.Join(root), filepath.Join(root, "math101", "unit1"); got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}

	hostile := LocalPath{"math101", "..", "", ".", "notes"}
	if got, want := hostile.Join(root), filepath.Join(root, "math101", "notes"); got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}

func TestLocalPathAppendDoesNotAlias(t *testing.T) {
	base := make(LocalPath, 1, 4)
	base[0] = "math101"

	a := base.Append("week-1")
	b := base.Append("week-2")

	if a.String() != "math101/week-1" || b.String() != "math101/week-2" {
		t.Errorf("Append aliased the base slice: %q %q", a, b)
	}
}

func TestOutcomeConstructors(t *testing.T) {
	d := Downloaded("notes.pdf", "/x/notes.pdf", 10)
	if d.Status != StatusDownloaded || d.Bytes != 10 {
		t.Errorf("unexpected downloaded outcome %+v", d)
	}

	s := Skipped("notes.pdf", "/x/notes.pdf")
	if s.Status != StatusSkipped {
		t.Errorf("unexpected skipped outcome %+v", s)
	}

	cause := errors.New("not a directory")
	f := Failed("notes.pdf", "/x", ReasonInvalidPath, cause)
	if f.Status != StatusFailed || f.Reason != ReasonInvalidPath || !errors.Is(f.Err, cause) {
		t.Errorf("unexpected failed outcome %+v", f)
	}
}
