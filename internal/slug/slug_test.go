package slug

import "testing"

func TestSegment(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Lecture Notes #1 (v2).pdf", "lecture-notes-1-v2.pdf"},
		{"MATH101", "math101"},
		{"  Week 1 -- Intro  ", "week-1-intro"},
		{"unit1", "unit1"},
		{"_private_", "private"},
		{"-_-x-_-", "x"},
		{"a / b", "a-b"},
		{"Résumé Final.docx", "résumé-final.docx"},
		{"Café", "café"},
		{"tab\tand\nnewline", "tab-and-newline"},
		{"???", ""},
		{"snake_case_name", "snake_case_name"},
		{"archive.tar.gz", "archive.tar.gz"},
	}

	for _, tc := range testCases {
		if got := Segment(tc.input); got != tc.expected {
			t.Errorf("Segment(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestSegmentIdempotent(t *testing.T) {
	inputs := []string{
		"Lecture Notes #1 (v2).pdf",
		"  --Mixed   CASE__ ",
		"_-a-_",
		"Ünïcödé  Ωmega",
		"x - - y",
		"",
		"..",
	}

	for _, in := range inputs {
		once := Segment(in)
		if twice := Segment(once); twice != once {
			t.Errorf("Segment not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
