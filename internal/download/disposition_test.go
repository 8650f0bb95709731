package download

import "testing"

func TestNameFromDisposition(t *testing.T) {
	testCases := []struct {
		header   string
		expected string
	}{
		{`attachment; filename="notes.pdf"`, "notes.pdf"},
		{`attachment; filename*=UTF-8''na%C3%AFve.pdf`, "naïve.pdf"},
		{`attachment; filename="fallback.pdf"; filename*=UTF-8''preferred.pdf`, "preferred.pdf"},
		{`attachment; filename=bare.txt`, "bare.txt"},
		{`attachment; filename="with space.doc"; junk`, "with space.doc"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{`attachment; filename="C:\temp\win.doc"`, "win.doc"},
		{`inline`, ""},
		{``, ""},
	}

	for _, tc := range testCases {
		if got := NameFromDisposition(tc.header); got != tc.expected {
			t.Errorf("NameFromDisposition(%q) = %q, want %q", tc.header, got, tc.expected)
		}
	}
}
