package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"canvas-sync/internal/domain"
)

func TestManifestWriteCSV(t *testing.T) {
	root := filepath.Join("out")
	m := NewManifest(root)

	m.Record("MATH101", "module", domain.Failed("Loose", "", domain.ReasonCatalog, errors.New("boom")))
	m.Record("MATH101", "folder", domain.Downloaded("Syllabus.pdf", filepath.Join(root, "math101", "syllabus.pdf"), 42))
	m.Record("BIO200", "folder", domain.Skipped("lab.pdf", filepath.Join(root, "bio200", "lab.pdf")))

	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := strings.Join([]string{
		"COURSE,SOURCE,LOCAL_PATH,NAME,STATUS,BYTES,REASON",
		"BIO200,folder,bio200/lab.pdf,lab.pdf,skipped,,",
		"MATH101,module,,Loose,failed,,catalog",
		"MATH101,folder,math101/syllabus.pdf,Syllabus.pdf,downloaded,42,",
		"",
	}, "\r\n")
	if buf.String() != want {
		t.Errorf("WriteCSV() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestManifestQuotesNames(t *testing.T) {
	m := NewManifest("")
	m.Record("C1", "module", domain.Downloaded("a, b \"c\".pdf", "/tmp/x.pdf", 1))

	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"a, b ""c"".pdf"`) {
		t.Errorf("name not quoted: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "/tmp/x.pdf") {
		t.Errorf("path without root should be kept as is: %q", buf.String())
	}
}

func TestManifestConcurrentRecord(t *testing.T) {
	m := NewManifest("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record("C", "folder", domain.Skipped("f", "p"))
		}()
	}
	wg.Wait()

	if got := len(m.Entries()); got != 50 {
		t.Errorf("Entries() = %d, want 50", got)
	}
}

func TestManifestWriteCSVFile(t *testing.T) {
	m := NewManifest("")
	m.Record("C", "folder", domain.Skipped("f", "p"))

	path := filepath.Join(t.TempDir(), "reports", "manifest.csv")
	if err := m.WriteCSVFile(path); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.HasPrefix(string(content), "COURSE,SOURCE") {
		t.Errorf("unexpected content %q", content)
	}
}
