package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadTranscript_Text(t *testing.T) {
	content := "\ufeff\f1\r\n1   Q. Good morning.\r\n2   A. Morning.\r\n"
	path := writeFile(t, "depo.txt", content)

	doc, err := NewLoader("").LoadTranscript(path)
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}

	if doc.Format != FormatText {
		t.Errorf("Expected text format, got %s", doc.Format)
	}
	if strings.Contains(doc.Text, "\r") || strings.HasPrefix(doc.Text, "\ufeff") {
		t.Errorf("Expected normalized text, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "\f1\n1   Q. Good morning.") {
		t.Errorf("Expected page marker and lines preserved, got %q", doc.Text)
	}
	if string(doc.Raw) != content {
		t.Error("Expected raw bytes kept for cache keys")
	}
}

func TestLoadTranscript_ExtensionlessText(t *testing.T) {
	path := writeFile(t, "depo", "\f3\n1 Q. Hello\n")

	doc, err := NewLoader("\f").LoadTranscript(path)
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}
	if doc.Format != FormatText {
		t.Errorf("Expected text format, got %s", doc.Format)
	}
}

func TestLoadTranscript_Unsupported(t *testing.T) {
	path := writeFile(t, "depo.docx", "PK binary")

	_, err := NewLoader("").LoadTranscript(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	html := writeFile(t, "depo.html", "<p>1 Q. Hello</p>")
	if _, err := NewLoader("").LoadTranscript(html); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected HTML transcripts to be rejected, got %v", err)
	}
}

func TestLoadTranscript_InvalidPDF(t *testing.T) {
	path := writeFile(t, "depo.pdf", "%PDF-1.4 truncated")

	_, err := NewLoader("").LoadTranscript(path)
	if err == nil {
		t.Fatal("Expected an error for a truncated PDF")
	}
	if !strings.Contains(err.Error(), "depo.pdf") {
		t.Errorf("Expected error to name the file, got %v", err)
	}
}

func TestLoad_EmptyAndMissing(t *testing.T) {
	loader := NewLoader("")

	empty := writeFile(t, "empty.txt", "  \n\t\n")
	if _, err := loader.LoadTranscript(empty); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput for transcript, got %v", err)
	}
	if _, err := loader.LoadSummary(empty); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput for summary, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "nope.txt")
	if _, err := loader.LoadSummary(missing); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped not-exist error, got %v", err)
	}
}

func TestLoadSummary_HTML(t *testing.T) {
	content := `<html><head><title>Summary</title><script>var x = "(1:1-1:2)";</script></head>
<body><h1>Deposition of J. Smith</h1>
<p>The witness arrived at noon (12:1-12:4).</p>
<p>She left early (13:2-13:3).</p></body></html>`
	path := writeFile(t, "summary.html", content)

	doc, err := NewLoader("").LoadSummary(path)
	if err != nil {
		t.Fatalf("LoadSummary failed: %v", err)
	}

	if doc.Format != FormatHTML {
		t.Errorf("Expected html format, got %s", doc.Format)
	}
	if strings.Contains(doc.Text, "var x") {
		t.Errorf("Expected script content dropped, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "The witness arrived at noon (12:1-12:4).") {
		t.Errorf("Expected paragraph text, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "\n\n") {
		t.Errorf("Expected paragraph breaks preserved, got %q", doc.Text)
	}
}

func TestLoadSummary_Markdown(t *testing.T) {
	path := writeFile(t, "summary.md", "# Summary\r\n\r\nHe agreed (4:1-4:2).\r\n")

	doc, err := NewLoader("").LoadSummary(path)
	if err != nil {
		t.Fatalf("LoadSummary failed: %v", err)
	}
	if doc.Format != FormatMarkdown {
		t.Errorf("Expected markdown format, got %s", doc.Format)
	}
	if doc.Text != "# Summary\n\nHe agreed (4:1-4:2).\n" {
		t.Errorf("Unexpected text %q", doc.Text)
	}
}

func TestTranscriptFromPages(t *testing.T) {
	got := transcriptFromPages([]string{"12\n1 Q. One", "13\n1 A. Two"}, "\f")

	want := "\f\n12\n1 Q. One\n\f\n13\n1 A. Two\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
