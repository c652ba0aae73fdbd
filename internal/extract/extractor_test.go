package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/xuri/excelize/v2"
)

// zipOf builds an in-memory zip archive from name/content pairs, in order.
func zipOf(t *testing.T, parts ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i := 0; i+1 < len(parts); i += 2 {
		fw, err := w.Create(parts[i])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(parts[i+1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func wordBody(runs ...string) string {
	var b strings.Builder
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, r := range runs {
		b.WriteString(`<w:p w:rsidR="00AB12"><w:r><w:t xml:space="preserve">` + r + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func slide(text string) string {
	return `<p:sld><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

func TestExtractBytes_formats(t *testing.T) {
	contentTypes := func(partAttrs string) string {
		return `<?xml version="1.0"?><Types><Override ` + partAttrs + `/></Types>`
	}
	const mainType = `ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"`

	tests := []struct {
		name    string
		ext     string
		content []byte
		want    string
	}{
		{"plain", ".txt", []byte("Section 1\nThe lessee shall pay rent."), "Section 1\nThe lessee shall pay rent."},
		{"markdown utf8", ".MD", []byte("caf\xc3\xa9"), "café"},
		{"invalid utf8 replaced", ".rst", []byte("hello\x80world"), "hello�world"},
		{"unknown extension as plain", ".xyz", []byte("raw content"), "raw content"},
		{"docx", ".docx", zipOf(t, "word/document.xml", wordBody("Force majeure", "clause")), "Force majeure clause"},
		{"docx entities", ".docx", zipOf(t, "word/document.xml", wordBody("Smith &amp; Jones")), "Smith & Jones"},
		{"docx renamed main part", ".docx", zipOf(t,
			"[Content_Types].xml", contentTypes(`PartName="/word/document2.xml" `+mainType),
			"word/document2.xml", wordBody("Content from document2")), "Content from document2"},
		{"docx content type first", ".docx", zipOf(t,
			"[Content_Types].xml", contentTypes(mainType+` PartName="/word/document3.xml"`),
			"word/document3.xml", wordBody("Reversed order")), "Reversed order"},
		{"pptx slide order", ".pptx", zipOf(t,
			"ppt/slides/slide10.xml", slide("Tenth"),
			"ppt/slides/slide2.xml", slide("Second"),
			"ppt/slides/slide1.xml", slide("First")), "First Second Tenth"},
		{"pptx without slides", ".pptx", zipOf(t, "ppt/slides/other.xml", "", "docProps/core.xml", ""), ""},
		{"odt", ".odt", zipOf(t, "content.xml",
			`<office:document><office:body><office:text><text:h text:outline-level="1">Article 5</text:h><text:p text:style-name="P1">Termination</text:p></office:text></office:body></office:document>`),
			"Article 5 Termination"},
		{"odp document order", ".odp", zipOf(t, "content.xml",
			`<office:document><draw:page><text:h>Slide title</text:h><text:p>Body text</text:p></draw:page></office:document>`),
			"Slide title Body text"},
		{"ods cells", ".ods", zipOf(t, "content.xml",
			`<table:table-row><table:table-cell><text:p>Cell A</text:p></table:table-cell><table:table-cell><text:p><text:span>Cell B</text:span></text:p></table:table-cell></table:table-row>`),
			"Cell A Cell B"},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.content, tt.ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excelSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", "Schedule A")
	f.SetCellValue("Schedule A", "A1", "Premises")
	f.SetCellValue("Schedule A", "B1", "Unit 4")
	f.SetCellValue("Schedule A", "D3", "Rent")
	if _, err := f.NewSheet("Schedule B"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Schedule B", "A1", "Deposit")
	if _, err := f.NewSheet("Drafts"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Drafts", "A1", "internal note")
	if err := f.SetSheetVisible("Drafts", false); err != nil {
		t.Fatal(err)
	}
	// Trailing empty cells on a row are dropped.
	f.SetCellValue("Schedule B", "C1", "")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	want := "Schedule A\nPremises\tUnit 4\n\t\t\tRent\n\nSchedule B\nDeposit"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractBytes_rtf(t *testing.T) {
	content := []byte(`{\rtf1\ansi\deff0 {\fonttbl {\f0 Times;}}\f0 The tenant indemnifies the landlord.\par}`)
	got, err := NewExtractor().ExtractBytes(content, ".rtf")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if !strings.Contains(got, "indemnifies") {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_errorsAreTagged(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		content []byte
	}{
		{"pptx not zip", ".pptx", []byte("not a zip")},
		{"docx missing body", ".docx", zipOf(t, "other.xml", "")},
		{"odp missing content", ".odp", zipOf(t, "other.xml", "")},
		{"ods missing content", ".ods", zipOf(t, "other.xml", "")},
		{"pdf garbage", ".pdf", []byte("%PDF-nope")},
		{"xlsx garbage", ".xlsx", []byte("nope")},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractBytes(tt.content, tt.ext)
			if !errors.Is(err, models.ErrExtraction) {
				t.Errorf("expected ErrExtraction, got %v", err)
			}
		})
	}
}

func TestExtract_files(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "statute.txt")
	if err := os.WriteFile(txt, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	xlsx := filepath.Join(dir, "schedule.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Searchable text")
	if err := f.SaveAs(xlsx); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	e := NewExtractor()
	for path, want := range map[string]string{txt: "File content", xlsx: "Searchable text"} {
		got, err := e.Extract(path)
		if err != nil {
			t.Fatalf("Extract(%s): %v", path, err)
		}
		if got != want {
			t.Errorf("Extract(%s) = %q, want %q", path, got, want)
		}
	}
}

func TestExtract_nonexistent(t *testing.T) {
	_, err := NewExtractor().Extract("/nonexistent/path/file.txt")
	if !errors.Is(err, models.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}

func TestExtract_badFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	if err := os.WriteFile(path, []byte("not a zip"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := NewExtractor().Extract(path)
	if !errors.Is(err, models.ErrExtraction) || !strings.Contains(err.Error(), "broken.docx") {
		t.Errorf("got %v", err)
	}
}

func TestExtract_maxFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, bytes.Repeat([]byte("a"), 100), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewExtractor(WithMaxFileSize(10)).Extract(path); !errors.Is(err, models.ErrExtraction) {
		t.Errorf("expected size limit error, got %v", err)
	}
	if _, err := NewExtractor(WithMaxFileSize(0)).Extract(path); err != nil {
		t.Errorf("limit 0 disables the check: %v", err)
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	if len(exts) != 11 {
		t.Errorf("got %v", exts)
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] > exts[i] {
			t.Fatalf("not sorted: %v", exts)
		}
	}
}
