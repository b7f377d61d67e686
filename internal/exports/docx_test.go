package exports

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(content)
	}
	t.Fatalf("part %s missing from package", name)
	return ""
}

func TestRenderDOCXProducesValidPackage(t *testing.T) {
	data, err := RenderDOCX([]Block{
		{Kind: BlockHeading, Level: 1, Text: "Title"},
		{Kind: BlockParagraph, Text: "Body & text"},
		{Kind: BlockBullet, Text: "item"},
	})
	if err != nil {
		t.Fatalf("RenderDOCX: %v", err)
	}

	for _, part := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/styles.xml",
	} {
		readPart(t, data, part)
	}

	doc := readPart(t, data, "word/document.xml")
	if !strings.Contains(doc, `<w:pStyle w:val="Heading1"/>`) {
		t.Fatalf("expected Heading1 style in document.xml")
	}
	if !strings.Contains(doc, "Body &amp; text") {
		t.Fatalf("expected escaped paragraph text, got:\n%s", doc)
	}
	if !strings.Contains(doc, `<w:pStyle w:val="ListParagraph"/>`) {
		t.Fatalf("expected list paragraph style for bullet")
	}
}

func TestRenderDOCXMalformedHeadingFallsBack(t *testing.T) {
	data, err := RenderDOCX([]Block{
		{Kind: BlockHeading, Level: 9, Text: "Too deep"},
	})
	if err != nil {
		t.Fatalf("RenderDOCX: %v", err)
	}

	doc := readPart(t, data, "word/document.xml")
	if strings.Contains(doc, "Heading9") {
		t.Fatalf("invalid heading level must not produce a style")
	}
	if !strings.Contains(doc, "Too deep") {
		t.Fatalf("fallback paragraph text missing")
	}
}

func TestRenderDOCXEmptyBlocksStillValid(t *testing.T) {
	data, err := RenderDOCX(nil)
	if err != nil {
		t.Fatalf("RenderDOCX: %v", err)
	}
	doc := readPart(t, data, "word/document.xml")
	if !strings.Contains(doc, "<w:body></w:body>") {
		t.Fatalf("expected empty body, got:\n%s", doc)
	}
}

func TestRenderPDFProducesPDFBytes(t *testing.T) {
	data, err := RenderPDF("report.pdf", []Block{
		{Kind: BlockHeading, Level: 2, Text: "Section"},
		{Kind: BlockParagraph, Text: "Some body text."},
		{Kind: BlockBullet, Text: "a bullet"},
	})
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF magic bytes")
	}
}

func TestRenderPDFEmptyContent(t *testing.T) {
	data, err := RenderPDF("empty.pdf", nil)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF magic bytes")
	}
}
