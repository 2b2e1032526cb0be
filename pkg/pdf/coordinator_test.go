package pdf

import (
	"bytes"
	"strings"
	"testing"
)

// buildContentPDF assembles a single-page PDF whose page content stream is
// content, with the given MediaBox and Rotate, enough to drive ToSVG
// end-to-end the way spec.md §8's named scenarios exercise it.
func buildContentPDF(content, mediaBox string, rotate int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	obj1Offset := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	obj2Offset := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	rotateEntry := ""
	if rotate != 0 {
		rotateEntry = " /Rotate " + formatInt(rotate)
	}
	obj3Offset := buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox " + mediaBox +
		rotateEntry + " /Resources << >> /Contents 4 0 R >>\nendobj\n")

	obj4Offset := buf.Len()
	buf.WriteString("4 0 obj\n<< /Length " + formatInt(len(content)) + " >>\nstream\n")
	buf.WriteString(content)
	buf.WriteString("\nendstream\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 5\n0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(obj3Offset))
	buf.WriteString(formatXRefEntry(obj4Offset))
	buf.WriteString("trailer\n<< /Size 5 /Root 1 0 R >>\n")
	buf.WriteString("startxref\n" + formatInt(xrefOffset) + "\n%%EOF\n")

	return buf.Bytes()
}

func mustPage(t *testing.T, data []byte) *Page {
	t.Helper()
	doc, err := NewDocument(data)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	page, err := doc.GetPage(1)
	if err != nil {
		t.Fatalf("GetPage(1): %v", err)
	}
	return page
}

func TestToSVGSingleStrokedPath(t *testing.T) {
	content := "1 0 0 RG 2 w 10 10 m 100 10 l S"
	page := mustPage(t, buildContentPDF(content, "[0 0 200 200]", 0))

	result, err := page.ToSVG(nil)
	if err != nil {
		t.Fatalf("ToSVG: %v", err)
	}
	if !strings.Contains(result.SVG, "<path") || !strings.Contains(result.SVG, `stroke="#ff0000"`) {
		t.Errorf("expected a red stroked path in output, got: %s", result.SVG)
	}
	if !strings.Contains(result.SVG, `width="200pt"`) {
		t.Errorf("expected unrotated 200x200 box dimensions, got: %s", result.SVG)
	}
}

func TestToSVGRotate90SwapsDimensions(t *testing.T) {
	content := "0 0 0 rg 0 0 100 50 re f"
	page := mustPage(t, buildContentPDF(content, "[0 0 100 50]", 90))

	result, err := page.ToSVG(nil)
	if err != nil {
		t.Fatalf("ToSVG: %v", err)
	}
	if !strings.Contains(result.SVG, `width="50pt"`) || !strings.Contains(result.SVG, `height="100pt"`) {
		t.Errorf("a 90-degree rotation should swap width/height, got: %s", result.SVG)
	}
}

func TestToSVGEncryptedDocumentRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	obj1Offset := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj2Offset := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")
	obj3Offset := buf.Len()
	buf.WriteString("3 0 obj\n<< /Filter /Standard /V 1 /R 2 >>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 4\n0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(obj3Offset))
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R /Encrypt 3 0 R >>\n")
	buf.WriteString("startxref\n" + formatInt(xrefOffset) + "\n%%EOF\n")

	_, err := NewDocument(buf.Bytes())
	if err == nil {
		t.Fatal("expected an error for an encrypted document")
	}
	var encErr *EncryptedError
	if !asEncryptedError(err, &encErr) {
		t.Fatalf("expected *EncryptedError, got %T: %v", err, err)
	}
}

func asEncryptedError(err error, target **EncryptedError) bool {
	ee, ok := err.(*EncryptedError)
	if ok {
		*target = ee
	}
	return ok
}

func TestToSVGUnbalancedQClosesAllGroupsAndWarns(t *testing.T) {
	content := "q q 0 0 1 rg 0 0 10 10 re f"
	page := mustPage(t, buildContentPDF(content, "[0 0 50 50]", 0))

	warningsBefore := len(page.doc.warnings)
	result, err := page.ToSVG(nil)
	if err != nil {
		t.Fatalf("ToSVG: %v", err)
	}
	_ = warningsBefore

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "unbalanced q/Q") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unbalanced q/Q warning, got: %+v", result.Warnings)
	}
	if !strings.Contains(result.SVG, "<path") {
		t.Errorf("fill should still be emitted despite the unbalanced q/Q, got: %s", result.SVG)
	}
}

func TestToSVGZeroSizedBoxRejected(t *testing.T) {
	page := mustPage(t, buildContentPDF("", "[0 0 0 0]", 0))
	_, err := page.ToSVG(nil)
	if err == nil {
		t.Fatal("expected an error for a zero-sized page box")
	}
}
