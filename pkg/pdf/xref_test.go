package pdf

import (
	"bytes"
	"testing"
)

func TestXRefTableSetIfAbsentFirstWriteWins(t *testing.T) {
	table := newXRefTable()
	table.setIfAbsent(5, xrefEntry{Offset: 100, InUse: true})
	table.setIfAbsent(5, xrefEntry{Offset: 999, InUse: true})

	if table.entries[5].Offset != 100 {
		t.Errorf("setIfAbsent should keep the first (newest) entry, got offset %d", table.entries[5].Offset)
	}
}

func TestXRefTableMergeTrailerKeepsExistingKeys(t *testing.T) {
	table := newXRefTable()
	table.mergeTrailer(Dictionary{"Root": Reference{ObjectNumber: 1}, "Size": Integer(4)})
	table.mergeTrailer(Dictionary{"Root": Reference{ObjectNumber: 99}, "Info": Reference{ObjectNumber: 2}})

	root, ok := table.trailer.Get("Root").(Reference)
	if !ok || root.ObjectNumber != 1 {
		t.Errorf("newer trailer's Root should not overwrite the first trailer's Root, got %+v (ok=%v)", root, ok)
	}
	if _, ok := table.trailer["Info"]; !ok {
		t.Error("merge should add keys absent from the first trailer")
	}
}

// buildIncrementalPDF constructs a two-revision PDF: the first revision
// defines objects 1-3, the second appends a modified object 3 plus a new
// xref section whose trailer /Prev points back at the first section's xref
// offset, the classical incremental-update shape spec.md §8 scenario 5
// exercises.
func buildIncrementalPDF() (data []byte, firstObj3Offset, secondObj3Offset int) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	obj1Offset := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	obj2Offset := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	firstObj3Offset = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")

	xref1Offset := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(firstObj3Offset))
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\n")
	buf.WriteString("startxref\n" + formatInt(xref1Offset) + "\n%%EOF\n")

	// Incremental update: object 3 is replaced with a rotated MediaBox.
	secondObj3Offset = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 792 612] /Rotate 90 >>\nendobj\n")

	xref2Offset := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(secondObj3Offset))
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R /Prev " + formatInt(xref1Offset) + " >>\n")
	buf.WriteString("startxref\n" + formatInt(xref2Offset) + "\n%%EOF\n")

	return buf.Bytes(), firstObj3Offset, secondObj3Offset
}

func TestLoadXRefPrevChainNewestWins(t *testing.T) {
	data, firstObj3Offset, secondObj3Offset := buildIncrementalPDF()

	table, err := loadXRef(data)
	if err != nil {
		t.Fatalf("loadXRef: %v", err)
	}

	entry, ok := table.entries[3]
	if !ok {
		t.Fatal("object 3 missing from merged xref table")
	}
	if entry.Offset != int64(secondObj3Offset) {
		t.Errorf("object 3 should resolve to the newest revision's offset %d, got %d (first revision offset was %d)",
			secondObj3Offset, entry.Offset, firstObj3Offset)
	}

	root, ok := table.trailer.Get("Root").(Reference)
	if !ok || root.ObjectNumber != 1 {
		t.Errorf("merged trailer should carry /Root from either revision, got %+v, ok=%v", root, ok)
	}
}

func TestLoadXRefObjectMarkedFreeInNewerRevision(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	obj1Offset := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj2Offset := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	obj3Offset := buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")

	xref1Offset := buf.Len()
	buf.WriteString("xref\n0 4\n0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(obj3Offset))
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\n")
	buf.WriteString("startxref\n" + formatInt(xref1Offset) + "\n%%EOF\n")

	// Second revision frees object 7 (never defined) and leaves 1-3 intact,
	// mirroring spec.md §8 scenario 5: a /Prev chain where an object is
	// marked free in the newest revision resolves to null, not an error.
	xref2Offset := buf.Len()
	buf.WriteString("xref\n0 8\n0000000000 65535 f \n")
	buf.WriteString(formatXRefEntry(obj1Offset))
	buf.WriteString(formatXRefEntry(obj2Offset))
	buf.WriteString(formatXRefEntry(obj3Offset))
	buf.WriteString("0000000000 65535 f \n")
	buf.WriteString("0000000000 65535 f \n")
	buf.WriteString("0000000000 65535 f \n")
	buf.WriteString("0000000000 00000 f \n")
	buf.WriteString("trailer\n<< /Size 8 /Root 1 0 R /Prev " + formatInt(xref1Offset) + " >>\n")
	buf.WriteString("startxref\n" + formatInt(xref2Offset) + "\n%%EOF\n")

	table, err := loadXRef(buf.Bytes())
	if err != nil {
		t.Fatalf("loadXRef: %v", err)
	}
	entry, ok := table.entries[7]
	if !ok {
		t.Fatal("object 7 should be present in the merged table (as a free entry)")
	}
	if entry.InUse {
		t.Error("object 7 should be marked free (InUse=false)")
	}
}

func TestFindStartXRefLocatesTrailingOffset(t *testing.T) {
	data := createMinimalPDF()
	offset, err := findStartXRef(data)
	if err != nil {
		t.Fatalf("findStartXRef: %v", err)
	}
	if offset <= 0 || offset >= int64(len(data)) {
		t.Errorf("offset %d out of range for a %d-byte file", offset, len(data))
	}
	if !bytes.HasPrefix(data[offset:], []byte("xref")) {
		t.Errorf("offset %d does not point at an xref section: %q", offset, data[offset:offset+10])
	}
}

func TestFindStartXRefMissingReturnsError(t *testing.T) {
	_, err := findStartXRef([]byte("%PDF-1.4\nno trailer keyword here"))
	if err == nil {
		t.Error("expected an error when startxref is absent")
	}
}
