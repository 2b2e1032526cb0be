package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// xrefEntry is one cross-reference table entry: either a byte offset for an
// uncompressed object, or the (stream, index) pair for a member of a
// compressed object stream.
type xrefEntry struct {
	Offset int64
	Generation int
	InUse bool

	StreamObjNum int
	Index int
	Compressed bool
}

// xrefTable accumulates entries across a document's xref chain, keeping the
// newest entry for each object number.
type xrefTable struct {
	entries map[int]xrefEntry
	trailer Dictionary
}

func newXRefTable() *xrefTable {
	return &xrefTable{entries: make(map[int]xrefEntry)}
}

// setIfAbsent records entry for objNum only if no newer xref has already
// claimed it. Callers walk newest-to-oldest, so the first write wins.
func (t *xrefTable) setIfAbsent(objNum int, entry xrefEntry) {
	if _, exists := t.entries[objNum]; !exists {
		t.entries[objNum] = entry
	}
}

func (t *xrefTable) mergeTrailer(trailer Dictionary) {
	if t.trailer == nil {
		t.trailer = trailer
		return
	}
	for k, v := range trailer {
		if _, exists := t.trailer[k]; !exists {
			t.trailer[k] = v
		}
	}
}

// loadXRef bootstraps the chain: locate startxref, then walk /Prev and
// /XRefStm links newest-first. If startxref is unusable, or the section it
// points at or any /Prev section fails to parse, fall back to a recovery
// scan of the whole file.
func loadXRef(data []byte) (*xrefTable, error) {
	table := newXRefTable()

	offset, err := findStartXRef(data)
	if err == nil {
		if err := table.loadChain(data, offset, make(map[int64]bool)); err == nil && table.trailer != nil {
			return table, nil
		}
	}

	return recoverXRef(data)
}

func findStartXRef(data []byte) (int64, error) {
	searchLen := 2048
	if len(data) < searchLen {
		searchLen = len(data)
	}
	tail := data[len(data)-searchLen:]
	tailBase := int64(len(data) - searchLen)

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}

	pos := idx + len("startxref")
	for pos < len(tail) && isWhitespace(tail[pos]) {
		pos++
	}
	start := pos
	for pos < len(tail) && tail[pos] >= '0' && tail[pos] <= '9' {
		pos++
	}
	if pos == start {
		return 0, fmt.Errorf("startxref has no offset")
	}

	offset, err := strconv.ParseInt(string(tail[start:pos]), 10, 64)
	if err != nil {
		return 0, err
	}
	_ = tailBase
	return offset, nil
}

// loadChain parses the xref section at offset, merges it, then follows
// /XRefStm (if present) and /Prev to older sections. visited guards against
// an offset cycle in a malformed file.
func (t *xrefTable) loadChain(data []byte, offset int64, visited map[int64]bool) error {
	if visited[offset] || offset < 0 || offset >= int64(len(data)) {
		return nil
	}
	visited[offset] = true

	pos := offset
	for pos < int64(len(data)) && isWhitespace(data[pos]) {
		pos++
	}

	var trailer Dictionary
	var prev, xrefStm int64
	var hasPrev, hasXRefStm bool
	var err error

	if pos+4 <= int64(len(data)) && string(data[pos:pos+4]) == "xref" {
		trailer, prev, hasPrev, xrefStm, hasXRefStm, err = t.parseXRefTable(data, pos)
	} else {
		trailer, prev, hasPrev, xrefStm, hasXRefStm, err = t.parseXRefStream(data, pos)
	}
	if err != nil {
		return err
	}

	t.mergeTrailer(trailer)

	if hasXRefStm {
		// The hybrid pointer belongs to the same revision as this section;
		// its entries are supplementary, so they are merged before moving
		// to the older /Prev revision.
		t.loadChain(data, xrefStm, visited)
	}
	if hasPrev {
		return t.loadChain(data, prev, visited)
	}
	return nil
}

func (t *xrefTable) parseXRefTable(data []byte, offset int64) (Dictionary, int64, bool, int64, bool, error) {
	lexer := NewLexerFromBytes(data[offset:])
	lexer.ReadLine() // "xref"

	for {
		line, err := lexer.ReadLine()
		if err != nil {
			return nil, 0, false, 0, false, err
		}

		lineStr := strings.TrimSpace(string(line))
		if lineStr == "" {
			continue
		}
		if lineStr == "trailer" {
			break
		}

		parts := strings.Fields(lineStr)
		if len(parts) != 2 {
			continue
		}
		start, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}

		for i := 0; i < count; i++ {
			entryLine, err := lexer.ReadLine()
			if err != nil {
				return nil, 0, false, 0, false, err
			}
			entryStr := string(entryLine)
			if len(entryStr) < 17 {
				continue
			}

			entryOffset, _ := strconv.ParseInt(strings.TrimSpace(entryStr[0:10]), 10, 64)
			gen, _ := strconv.Atoi(strings.TrimSpace(entryStr[11:16]))
			inUse := entryStr[17] == 'n'

			t.setIfAbsent(start+i, xrefEntry{
				Offset: entryOffset,
				Generation: gen,
				InUse: inUse,
			})
		}
	}

	parser := NewParser(lexer)
	trailerObj, err := parser.ParseObject()
	if err != nil {
		return nil, 0, false, 0, false, err
	}
	trailer, ok := trailerObj.(Dictionary)
	if !ok {
		return nil, 0, false, 0, false, fmt.Errorf("trailer is not a dictionary")
	}

	var prev, xrefStm int64
	var hasPrev, hasXRefStm bool
	if p, ok := trailer.GetInt("Prev"); ok {
		prev, hasPrev = p, true
	}
	if x, ok := trailer.GetInt("XRefStm"); ok {
		xrefStm, hasXRefStm = x, true
	}

	return trailer, prev, hasPrev, xrefStm, hasXRefStm, nil
}

func (t *xrefTable) parseXRefStream(data []byte, offset int64) (Dictionary, int64, bool, int64, bool, error) {
	parser := NewParserFromBytes(data[offset:])

	_, _, obj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, 0, false, 0, false, err
	}
	stream, ok := obj.(Stream)
	if !ok {
		return nil, 0, false, 0, false, fmt.Errorf("xref stream expected at offset %d", offset)
	}

	decoded, err := stream.Decode()
	if err != nil {
		return nil, 0, false, 0, false, err
	}

	wArray, ok := stream.Dictionary.GetArray("W")
	if !ok || len(wArray) != 3 {
		return nil, 0, false, 0, false, fmt.Errorf("invalid xref stream W array")
	}
	w := make([]int, 3)
	for i, o := range wArray {
		if n, ok := o.(Integer); ok {
			w[i] = int(n)
		}
	}

	var indices []int
	if indexArray, ok := stream.Dictionary.GetArray("Index"); ok {
		for _, o := range indexArray {
			if n, ok := o.(Integer); ok {
				indices = append(indices, int(n))
			}
		}
	} else if size, ok := stream.Dictionary.GetInt("Size"); ok {
		indices = []int{0, int(size)}
	}

	entrySize := w[0] + w[1] + w[2]
	pos := 0

	for i := 0; i+1 < len(indices); i += 2 {
		start, count := indices[i], indices[i+1]
		for j := 0; j < count; j++ {
			if pos+entrySize > len(decoded) || entrySize == 0 {
				break
			}
			entry := decoded[pos : pos+entrySize]
			pos += entrySize

			field1 := readXRefField(entry, 0, w[0])
			field2 := readXRefField(entry, w[0], w[1])
			field3 := readXRefField(entry, w[0]+w[1], w[2])

			entryType := field1
			if w[0] == 0 {
				entryType = 1
			}

			objNum := start + j
			switch entryType {
			case 0:
				t.setIfAbsent(objNum, xrefEntry{InUse: false})
			case 1:
				t.setIfAbsent(objNum, xrefEntry{Offset: int64(field2), Generation: field3, InUse: true})
			case 2:
				t.setIfAbsent(objNum, xrefEntry{StreamObjNum: field2, Index: field3, InUse: true, Compressed: true})
			}
		}
	}

	var prev int64
	var hasPrev bool
	if p, ok := stream.Dictionary.GetInt("Prev"); ok {
		prev, hasPrev = p, true
	}

	return stream.Dictionary, prev, hasPrev, 0, false, nil
}

func readXRefField(data []byte, offset, width int) int {
	if width == 0 {
		return 0
	}
	result := 0
	for i := 0; i < width; i++ {
		result = result<<8 | int(data[offset+i])
	}
	return result
}

// recoverXRef rebuilds a usable table by linearly scanning for every
// "N G obj" header in the file, then looking for a trailer dictionary.
func recoverXRef(data []byte) (*xrefTable, error) {
	table := newXRefTable()

	for i := 0; i < len(data); i++ {
		if data[i] < '0' || data[i] > '9' {
			continue
		}
		if i > 0 && !isWhitespace(data[i-1]) {
			continue
		}

		objNum, genNum, next, ok := scanObjHeader(data, i)
		if !ok {
			continue
		}

		table.setIfAbsent(objNum, xrefEntry{Offset: int64(i), Generation: genNum, InUse: true})
		i = next
	}

	trailer := findRecoveryTrailer(data, table)
	if trailer == nil {
		return nil, &MalformedError{Err: fmt.Errorf("recovery scan found no usable trailer")}
	}
	table.trailer = trailer
	return table, nil
}

// scanObjHeader attempts to parse "N G obj" starting at i, returning the
// object/generation numbers and the byte index just past "obj" on success.
func scanObjHeader(data []byte, i int) (objNum, genNum, next int, ok bool) {
	j := i
	numStart := j
	for j < len(data) && data[j] >= '0' && data[j] <= '9' {
		j++
	}
	if j == numStart {
		return 0, 0, 0, false
	}
	n1, _ := strconv.Atoi(string(data[numStart:j]))

	k := j
	for k < len(data) && isWhitespace(data[k]) {
		k++
	}
	genStart := k
	for k < len(data) && data[k] >= '0' && data[k] <= '9' {
		k++
	}
	if k == genStart {
		return 0, 0, 0, false
	}
	n2, _ := strconv.Atoi(string(data[genStart:k]))

	m := k
	for m < len(data) && isWhitespace(data[m]) {
		m++
	}
	if m+3 > len(data) || string(data[m:m+3]) != "obj" {
		return 0, 0, 0, false
	}

	return n1, n2, m + 3, true
}

// findRecoveryTrailer looks for a literal "trailer" keyword first, falling
// back to any recovered object whose dictionary declares /Type /Catalog.
func findRecoveryTrailer(data []byte, table *xrefTable) Dictionary {
	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		parser := NewParserFromBytes(data[idx+len("trailer"):])
		if obj, err := parser.ParseObject(); err == nil {
			if dict, ok := obj.(Dictionary); ok {
				return dict
			}
		}
	}

	for objNum, entry := range table.entries {
		if !entry.InUse || entry.Compressed {
			continue
		}
		parser := NewParserFromBytes(data[entry.Offset:])
		_, _, obj, err := parser.ParseIndirectObject()
		if err != nil {
			continue
		}
		dict, ok := obj.(Dictionary)
		if !ok {
			continue
		}
		if t, ok := dict.GetName("Type"); ok && t == "Catalog" {
			return Dictionary{"Root": Reference{ObjectNumber: objNum}}
		}
	}

	return nil
}
